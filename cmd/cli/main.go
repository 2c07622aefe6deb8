package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

const defaultBaseURL = "http://localhost:8080"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type cli struct {
	baseURL string
	client  *http.Client
}

func newRootCmd() *cobra.Command {
	c := &cli{client: &http.Client{Timeout: 2 * time.Minute}}

	root := &cobra.Command{
		Use:          "mediastats",
		Short:        "Client for the mediastats API server",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&c.baseURL, "api", defaultBaseURL, "API base URL")

	root.AddCommand(c.uploadCmd(), c.runsCmd(), c.watchCmd())
	return root
}

func (c *cli) uploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <catalog.csv>",
		Short: "Upload a catalog CSV and print the analysis result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var out json.RawMessage
			if err := uploadFile(cmd.Context(), c.client, c.baseURL+"/api/analyze", args[0], &out); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
}

func (c *cli) runsCmd() *cobra.Command {
	runs := &cobra.Command{
		Use:   "runs",
		Short: "Inspect recorded analysis runs",
	}

	var limit, offset int
	list := &cobra.Command{
		Use:   "list",
		Short: "List runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			q.Set("limit", strconv.Itoa(limit))
			q.Set("offset", strconv.Itoa(offset))

			var out json.RawMessage
			if err := doJSON(cmd.Context(), c.client, http.MethodGet, c.baseURL+"/runs?"+q.Encode(), &out); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	list.Flags().IntVar(&limit, "limit", 20, "page size")
	list.Flags().IntVar(&offset, "offset", 0, "page offset")

	show := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var out json.RawMessage
			if err := doJSON(cmd.Context(), c.client, http.MethodGet, c.baseURL+"/runs/"+url.PathEscape(args[0]), &out); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}

	runs.AddCommand(list, show)
	return runs
}

func doJSON(ctx context.Context, client *http.Client, method, endpoint string, out any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeResponse(resp, method, endpoint, out)
}

func decodeResponse(resp *http.Response, method, endpoint string, out any) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s", method, endpoint, apiErr.Error)
		}
		return fmt.Errorf("%s %s failed: %s", method, endpoint, resp.Status)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/url"
	"os"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

func (c *cli) watchCmd() *cobra.Command {
	var (
		tcpAddr string
		raw     bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print run events as they happen (WebSocket, or the TCP feed with --tcp)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			errW := cmd.ErrOrStderr()

			if tcpAddr == "" {
				wsURL, err := websocketURL(c.baseURL, "/ws")
				if err != nil {
					return err
				}
				return watchWebSocket(wsURL, w, raw)
			}

			for {
				if err := watchTCP(tcpAddr, w, raw); err != nil {
					fmt.Fprintf(errW, "disconnected: %v\n", err)
				}
				time.Sleep(1 * time.Second)
			}
		},
	}
	cmd.Flags().StringVar(&tcpAddr, "tcp", "", "TCP event feed address, e.g. 127.0.0.1:7070 (reconnects)")
	cmd.Flags().BoolVar(&raw, "raw", false, "print events as received")
	return cmd
}

func watchTCP(addr string, w io.Writer, raw bool) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	sc := bufio.NewScanner(conn)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		printEvent(w, sc.Bytes(), raw)
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return os.ErrClosed
}

func watchWebSocket(wsURL string, w io.Writer, raw bool) error {
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		printEvent(w, bytes.TrimSpace(msg), raw)
	}
}

func printEvent(w io.Writer, line []byte, raw bool) {
	if !raw {
		var buf bytes.Buffer
		if err := json.Indent(&buf, line, "", "  "); err == nil {
			fmt.Fprintln(w, buf.String())
			return
		}
	}
	fmt.Fprintln(w, string(line))
}

func websocketURL(baseURL, path string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}
	return (&url.URL{
		Scheme: scheme,
		Host:   u.Host,
		Path:   path,
	}).String(), nil
}

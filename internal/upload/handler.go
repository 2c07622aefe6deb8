package upload

import (
	"embed"
	"errors"
	"html/template"
	"mime/multipart"
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"

	"mediastats/internal/catalog"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

const (
	msgNoFile     = "Please upload a CSV file."
	msgBadExt     = "Only CSV files are allowed."
	msgTooLarge   = "File is too large."
	msgFailed     = "Analysis failed. Please check the file and try again."
	defaultPrefix = "/static/outputs/"
)

type Handler struct {
	Service *Service
	// MaxBytes caps the request body; zero means no cap.
	MaxBytes int64
	// ImagePrefix is the URL path the output directory is served under.
	ImagePrefix string
}

func NewHandler(svc *Service, maxBytes int64) *Handler {
	return &Handler{Service: svc, MaxBytes: maxBytes, ImagePrefix: defaultPrefix}
}

func (h *Handler) RegisterRoutes(rg gin.IRoutes) {
	rg.GET("/", h.index)
	rg.POST("/", h.upload)
	rg.POST("/api/analyze", h.analyze)
}

func (h *Handler) index(c *gin.Context) {
	h.page(c, http.StatusOK, "index.html", gin.H{})
}

func (h *Handler) upload(c *gin.Context) {
	fh, status, msg := h.formFile(c)
	if fh == nil {
		h.page(c, status, "index.html", gin.H{"error": msg})
		return
	}

	out, status, err := h.process(c, fh)
	if err != nil {
		h.page(c, status, "index.html", gin.H{"error": errorMessage(status, err)})
		return
	}

	h.page(c, http.StatusOK, "results.html", gin.H{
		"run":    out.Run,
		"images": h.imageURLs(out.Images),
	})
}

func (h *Handler) analyze(c *gin.Context) {
	fh, status, msg := h.formFile(c)
	if fh == nil {
		c.JSON(status, gin.H{"error": msg})
		return
	}

	out, status, err := h.process(c, fh)
	if err != nil {
		c.JSON(status, gin.H{"error": errorMessage(status, err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"run_id":   out.Run.ID,
		"summary":  out.Run.Summary,
		"manifest": out.Run.Manifest,
		"images":   h.imageURLs(out.Images),
	})
}

// formFile validates the "file" field. On failure it returns nil with the
// status and message to show.
func (h *Handler) formFile(c *gin.Context) (*multipart.FileHeader, int, string) {
	if h.MaxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxBytes)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, http.StatusRequestEntityTooLarge, msgTooLarge
		}
		return nil, http.StatusBadRequest, msgNoFile
	}
	if fh.Filename == "" {
		return nil, http.StatusBadRequest, msgNoFile
	}
	if !Allowed(fh.Filename) {
		return nil, http.StatusBadRequest, msgBadExt
	}
	return fh, 0, ""
}

func (h *Handler) process(c *gin.Context, fh *multipart.FileHeader) (*Outcome, int, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	defer f.Close()

	out, err := h.Service.Process(c.Request.Context(), fh.Filename, f)
	if err != nil {
		_ = c.Error(err)
		if errors.Is(err, catalog.ErrMissingColumn) || errors.Is(err, catalog.ErrUnreadable) {
			return nil, http.StatusBadRequest, err
		}
		return nil, http.StatusInternalServerError, err
	}
	return out, http.StatusOK, nil
}

// errorMessage exposes input problems verbatim and hides everything else.
func errorMessage(status int, err error) string {
	if status == http.StatusBadRequest {
		return err.Error()
	}
	return msgFailed
}

func (h *Handler) imageURLs(names []string) []string {
	prefix := h.ImagePrefix
	if prefix == "" {
		prefix = defaultPrefix
	}
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = path.Join(prefix, n)
	}
	return out
}

func (h *Handler) page(c *gin.Context, status int, name string, data gin.H) {
	c.Render(status, render.HTML{Template: pages, Name: name, Data: data})
}

package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediastats/internal/analysis"
	"mediastats/internal/events"
	"mediastats/internal/runs"
	"mediastats/pkg/database"
	"mediastats/pkg/models"
)

const catalogCSV = "type,rating,country,duration,listed_in\n" +
	"Movie,PG,US,90 min,\"Dramas, Comedies\"\n" +
	"TV Show,TV-MA,US,2 Seasons,Dramas\n"

func TestAllowed(t *testing.T) {
	assert.True(t, Allowed("netflix.csv"))
	assert.True(t, Allowed("NETFLIX.CSV"))
	assert.False(t, Allowed("netflix.xlsx"))
	assert.False(t, Allowed("csv"))
	assert.False(t, Allowed(""))
}

func TestSecureFilename(t *testing.T) {
	cases := map[string]string{
		"My cool movie.csv":       "My_cool_movie.csv",
		"../../../etc/passwd.csv": "etc_passwd.csv",
		`C:\data\titles.csv`:      "C_data_titles.csv",
		"café déjà.csv":           "cafe_deja.csv",
		"  .hidden.csv":           "hidden.csv",
		"ñ":                       "n",
		"日本.csv":                  "csv",
		"???":                     "upload.csv",
	}
	for in, want := range cases {
		assert.Equal(t, want, SecureFilename(in), in)
	}
}

type fixture struct {
	svc  *Service
	repo *runs.Repo
	hub  *events.Hub
	out  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.OpenAndMigrate(database.Config{Path: database.Memory})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	dir := t.TempDir()
	f := &fixture{
		repo: runs.NewRepo(db),
		hub:  events.NewHub(nil),
		out:  filepath.Join(dir, "static", "outputs"),
	}
	f.svc = &Service{
		Analyzer:  analysis.New(nil),
		Runs:      f.repo,
		Hub:       f.hub,
		UploadDir: filepath.Join(dir, "uploads"),
		OutputDir: f.out,
	}
	return f
}

func TestService_Process(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.MkdirAll(f.out, 0o755))
	stale := filepath.Join(f.out, "09_old.png")
	require.NoError(t, os.WriteFile(stale, []byte("x"), 0o644))

	out, err := f.svc.Process(context.Background(), "my titles.csv", strings.NewReader(catalogCSV))
	require.NoError(t, err)

	assert.NoFileExists(t, stale)
	assert.FileExists(t, filepath.Join(f.svc.UploadDir, "my_titles.csv"))
	assert.Equal(t, []string{
		"01_movies_vs_tvshows.png", "02_ratings_pie.png", "03_movie_duration.png",
		"05_top_countries.png", "06_genre_analysis.png",
	}, out.Images)
	assert.Equal(t, 2, out.Run.Summary.TotalRows)

	stored, err := f.repo.GetByID(context.Background(), out.Run.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "my_titles.csv", stored.Filename)
}

func TestService_ProcessSerializesRuns(t *testing.T) {
	f := newFixture(t)

	var wg sync.WaitGroup
	errs := make([]error, 3)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Process(context.Background(), "t.csv", strings.NewReader(catalogCSV))
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	images, err := ListImages(f.out)
	require.NoError(t, err)
	assert.Len(t, images, 5)

	n, err := f.repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func multipartBody(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if field != "" {
		part, err := w.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func newRouter(f *fixture, maxBytes int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(f.svc, maxBytes).RegisterRoutes(r)
	return r
}

func post(r http.Handler, target string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_Index(t *testing.T) {
	r := newRouter(newFixture(t), 0)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `name="file"`)
}

func TestHandler_UploadErrors(t *testing.T) {
	r := newRouter(newFixture(t), 0)

	body, ct := multipartBody(t, "", "", "")
	w := post(r, "/", body, ct)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), msgNoFile)

	body, ct = multipartBody(t, "file", "titles.xlsx", catalogCSV)
	w = post(r, "/", body, ct)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), msgBadExt)

	body, ct = multipartBody(t, "file", "titles.csv", "type,rating\nMovie,PG\n")
	w = post(r, "/", body, ct)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "country")
}

func TestHandler_UploadRendersResults(t *testing.T) {
	f := newFixture(t)
	r := newRouter(f, 1<<20)

	body, ct := multipartBody(t, "file", "netflix_titles.csv", catalogCSV)
	w := post(r, "/", body, ct)
	require.Equal(t, http.StatusOK, w.Code)

	html := w.Body.String()
	assert.Contains(t, html, "/static/outputs/01_movies_vs_tvshows.png")
	assert.Contains(t, html, "Dramas: 2")
	assert.Less(t,
		strings.Index(html, "01_movies_vs_tvshows.png"),
		strings.Index(html, "06_genre_analysis.png"))
}

func TestHandler_AnalyzeJSON(t *testing.T) {
	f := newFixture(t)
	r := newRouter(f, 1<<20)

	body, ct := multipartBody(t, "file", "netflix.CSV", catalogCSV)
	w := post(r, "/api/analyze", body, ct)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"top_genres":{"Dramas":2,"Comedies":1}`)

	var resp struct {
		RunID    string          `json:"run_id"`
		Summary  models.Summary  `json:"summary"`
		Manifest models.Manifest `json:"manifest"`
		Images   []string        `json:"images"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.RunID)
	assert.Equal(t, 1, resp.Summary.Movies)
	assert.Len(t, resp.Manifest, 8)
	assert.Len(t, resp.Images, 5)
}

func TestHandler_TooLarge(t *testing.T) {
	r := newRouter(newFixture(t), 64)

	body, ct := multipartBody(t, "file", "big.csv", strings.Repeat(catalogCSV, 50))
	w := post(r, "/api/analyze", body, ct)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

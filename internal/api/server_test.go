package api_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/runview/internal/analyzer"
	"github.com/vytor/runview/internal/api"
	"github.com/vytor/runview/internal/locale"
	"github.com/vytor/runview/internal/repository/sqlite"
	"github.com/vytor/runview/internal/services"
	"github.com/vytor/runview/internal/testutil"
	"github.com/vytor/runview/web"
)

const samplePayload = `{
  "totals": {"total_distance": 123.456, "total_runs": 3},
  "time_series_data": {
    "Distance": {"dates": ["2024-01-01", "2024-01-02"], "values": [5, 6], "moving_average": [null, 5.5]}
  }
}`

type dbChecker struct{ db *sql.DB }

func (c dbChecker) Check(ctx context.Context) error { return c.db.PingContext(ctx) }

type harness struct {
	app      *httptest.Server
	client   *http.Client
	upstream atomic.Value // http.HandlerFunc
	calls    atomic.Int32
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{}
	h.respondWith(http.StatusOK, samplePayload)

	analyzerSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.calls.Add(1)
		h.upstream.Load().(http.HandlerFunc)(w, r)
	}))
	t.Cleanup(analyzerSrv.Close)

	sqlDB := testutil.NewTestDB(t)
	t.Cleanup(func() { sqlDB.Close() })

	tmpl, err := api.LoadTemplates(web.Templates())
	require.NoError(t, err)

	client := analyzer.New(analyzerSrv.URL, 5*time.Second)
	srv := &api.Server{
		ReportService:  services.NewReportService(client, sqlite.NewReportRepository(sqlDB), 10, nil),
		Health:         dbChecker{db: sqlDB},
		Templates:      tmpl,
		Static:         web.Static(),
		Sessions:       api.NewSessionManager([]byte("0123456789abcdef0123456789abcdef"), false),
		Metrics:        api.NewMetrics(),
		Locales:        locale.Default(),
		MaxUploadBytes: 1 << 20,
		CORSOrigin:     "*",
	}
	h.app = httptest.NewServer(srv.Routes())
	t.Cleanup(h.app.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	h.client = &http.Client{Jar: jar}
	return h
}

func (h *harness) respondWith(status int, body string) {
	h.upstream.Store(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
}

func (h *harness) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := h.client.Get(h.app.URL + path)
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

func (h *harness) upload(t *testing.T, filename, content string) (*http.Response, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		part, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		io.WriteString(part, content)
	}
	require.NoError(t, mw.Close())

	resp, err := h.client.Post(h.app.URL+"/upload", mw.FormDataContentType(), &body)
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestUpload_NoFileNeverCallsAnalyzer(t *testing.T) {
	h := newHarness(t)

	resp, body := h.upload(t, "", "")

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "Error: Please select a file!")
	assert.Equal(t, 1, strings.Count(body, `class="feedback"`))
	assert.Zero(t, h.calls.Load())
}

func TestUpload_SuccessRendersReport(t *testing.T) {
	h := newHarness(t)

	resp, body := h.upload(t, "runs.csv", "date,distance\n")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/", resp.Request.URL.Path)
	assert.Contains(t, body, "runs.csv")
	assert.Contains(t, body, "TOTAL DISTANCE")
	assert.Contains(t, body, "123.46")
	assert.Contains(t, body, "Distance Over Time")
	assert.Contains(t, body, "/reports/1/charts/0.png")
	assert.NotContains(t, body, `class="feedback"`)
	assert.Equal(t, 1, strings.Count(body, "<html"))
	assert.Equal(t, 1, strings.Count(body, "echarts.min.js"))
	assert.EqualValues(t, 1, h.calls.Load())

	// The session remembers the report.
	_, home := h.get(t, "/")
	assert.Contains(t, home, `data-report-id="1"`)
}

func TestUpload_UpstreamFailureKeepsPriorReport(t *testing.T) {
	h := newHarness(t)
	_, _ = h.upload(t, "runs.csv", "data")

	h.respondWith(http.StatusInternalServerError, `{"detail": "Analysis failed"}`)
	resp, body := h.upload(t, "broken.csv", "data")

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, 1, strings.Count(body, `class="feedback"`))
	assert.Contains(t, body, "Error: Analysis failed")
	assert.Contains(t, body, `data-report-id="1"`)
	assert.NotContains(t, body, "broken.csv")
}

func TestUpload_MalformedResponse(t *testing.T) {
	h := newHarness(t)
	h.respondWith(http.StatusOK, `not json`)

	resp, body := h.upload(t, "runs.csv", "data")

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, body, "Error: analyzer returned a malformed response")

	_, history := h.get(t, "/reports")
	assert.Contains(t, history, "No reports yet")
}

func TestUpload_OverlappingUploadIsRejected(t *testing.T) {
	h := newHarness(t)
	_, _ = h.get(t, "/") // establish the session cookie

	started := make(chan struct{})
	release := make(chan struct{})
	h.upstream.Store(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, samplePayload)
	}))

	first := make(chan int, 1)
	go func() {
		resp, _ := h.upload(t, "slow.csv", "data")
		first <- resp.StatusCode
	}()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("first upload never reached the analyzer")
	}

	resp, body := h.upload(t, "second.csv", "data")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, body, "Error: an upload is already in progress")
	assert.Equal(t, 1, strings.Count(body, `class="feedback"`))

	close(release)
	assert.Equal(t, http.StatusOK, <-first)
	assert.EqualValues(t, 1, h.calls.Load())
}

func TestChartPNGExport(t *testing.T) {
	h := newHarness(t)
	_, _ = h.upload(t, "runs.csv", "data")

	resp, err := h.client.Get(h.app.URL + "/reports/1/charts/0.png")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	img, err := png.Decode(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 1024, img.Bounds().Dx())

	missing, _ := h.get(t, "/reports/1/charts/7.png")
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestChartPNGExport_SingleRun(t *testing.T) {
	h := newHarness(t)
	h.respondWith(http.StatusOK, `{"time_series_data": {"Avg HR": {"dates": ["2024-01-01"], "values": [150], "moving_average": [null]}}}`)
	_, _ = h.upload(t, "one-run.csv", "data")

	resp, err := h.client.Get(h.app.URL + "/reports/1/charts/0.png")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	_, err = png.Decode(resp.Body)
	require.NoError(t, err)
}

func TestReportHistoryAndDelete(t *testing.T) {
	h := newHarness(t)
	_, _ = h.upload(t, "january.csv", "data")
	_, _ = h.upload(t, "february.csv", "data")

	resp, body := h.get(t, "/reports")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "january.csv")
	assert.Contains(t, body, "february.csv")
	assert.Contains(t, body, "(2 reports)")
	assert.Contains(t, body, `<span class="current">1</span>`)

	_, filtered := h.get(t, "/reports?q=jan")
	assert.Contains(t, filtered, "january.csv")
	assert.NotContains(t, filtered, "february.csv")

	resp, detail := h.get(t, "/reports/1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, detail, "TOTAL RUNS")

	resp, err := h.client.Post(h.app.URL+"/reports/2/delete", "application/x-www-form-urlencoded", nil)
	require.NoError(t, err)
	readBody(t, resp)
	assert.Equal(t, "/reports", resp.Request.URL.Path)

	gone, body := h.get(t, "/reports/2")
	assert.Equal(t, http.StatusNotFound, gone.StatusCode)
	assert.Contains(t, body, "Error: report not found: 2")

	// The session pointed at report 2, so the home page is empty again.
	_, home := h.get(t, "/")
	assert.NotContains(t, home, "data-report-id")

	bad, _ := h.get(t, "/reports/abc")
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
}

func TestAPIReportReturnsStoredPayload(t *testing.T) {
	h := newHarness(t)
	_, _ = h.upload(t, "runs.csv", "data")

	resp, body := h.get(t, "/api/reports/1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.JSONEq(t, samplePayload, body)

	resp, body = h.get(t, "/api/reports/99")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, `"NOT_FOUND"`)
}

func TestAPIRender(t *testing.T) {
	h := newHarness(t)

	resp, err := h.client.Post(h.app.URL+"/api/render", "application/json", strings.NewReader(samplePayload))
	require.NoError(t, err)
	body := readBody(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Tables []struct {
			ID string `json:"id"`
		} `json:"tables"`
		Charts []struct {
			ID       string `json:"id"`
			Datasets []struct {
				Label string     `json:"label"`
				Data  []*float64 `json:"data"`
			} `json:"datasets"`
		} `json:"charts"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	require.Len(t, out.Tables, 1)
	assert.Equal(t, "totals", out.Tables[0].ID)
	require.Len(t, out.Charts, 1)
	assert.Equal(t, "series-distance", out.Charts[0].ID)
	require.Len(t, out.Charts[0].Datasets, 2)
	assert.Nil(t, out.Charts[0].Datasets[1].Data[0])
	assert.Zero(t, h.calls.Load())
}

func TestAPIRender_RejectsBadPayloads(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		name string
		body string
	}{
		{"not json", `{`},
		{"empty object", `{}`},
		{"wrong shape", `{"totals": [1, 2]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := h.client.Post(h.app.URL+"/api/render", "application/json", strings.NewReader(tt.body))
			require.NoError(t, err)
			body := readBody(t, resp)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Contains(t, body, `"VALIDATION_ERROR"`)
		})
	}
}

func TestAPICORSPreflight(t *testing.T) {
	h := newHarness(t)

	req, err := http.NewRequest(http.MethodOptions, h.app.URL+"/api/render", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := h.client.Do(req)
	require.NoError(t, err)
	readBody(t, resp)

	assert.Less(t, resp.StatusCode, 300)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestHealthAndMetrics(t *testing.T) {
	h := newHarness(t)

	resp, body := h.get(t, "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", body)

	resp, body = h.get(t, "/readyz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Ready", body)

	_, _ = h.upload(t, "", "")
	_, body = h.get(t, "/metrics")
	assert.Contains(t, body, `runview_uploads_total{outcome="bad_request"} 1`)
	assert.Contains(t, body, "runview_http_requests_total")
}

func TestSecurityHeaders(t *testing.T) {
	h := newHarness(t)

	resp, _ := h.get(t, "/")
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

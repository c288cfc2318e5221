package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/smazurov/scalerwatch/internal/colors"
	"github.com/smazurov/scalerwatch/internal/report"
	"github.com/smazurov/scalerwatch/pkg/ascal"
)

type fakeSource struct {
	latest report.Report
	ready  bool
	header ascal.Header
	layout ascal.Layout
}

func (f *fakeSource) Latest() (report.Report, bool)        { return f.latest, f.ready }
func (f *fakeSource) Header() (ascal.Header, ascal.Layout) { return f.header, f.layout }

func newTestServer(src *fakeSource, user, pass string) http.Handler {
	return NewServer(&Options{
		AuthUsername: user,
		AuthPassword: pass,
		Source:       src,
		Counters:     func(ascal.Layout) [3]uint8 { return [3]uint8{1, 2, 3} },
		PrometheusHandler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("# metrics\n"))
		}),
		StreamHandler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("stream opened"))
		}),
	}).Handler()
}

func get(t *testing.T, h http.Handler, path string, auth ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if len(auth) == 2 {
		req.SetBasicAuth(auth[0], auth[1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestStatusEndpoint(t *testing.T) {
	src := &fakeSource{}
	h := newTestServer(src, "", "")

	if rec := get(t, h, "/api/status"); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("before first frame: status = %d, want 503", rec.Code)
	}
	if rec := get(t, h, "/healthz"); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("healthz before first frame = %d, want 503", rec.Code)
	}

	src.latest = report.Report{
		Timestamp: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Color:     colors.RGB{R: 255},
		ColorName: "Red",
		Samples:   1200,
		Changed:   true,
	}
	src.ready = true

	rec := get(t, h, "/api/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var got report.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Color != (colors.RGB{R: 255}) || got.ColorName != "Red" || got.Samples != 1200 || !got.Changed {
		t.Errorf("got %+v", got)
	}

	if rec := get(t, h, "/healthz"); rec.Code != http.StatusOK {
		t.Errorf("healthz = %d, want 200", rec.Code)
	}
}

func TestHeaderEndpoint(t *testing.T) {
	src := &fakeSource{
		header: ascal.Header{Type: 1, Format: ascal.FormatRGB16, HeaderLen: 16, Attributes: 0xB0, Width: 320, Height: 240, Line: 640},
		layout: ascal.Layout{Triple: true},
	}
	h := newTestServer(src, "", "")

	rec := get(t, h, "/api/header")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var body struct {
		Header        ascal.Header `json:"header"`
		BytesPerPixel int          `json:"bytes_per_pixel"`
		Layout        string       `json:"layout"`
		Triple        bool         `json:"triple"`
		FrameCounter  uint8        `json:"frame_counter"`
		Counters      []int        `json:"counters"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Header.Width != 320 || body.BytesPerPixel != 2 || body.Layout != "triple-small" {
		t.Errorf("got %+v", body)
	}
	if !body.Triple || body.FrameCounter != 5 || !reflect.DeepEqual(body.Counters, []int{1, 2, 3}) {
		t.Errorf("triple/counter fields wrong: %+v", body)
	}
}

func TestBasicAuth(t *testing.T) {
	src := &fakeSource{ready: true}
	h := newTestServer(src, "admin", "secret")

	tests := []struct {
		name string
		path string
		auth []string
		want int
	}{
		{"status without credentials", "/api/status", nil, http.StatusUnauthorized},
		{"status with wrong password", "/api/status", []string{"admin", "nope"}, http.StatusUnauthorized},
		{"status with credentials", "/api/status", []string{"admin", "secret"}, http.StatusOK},
		{"version is open", "/api/version", nil, http.StatusOK},
		{"healthz is open", "/healthz", nil, http.StatusOK},
		{"metrics is open", "/metrics", nil, http.StatusOK},
		{"stream without credentials", "/ws", nil, http.StatusUnauthorized},
		{"stream with wrong password", "/ws", []string{"admin", "nope"}, http.StatusUnauthorized},
		{"stream with credentials", "/ws", []string{"admin", "secret"}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, h, tt.path, tt.auth...)
			if rec.Code != tt.want {
				t.Errorf("%s = %d, want %d", tt.path, rec.Code, tt.want)
			}
		})
	}
}

func TestParseBasicAuth(t *testing.T) {
	tests := []struct {
		header     string
		user, pass string
		ok         bool
	}{
		{"Basic YWRtaW46c2VjcmV0", "admin", "secret", true},
		{"Bearer token", "", "", false},
		{"Basic !!!", "", "", false},
		{"Basic YWRtaW4=", "", "", false},
		{"Basic YWRtaW46", "admin", "", true},
	}
	for _, tt := range tests {
		user, pass, ok := parseBasicAuth(tt.header)
		if user != tt.user || pass != tt.pass || ok != tt.ok {
			t.Errorf("parseBasicAuth(%q) = %q, %q, %v", tt.header, user, pass, ok)
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	h := newTestServer(&fakeSource{}, "", "")
	req := httptest.NewRequest(http.MethodOptions, "/api/status", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "GET, OPTIONS" {
		t.Errorf("allow methods = %q", got)
	}
}

func TestRunStops(t *testing.T) {
	srv := NewServer(&Options{Source: &fakeSource{}})

	if err := srv.Run(context.Background(), "256.0.0.1:bad"); err == nil {
		t.Error("Run() with a bad address should fail")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, "127.0.0.1:0") }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() after cancel = %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

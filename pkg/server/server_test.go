package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/matzehuels/archmap/pkg/pipeline"
	"github.com/matzehuels/archmap/pkg/server/prefs"
	"github.com/matzehuels/archmap/pkg/source"
)

type stubReader struct{ folder *source.CodeFolder }

func (r *stubReader) ReadFolder(ctx context.Context, location source.ProjectLocation) (*source.CodeFolder, error) {
	return r.folder, nil
}

func newTestController(t *testing.T) *pipeline.Controller {
	t.Helper()
	ctrl, err := pipeline.NewController(pipeline.Options{
		Location: source.ProjectLocation{
			FolderPath:      "/src/project",
			CodeFileEndings: []string{"go"},
		},
		Reader: &stubReader{folder: &source.CodeFolder{
			Name:  "project",
			Files: []*source.CodeFile{{Name: "main.go", Path: "main.go", Lines: []string{"package main"}}},
		}},
	})
	if err != nil {
		t.Fatalf("NewController() error: %v", err)
	}
	return ctrl
}

func TestHealthz(t *testing.T) {
	srv := New(newTestController(t), nil, nil)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestStateBeforeRun(t *testing.T) {
	srv := New(newTestController(t), nil, nil)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/state", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var state struct {
		Kind string `json:"kind"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&state); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if state.Kind != "located" {
		t.Errorf("kind = %q, want located", state.Kind)
	}
}

func TestSnapshotUnavailableUntilReady(t *testing.T) {
	ctrl := newTestController(t)
	srv := New(ctrl, nil, nil)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/snapshot", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status before run = %d, want 503", rec.Code)
	}

	if _, err := ctrl.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/snapshot", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status after run = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"project"`) {
		t.Error("snapshot body should contain the project")
	}
}

func TestPrefsRoundTrip(t *testing.T) {
	srv := New(newTestController(t), prefs.NewMemoryStore(), nil)

	// Defaults come back before anything is stored.
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/prefs", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET status = %d, want 200", rec.Code)
	}
	var got prefs.Prefs
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != prefs.DefaultPrefs() {
		t.Errorf("initial prefs = %+v, want defaults", got)
	}

	// Update and read back.
	body := strings.NewReader(`{"right_sidebar_width": 420, "show_right_sidebar": false, "show_left_sidebar": true}`)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/prefs", body))
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/prefs", nil))
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := prefs.Prefs{RightSidebarWidth: 420, ShowRightSidebar: false, ShowLeftSidebar: true}
	if got != want {
		t.Errorf("prefs = %+v, want %+v", got, want)
	}
}

func TestPutPrefsRejectsBadJSON(t *testing.T) {
	srv := New(newTestController(t), nil, nil)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/prefs", strings.NewReader("{not json")))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

package inventory

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"machboard/pkg/render"
)

func newTestAPI(t *testing.T, seed []Machine) (http.Handler, *Store) {
	t.Helper()

	store := NewStore(newTestKV(t), StoreOptions{Seed: seed, Logger: zerolog.Nop()})

	renderer, err := render.New()
	if err != nil {
		t.Fatalf("render.New() error = %v", err)
	}

	api, err := NewAPI(Deps{Store: store}, renderer, APIConfig{Title: "Test Floor"})
	if err != nil {
		t.Fatalf("NewAPI() error = %v", err)
	}

	routes, err := api.Routes()
	if err != nil {
		t.Fatalf("Routes() error = %v", err)
	}
	return routes, store
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeMachine(t *testing.T, rec *httptest.ResponseRecorder) Machine {
	t.Helper()
	var resp struct {
		Machine Machine `json:"machine"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
	return resp.Machine
}

func decodeMachineList(t *testing.T, rec *httptest.ResponseRecorder) []Machine {
	t.Helper()
	var resp struct {
		Machines []Machine `json:"machines"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
	return resp.Machines
}

func TestCreateMachine(t *testing.T) {
	handler, store := newTestAPI(t, nil)

	rec := doJSON(t, handler, http.MethodPost, "/v1/machines", map[string]string{
		"name":   "Cutter A",
		"status": "Running",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (body %q)", rec.Code, http.StatusCreated, rec.Body.String())
	}

	created := decodeMachine(t, rec)
	if created.ID == uuid.Nil {
		t.Fatal("created machine has no id")
	}
	if created.Status != StatusRunning {
		t.Fatalf("created status = %q, want Running", created.Status)
	}
	if created.LastUpdated.IsZero() {
		t.Fatal("created machine has no timestamp")
	}
	if _, ok := store.Get(created.ID); !ok {
		t.Fatal("created machine not in store")
	}
}

func TestCreateMachineDefaultsToIdle(t *testing.T) {
	handler, _ := newTestAPI(t, nil)

	rec := doJSON(t, handler, http.MethodPost, "/v1/machines", map[string]string{"name": "Press B"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusCreated)
	}
	if got := decodeMachine(t, rec); got.Status != StatusIdle {
		t.Fatalf("default status = %q, want Idle", got.Status)
	}
}

func TestCreateMachineRejectsShortName(t *testing.T) {
	handler, store := newTestAPI(t, nil)

	rec := doJSON(t, handler, http.MethodPost, "/v1/machines", map[string]string{"name": "A"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
	if len(store.List()) != 0 {
		t.Fatal("rejected create mutated the store")
	}
}

func TestCreateMachineRejectsUnknownStatus(t *testing.T) {
	handler, _ := newTestAPI(t, nil)

	rec := doJSON(t, handler, http.MethodPost, "/v1/machines", map[string]string{
		"name":   "Cutter A",
		"status": "Exploded",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestListMachinesFilters(t *testing.T) {
	handler, _ := newTestAPI(t, DefaultSeed())

	tests := []struct {
		name      string
		path      string
		wantCode  int
		wantCount int
	}{
		{name: "no filters", path: "/v1/machines", wantCode: http.StatusOK, wantCount: 6},
		{name: "explicit ALL", path: "/v1/machines?status=ALL", wantCode: http.StatusOK, wantCount: 6},
		{name: "running only", path: "/v1/machines?status=Running", wantCode: http.StatusOK, wantCount: 3},
		{name: "query match", path: "/v1/machines?q=cutt", wantCode: http.StatusOK, wantCount: 1},
		{name: "query miss", path: "/v1/machines?q=zzz", wantCode: http.StatusOK, wantCount: 0},
		{name: "combined", path: "/v1/machines?status=Idle&q=press", wantCode: http.StatusOK, wantCount: 1},
		{name: "unknown status", path: "/v1/machines?status=Bogus", wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, handler, http.MethodGet, tt.path, nil)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantCode != http.StatusOK {
				return
			}
			if got := decodeMachineList(t, rec); len(got) != tt.wantCount {
				t.Fatalf("list has %d machines, want %d", len(got), tt.wantCount)
			}
		})
	}
}

func TestGetMachine(t *testing.T) {
	handler, store := newTestAPI(t, DefaultSeed())
	target := store.List()[0]

	rec := doJSON(t, handler, http.MethodGet, "/v1/machines/"+target.ID.String(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := decodeMachine(t, rec); got.ID != target.ID {
		t.Fatalf("got machine %s, want %s", got.ID, target.ID)
	}

	rec = doJSON(t, handler, http.MethodGet, "/v1/machines/"+uuid.NewString(), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}

	rec = doJSON(t, handler, http.MethodGet, "/v1/machines/not-a-uuid", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestUpdateMachine(t *testing.T) {
	handler, store := newTestAPI(t, DefaultSeed())
	target := store.List()[1]

	rec := doJSON(t, handler, http.MethodPut, "/v1/machines/"+target.ID.String(), map[string]string{
		"name":   "Press B Mk2",
		"status": "Offline",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %q)", rec.Code, http.StatusOK, rec.Body.String())
	}

	got, ok := store.Get(target.ID)
	if !ok {
		t.Fatal("updated machine missing")
	}
	if got.Name != "Press B Mk2" || got.Status != StatusOffline {
		t.Fatalf("stored machine = %+v", got)
	}
	if got.LastUpdated.Before(target.LastUpdated) {
		t.Fatal("update did not refresh LastUpdated")
	}
}

func TestUpdateUnknownMachineIsSilent(t *testing.T) {
	handler, store := newTestAPI(t, DefaultSeed())
	before := len(store.List())

	rec := doJSON(t, handler, http.MethodPut, "/v1/machines/"+uuid.NewString(), map[string]string{
		"name":   "Ghost X",
		"status": "Idle",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if len(store.List()) != before {
		t.Fatal("update of unknown id changed the collection")
	}
}

func TestDeleteAndUndoMachine(t *testing.T) {
	handler, store := newTestAPI(t, DefaultSeed())
	target := store.List()[2]

	rec := doJSON(t, handler, http.MethodDelete, "/v1/machines/"+target.ID.String(), nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if _, ok := store.Get(target.ID); ok {
		t.Fatal("machine still present after delete")
	}

	rec = doJSON(t, handler, http.MethodPost, "/v1/machines/undo", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("undo status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := decodeMachine(t, rec); got.ID != target.ID {
		t.Fatalf("undo restored %s, want %s", got.ID, target.ID)
	}

	// Buffer is now empty.
	rec = doJSON(t, handler, http.MethodPost, "/v1/machines/undo", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("second undo status = %d, want %d", rec.Code, http.StatusNoContent)
	}
}

func TestSnapshotWithoutS3(t *testing.T) {
	handler, _ := newTestAPI(t, DefaultSeed())

	rec := doJSON(t, handler, http.MethodPost, "/v1/snapshots", nil)
	if rec.Code != http.StatusFailedDependency {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusFailedDependency)
	}
}

func TestDashboard(t *testing.T) {
	handler, _ := newTestAPI(t, DefaultSeed())

	rec := doJSON(t, handler, http.MethodGet, "/?status=Running", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("content type = %q, want text/html", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Test Floor") {
		t.Fatal("dashboard missing configured title")
	}
	if !strings.Contains(body, "Cutter A") || strings.Contains(body, "Welder D") {
		t.Fatal("dashboard did not apply status filter")
	}
}

func TestHealthEndpoints(t *testing.T) {
	handler, _ := newTestAPI(t, nil)

	if rec := doJSON(t, handler, http.MethodGet, "/healthz", nil); rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", rec.Code)
	}
	if rec := doJSON(t, handler, http.MethodGet, "/readyz", nil); rec.Code != http.StatusOK {
		t.Fatalf("readyz status = %d", rec.Code)
	}
}

package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/debimpact/pkg/cache"
	"github.com/matzehuels/debimpact/pkg/corpus"
	"github.com/matzehuels/debimpact/pkg/pipeline"
	"github.com/matzehuels/debimpact/pkg/pkgdb"
	"github.com/matzehuels/debimpact/pkg/resolve"
	"github.com/matzehuels/debimpact/pkg/store"
)

const sources = `Package: openssl
Section: libs
Architecture: any
Binary: libssl3, openssl

Package: curl
Section: web
Architecture: any
Homepage: https://curl.se
Binary: curl, libcurl4
Build-Depends: libssl3

Package: git
Section: vcs
Architecture: any
Binary: git
Build-Depends: libcurl4

Package: docs
Architecture: all
Binary: docs
Build-Depends: libssl3
`

func newTestServer(t *testing.T, st store.Store) *httptest.Server {
	t.Helper()
	db, err := pkgdb.Load(strings.NewReader(sources))
	if err != nil {
		t.Fatal(err)
	}
	logger := log.New(io.Discard)
	s := New(Config{
		Database: db,
		Digest:   corpus.Digest([]byte(sources)),
		Runner:   pipeline.NewRunner(cache.NewNullCache(), nil, logger),
		Resolve:  resolve.Options{FilterPureAll: true},
		Store:    st,
		Logger:   logger,
	})
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func post(t *testing.T, url, body string, v any) int {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, nil)
	var body map[string]any
	if code := get(t, srv.URL+"/healthz", &body); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if body["status"] != "ok" || body["packages"] != float64(4) {
		t.Errorf("body = %v", body)
	}
}

func TestPackage(t *testing.T) {
	srv := newTestServer(t, nil)

	var pkg packageResponse
	if code := get(t, srv.URL+"/v1/packages/curl", &pkg); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if pkg.Section != "web" || pkg.Homepage != "https://curl.se" || len(pkg.Binaries) != 2 {
		t.Errorf("package = %+v", pkg)
	}

	var e errorResponse
	if code := get(t, srv.URL+"/v1/packages/nosuch", &e); code != http.StatusNotFound {
		t.Errorf("missing package status = %d", code)
	}
	if e.Error != "NOT_FOUND" {
		t.Errorf("error = %+v", e)
	}
}

func TestSourceOf(t *testing.T) {
	srv := newTestServer(t, nil)
	tests := []struct{ binary, want string }{
		{"libcurl4", "curl"},
		{"openssl", "openssl"},
		{"nosuch", "nosuch"},
	}
	for _, tt := range tests {
		var body map[string]string
		if code := get(t, srv.URL+"/v1/binaries/"+tt.binary+"/source", &body); code != http.StatusOK {
			t.Fatalf("status = %d", code)
		}
		if body["source"] != tt.want {
			t.Errorf("source of %s = %q, want %q", tt.binary, body["source"], tt.want)
		}
	}
}

func TestDependents(t *testing.T) {
	srv := newTestServer(t, nil)

	var body struct {
		Dependents []dependentResponse `json:"dependents"`
	}
	get(t, srv.URL+"/v1/dependents/libssl3", &body)
	if len(body.Dependents) != 1 || body.Dependents[0].Package != "curl" {
		t.Errorf("filtered dependents = %+v", body.Dependents)
	}

	get(t, srv.URL+"/v1/dependents/libssl3?filter_pure_all=false", &body)
	if len(body.Dependents) != 2 {
		t.Errorf("unfiltered dependents = %+v", body.Dependents)
	}

	if code := get(t, srv.URL+"/v1/dependents/libssl3?filter_pure_all=maybe", nil); code != http.StatusBadRequest {
		t.Errorf("bad filter status = %d", code)
	}
}

func TestResolve(t *testing.T) {
	srv := newTestServer(t, nil)

	var resp struct {
		resolve.Report
		Cached bool `json:"cached"`
	}
	code := post(t, srv.URL+"/v1/resolve", `{"mode":"binary","targets":["libssl3"]}`, &resp)
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	got := map[string]string{}
	for _, e := range resp.Entries {
		got[e.Name] = e.DependencyChain()
	}
	if got["curl"] != "libssl3 -> curl" || got["git"] != "libssl3 -> curl -> git" || len(got) != 2 {
		t.Errorf("entries = %v", got)
	}

	code = post(t, srv.URL+"/v1/resolve", `{"mode":"source","targets":["openssl"],"filter_pure_all":false}`, &resp)
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if resp.Mode != resolve.ModeSource || len(resp.Entries) != 3 {
		t.Errorf("source report = %+v", resp.Report)
	}
}

func TestResolveErrors(t *testing.T) {
	srv := newTestServer(t, nil)
	tests := []struct {
		name string
		body string
		code int
	}{
		{"empty targets", `{"targets":[]}`, http.StatusBadRequest},
		{"bad mode", `{"mode":"both","targets":["x1"]}`, http.StatusBadRequest},
		{"bad json", `{`, http.StatusBadRequest},
		{"unknown field", `{"targets":["curl"],"colour":1}`, http.StatusBadRequest},
		{"negative depth", `{"targets":["curl"],"max_depth":-1}`, http.StatusBadRequest},
		{"save without store", `{"targets":["curl"],"save":true}`, http.StatusNotImplemented},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code := post(t, srv.URL+"/v1/resolve", tt.body, nil); code != tt.code {
				t.Errorf("status = %d, want %d", code, tt.code)
			}
		})
	}
}

func TestReportHistory(t *testing.T) {
	srv := newTestServer(t, store.NewMemoryStore())

	var saved struct {
		ID    string `json:"id"`
		Saved bool   `json:"saved"`
	}
	if code := post(t, srv.URL+"/v1/resolve", `{"targets":["libssl3"],"save":true}`, &saved); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if !saved.Saved || saved.ID == "" {
		t.Fatalf("resolve response = %+v", saved)
	}

	var list struct {
		Reports []store.Summary `json:"reports"`
	}
	get(t, srv.URL+"/v1/reports", &list)
	if len(list.Reports) != 1 || list.Reports[0].ID != saved.ID || list.Reports[0].Dependents != 2 {
		t.Errorf("reports = %+v", list.Reports)
	}

	var report resolve.Report
	if code := get(t, srv.URL+"/v1/reports/"+saved.ID, &report); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if len(report.Entries) != 2 {
		t.Errorf("stored report = %+v", report)
	}

	if code := get(t, srv.URL+"/v1/reports/00000000-0000-4000-8000-000000000000", nil); code != http.StatusNotFound {
		t.Errorf("missing report status = %d", code)
	}
	if code := get(t, srv.URL+"/v1/reports/not-an-id", nil); code != http.StatusBadRequest {
		t.Errorf("bad id status = %d", code)
	}
}

func TestHistoryDisabled(t *testing.T) {
	srv := newTestServer(t, nil)
	if code := get(t, srv.URL+"/v1/reports", nil); code != http.StatusNotImplemented {
		t.Errorf("status = %d, want 501", code)
	}
}

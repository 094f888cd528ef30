package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestSetupLoadsRemoteBoundaries(t *testing.T) {
	world := filepath.Join("..", "..", "pkg", "boundary", "testdata", "world.geo.json")
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		http.ServeFile(w, r, world)
	}))
	defer srv.Close()

	cli := CLI{
		LogLevel:    "error",
		Boundaries:  srv.URL + "/world.geo.json",
		Connections: filepath.Join("..", "..", "pkg", "connections", "testdata", "routes.geo.json"),
		CacheDir:    t.TempDir(),
	}
	for i := 0; i < 2; i++ {
		a, err := cli.setup()
		if err != nil {
			t.Fatalf("setup #%d: %v", i, err)
		}
		if len(a.features) != 4 || len(a.skipped) != 4 {
			t.Errorf("setup #%d: %d features, %d skipped; want 4, 4", i, len(a.features), len(a.skipped))
		}
		if len(a.conns) != 3 {
			t.Errorf("setup #%d: %d connections; want 3", i, len(a.conns))
		}
	}
	if hits != 1 {
		t.Errorf("server hits = %d; want 1", hits)
	}
}

func TestSetupErrors(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	empty := filepath.Join(t.TempDir(), "empty.json")
	if err := os.WriteFile(empty, []byte(`{"type":"FeatureCollection","features":[]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		cli  CLI
	}{
		{"missing file", CLI{Boundaries: filepath.Join(t.TempDir(), "nope.json")}},
		{"remote 404", CLI{Boundaries: srv.URL + "/world.geo.json"}},
		{"no features", CLI{Boundaries: empty}},
		{"bad level", CLI{LogLevel: "loud", Boundaries: empty}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.cli.LogLevel == "" {
				tt.cli.LogLevel = "error"
			}
			if _, err := tt.cli.setup(); err == nil {
				t.Errorf("setup() = nil error; want failure")
			}
		})
	}
}

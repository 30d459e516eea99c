package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/muchdogesec/location2stix/pkg/hierarchy"
	"github.com/muchdogesec/location2stix/pkg/stix"
	"github.com/muchdogesec/location2stix/pkg/store"
	"github.com/muchdogesec/location2stix/pkg/taxonomy"
)

var testProvenance = stix.Provenance{
	CreatedByRef:    "identity--d2916708-57b9-5636-8689-62f049e9f727",
	MarkingRef:      "marking-definition--d2916708-57b9-5636-8689-62f049e9f727",
	FixedMarkingRef: "marking-definition--94868c89-83c2-464b-929b-a1a8aa3c8487",
}

func testBundle(t *testing.T) *stix.Bundle {
	t.Helper()
	rows := []taxonomy.Row{
		{Name: "Kenya", Alpha2: "KE", Alpha3: "KEN", CountryCode: "404", ISO31662: "ISO 3166-2:KE",
			Region: "Africa", SubRegion: "Sub-Saharan Africa", IntermediateRegion: "Eastern Africa"},
		{Name: "Uganda", Alpha2: "UG", Alpha3: "UGA", CountryCode: "800", ISO31662: "ISO 3166-2:UG",
			Region: "Africa", SubRegion: "Sub-Saharan Africa", IntermediateRegion: "Eastern Africa"},
	}
	ctx := context.Background()
	s := store.NewMemoryStore()
	nodes, err := hierarchy.NewBuilder(s, testProvenance, nil).Build(ctx, rows)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := hierarchy.NewSynthesizer(s, testProvenance, nil).Synthesize(ctx, taxonomy.NewIndex(rows), nodes); err != nil {
		t.Fatal(err)
	}
	objs, err := s.Query(ctx)
	if err != nil {
		t.Fatal(err)
	}
	all := make([]stix.Object, len(objs))
	for i, o := range objs {
		all[i] = o
	}
	b, err := stix.NewBundle(all...)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv, err := New(testBundle(t), log.New(io.Discard))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, ts *httptest.Server, path string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, body
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp, body := get(t, ts, "/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var got struct {
		Status  string `json:"status"`
		Objects int    `json:"objects"`
	}
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatal(err)
	}
	// 2 countries, 1 region, 1 sub-region, 1 intermediate region, 8 edges
	if got.Status != "ok" || got.Objects != 13 {
		t.Errorf("healthz = %+v", got)
	}
}

func TestBundle(t *testing.T) {
	ts := newTestServer(t)
	resp, body := get(t, ts, "/bundle")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	b, err := stix.ReadBundle(bytes.NewReader(body))
	if err != nil {
		t.Fatalf("ReadBundle() error: %v", err)
	}
	if b.Len() != 13 {
		t.Errorf("bundle has %d objects, want 13", b.Len())
	}
	if !bytes.Contains(body, []byte("\n    \"objects\": [")) {
		t.Error("bundle should be four-space indented")
	}
}

func TestObjects(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		query string
		want  int
	}{
		{"", 13},
		{"?type=location", 5},
		{"?type=relationship", 8},
		{"?type=identity", 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			_, body := get(t, ts, "/objects"+tt.query)
			var objs []json.RawMessage
			if err := json.Unmarshal(body, &objs); err != nil {
				t.Fatal(err)
			}
			if len(objs) != tt.want {
				t.Errorf("GET /objects%s returned %d, want %d", tt.query, len(objs), tt.want)
			}
		})
	}
}

func TestObject(t *testing.T) {
	ts := newTestServer(t)
	kenya := stix.NodeID("Kenya")

	resp, body := get(t, ts, "/objects/"+kenya)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var loc stix.Location
	if err := json.Unmarshal(body, &loc); err != nil {
		t.Fatal(err)
	}
	if loc.Name != "Kenya" || loc.Country != "KE" {
		t.Errorf("object = %+v", loc)
	}

	resp, body = get(t, ts, "/objects/"+stix.NodeID("Atlantis"))
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing object status = %d", resp.StatusCode)
	}
	var e ErrorResponse
	if err := json.Unmarshal(body, &e); err != nil || e.Code != http.StatusNotFound {
		t.Errorf("error body = %s", body)
	}
}

func TestParentsAndChildren(t *testing.T) {
	ts := newTestServer(t)

	names := func(body []byte) []string {
		var locs []stix.Location
		if err := json.Unmarshal(body, &locs); err != nil {
			t.Fatal(err)
		}
		out := make([]string, len(locs))
		for i, l := range locs {
			out[i] = l.Name
		}
		return out
	}

	_, body := get(t, ts, "/locations/"+stix.NodeID("Kenya")+"/parents")
	if got := strings.Join(names(body), ","); got != "Sub-Saharan Africa,Africa,Eastern Africa" {
		t.Errorf("Kenya parents = %s", got)
	}

	_, body = get(t, ts, "/locations/"+stix.NodeID("Africa")+"/children")
	if got := strings.Join(names(body), ","); got != "Kenya,Uganda,Sub-Saharan Africa" {
		t.Errorf("Africa children = %s", got)
	}

	_, body = get(t, ts, "/locations/"+stix.NodeID("Africa")+"/parents")
	if got := names(body); len(got) != 0 {
		t.Errorf("Africa parents = %v, want none", got)
	}

	resp, _ := get(t, ts, "/locations/"+stix.NodeID("Atlantis")+"/children")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown location status = %d", resp.StatusCode)
	}
}

func TestGraphDOT(t *testing.T) {
	ts := newTestServer(t)
	resp, body := get(t, ts, "/graph.dot?root=Eastern+Africa")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	dot := string(body)
	if !strings.HasPrefix(dot, "digraph G {") {
		t.Errorf("body is not DOT:\n%s", dot)
	}
	if strings.Contains(dot, stix.NodeID("Africa")) {
		t.Error("root=Eastern Africa should exclude its containers")
	}
	if !strings.Contains(dot, stix.NodeID("Uganda")) {
		t.Error("root=Eastern Africa should include Uganda")
	}
}

func TestListenAndServeShutdown(t *testing.T) {
	srv, err := New(testBundle(t), log.New(io.Discard))
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx, "127.0.0.1:0") }()

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("ListenAndServe() = %v, want context.Canceled", err)
		}
	case <-time.After(ShutdownTimeout + time.Second):
		t.Fatal("ListenAndServe() did not return after cancel")
	}
}

func TestNewInvalidBundle(t *testing.T) {
	b := &stix.Bundle{Type: stix.TypeBundle, Objects: []json.RawMessage{json.RawMessage(`{"type":"location"}`)}}
	if _, err := New(b, nil); err == nil {
		t.Error("New() should fail on an object without a valid id")
	}
}

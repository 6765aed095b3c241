package gallery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

type testBackend struct {
	srv    *Server
	http   *httptest.Server
	client *Client
	dir    string
}

func newTestBackend(t *testing.T, opts ...Option) *testBackend {
	t.Helper()
	dir := t.TempDir()
	blobs, err := OpenDirBlobs(dir)
	if err != nil {
		t.Fatal(err)
	}
	srv := NewServer(blobs, opts...)
	hs := httptest.NewServer(srv)
	t.Cleanup(func() {
		srv.Feed().Close()
		hs.Close()
		_ = blobs.Close()
	})
	return &testBackend{
		srv:    srv,
		http:   hs,
		client: NewClient(hs.URL+"/", WithHTTPClient(hs.Client())),
		dir:    dir,
	}
}

// age sets the creation time of a stored drawing.
func (b *testBackend) age(t *testing.T, id string, created time.Time) {
	t.Helper()
	p := filepath.Join(b.dir, "drawings", id+".png")
	if err := os.Chtimes(p, created, created); err != nil {
		t.Fatal(err)
	}
}

func TestServerClientRoundTrip(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)

	d, err := b.client.SaveAs(ctx, "first", pngStub)
	if err != nil {
		t.Fatalf("SaveAs() error = %v", err)
	}
	if d.ID != "first" {
		t.Errorf("SaveAs() id = %q, want %q", d.ID, "first")
	}
	if want := b.http.URL + "/drawings/first.png"; d.URL != want {
		t.Errorf("SaveAs() url = %q, want %q", d.URL, want)
	}

	// The returned URL serves the PNG.
	resp, err := b.http.Client().Get(d.URL)
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !bytes.Equal(body, pngStub) {
		t.Errorf("GET %s = %d %q, want the PNG", d.URL, resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q, want image/png", ct)
	}

	second, err := b.client.Save(ctx, pngStub)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if !ValidID(second.ID) {
		t.Errorf("Save() generated id %q", second.ID)
	}
	b.age(t, "first", time.Now().Add(-time.Hour))

	list, err := b.client.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	opts := cmpopts.EquateApproxTime(2 * time.Second)
	want := []Drawing{second, {ID: "first", URL: d.URL, CreatedAt: time.Now().Add(-time.Hour)}}
	if diff := cmp.Diff(want, list, opts); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}

	got, err := b.client.FetchByIDs(ctx, []string{"first", "nope", "../x", second.ID})
	if err != nil {
		t.Fatalf("FetchByIDs() error = %v", err)
	}
	if diff := cmp.Diff([]Drawing{want[1], second}, got, opts); diff != "" {
		t.Errorf("FetchByIDs() mismatch (-want +got):\n%s", diff)
	}

	if err := b.client.Delete(ctx, "first"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := b.client.Delete(ctx, "first"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
	if got, _ := b.client.FetchByIDs(ctx, []string{"first"}); len(got) != 0 {
		t.Errorf("FetchByIDs() after Delete = %v, want empty", got)
	}
}

func TestServerGalleryLimit(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t, WithGalleryLimit(5))

	base := time.Now().Add(-time.Hour)
	for i := range 8 {
		id := fmt.Sprintf("d%d", i)
		if _, err := b.client.SaveAs(ctx, id, pngStub); err != nil {
			t.Fatal(err)
		}
		b.age(t, id, base.Add(time.Duration(i)*time.Minute))
	}

	list, err := b.client.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	var ids []string
	for _, d := range list {
		ids = append(ids, d.ID)
	}
	if diff := cmp.Diff([]string{"d7", "d6", "d5", "d4", "d3"}, ids); diff != "" {
		t.Errorf("List() ids mismatch (-want +got):\n%s", diff)
	}
}

func TestServerDefaultGalleryLimit(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)
	for i := range DefaultGalleryLimit + 5 {
		if _, err := b.client.SaveAs(ctx, fmt.Sprintf("d%02d", i), pngStub); err != nil {
			t.Fatal(err)
		}
	}
	list, err := b.client.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != DefaultGalleryLimit {
		t.Errorf("List() returned %d drawings, want %d", len(list), DefaultGalleryLimit)
	}
}

func TestServerBaseURL(t *testing.T) {
	b := newTestBackend(t, WithBaseURL("https://cdn.example.com/bucket/"))
	d, err := b.client.SaveAs(context.Background(), "x1", pngStub)
	if err != nil {
		t.Fatal(err)
	}
	if want := "https://cdn.example.com/bucket/drawings/x1.png"; d.URL != want {
		t.Errorf("url = %q, want %q", d.URL, want)
	}
}

func TestServerCORS(t *testing.T) {
	b := newTestBackend(t)

	req, _ := http.NewRequest(http.MethodOptions, b.http.URL+"/save", nil)
	resp, err := b.http.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("OPTIONS status = %d, want 204", resp.StatusCode)
	}
	want := map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Methods": "GET, POST, DELETE, OPTIONS",
		"Access-Control-Allow-Headers": "Content-Type",
	}
	for k, v := range want {
		if got := resp.Header.Get(k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}
}

func TestServerErrors(t *testing.T) {
	b := newTestBackend(t)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantError  string
	}{
		{"missing image", "POST", "/save", `{"id":"a"}`, 400, "image is required"},
		{"bad json", "POST", "/save", `{`, 400, "invalid request body"},
		{"bad id", "POST", "/save", `{"image":"data:image/png;base64,AA==","id":"../x"}`, 400, "invalid id"},
		{"not base64", "POST", "/save", `{"image":"data:image/png;base64,@@@"}`, 400, "image is not a base64 data URL"},
		{"delete missing", "DELETE", "/drawings/nope", "", 404, "Drawing not found"},
		{"delete bad id", "DELETE", "/drawings/a.b", "", 400, "invalid id"},
		{"object missing", "GET", "/drawings/nope.png", "", 404, "Drawing not found"},
		{"object without ext", "GET", "/drawings/nope", "", 404, "Not found"},
		{"unknown route", "GET", "/nothing", "", 404, "Not found"},
		{"wrong method", "PUT", "/gallery", "", 404, "Not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(tt.method, b.http.URL+tt.path, strings.NewReader(tt.body))
			resp, err := b.http.Client().Do(req)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			var e errorResponse
			if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if e.Error != tt.wantError {
				t.Errorf("error = %q, want %q", e.Error, tt.wantError)
			}
			if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
				t.Errorf("error response missing CORS header")
			}
		})
	}
}

func TestServerFetchEmpty(t *testing.T) {
	b := newTestBackend(t)
	resp, err := b.http.Client().Get(b.http.URL + "/drawings")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if got := strings.TrimSpace(string(body)); got != `{"drawings":[]}` {
		t.Errorf("GET /drawings = %s, want an empty list", got)
	}
}

func TestClientStatusError(t *testing.T) {
	hs := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusInternalServerError, "boom")
	}))
	defer hs.Close()
	c := NewClient(hs.URL, WithHTTPClient(hs.Client()))

	_, err := c.List(context.Background())
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("List() error = %v, want *StatusError", err)
	}
	if se.StatusCode != 500 || se.Message != "boom" {
		t.Errorf("StatusError = %+v", se)
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("500 reported as ErrNotFound")
	}
	if _, err := c.Save(context.Background(), nil); !errors.Is(err, ErrEmptyImage) {
		t.Errorf("Save(nil) error = %v, want ErrEmptyImage", err)
	}
}

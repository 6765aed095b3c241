package gallery

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func openTestBlobs(t *testing.T, dir string) *BucketBlobs {
	t.Helper()
	b, err := OpenDirBlobs(dir)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestDirBlobs(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	b := openTestBlobs(t, dir)

	if got, err := b.List(ctx, "drawings/"); err != nil || len(got) != 0 {
		t.Fatalf("List() on empty store = %v, %v", got, err)
	}

	if err := b.Put(ctx, "drawings/a.png", []byte("A")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := b.Put(ctx, "drawings/b.png", []byte("B")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := b.Put(ctx, "other/c.png", []byte("C")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	old := time.Date(2020, 5, 6, 7, 8, 9, 0, time.UTC)
	if err := os.Chtimes(filepath.Join(dir, "drawings", "a.png"), old, old); err != nil {
		t.Fatal(err)
	}

	data, created, err := b.Get(ctx, "drawings/a.png")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(data) != "A" || !created.Equal(old) {
		t.Errorf("Get() = %q, %v; want %q, %v", data, created, "A", old)
	}

	infos, err := b.List(ctx, "drawings/")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	keys := make([]string, len(infos))
	for i, info := range infos {
		keys[i] = info.Key
	}
	if diff := cmp.Diff([]string{"drawings/a.png", "drawings/b.png"}, keys); diff != "" {
		t.Errorf("List() keys mismatch (-want +got):\n%s", diff)
	}

	if err := b.Delete(ctx, "drawings/a.png"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := b.Stat(ctx, "drawings/a.png"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Stat() after Delete error = %v, want ErrNotFound", err)
	}
	if err := b.Delete(ctx, "drawings/a.png"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
	if _, _, err := b.Get(ctx, "drawings/missing.png"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func TestDirBlobsCreatesMissingDir(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "data", "objects")
	b := openTestBlobs(t, dir)

	if err := b.Put(ctx, "drawings/a.png", []byte("A")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "drawings", "a.png")); err != nil {
		t.Errorf("object file not written below the bucket dir: %v", err)
	}
}

// TestOpenBlobsURL tests the URL opener with the in-memory driver.
func TestOpenBlobsURL(t *testing.T) {
	ctx := context.Background()
	b, err := OpenBlobs(ctx, "mem://")
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	before := time.Now().Add(-time.Minute)
	if err := b.Put(ctx, "drawings/x.png", []byte("X")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	data, created, err := b.Get(ctx, "drawings/x.png")
	if err != nil || string(data) != "X" {
		t.Fatalf("Get() = %q, %v", data, err)
	}
	if created.Before(before) {
		t.Errorf("Get() created = %v, want a recent time", created)
	}
	infos, err := b.List(ctx, "drawings/")
	if err != nil || len(infos) != 1 || infos[0].Key != "drawings/x.png" {
		t.Errorf("List() = %v, %v", infos, err)
	}
	if _, err := b.Stat(ctx, "drawings/y.png"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Stat(missing) error = %v, want ErrNotFound", err)
	}

	if _, err := OpenBlobs(ctx, "nosuchscheme://bucket"); err == nil {
		t.Error("OpenBlobs() with an unknown scheme succeeded")
	}
}

func TestDirBlobsRejectsEscapingKeys(t *testing.T) {
	ctx := context.Background()
	b := openTestBlobs(t, t.TempDir())
	for _, key := range []string{"../x.png", "/etc/passwd", "drawings/../../x", "", "."} {
		if err := b.Put(ctx, key, []byte("x")); !errors.Is(err, ErrInvalidID) {
			t.Errorf("Put(%q) error = %v, want ErrInvalidID", key, err)
		}
	}
}

func TestValidID(t *testing.T) {
	tests := map[string]bool{
		"3f2b8c9e-1d4a-4c6b-9a7e-0f1e2d3c4b5a": true,
		"my_drawing-01":                        true,
		"":                                     false,
		"../etc":                               false,
		"a/b":                                  false,
		"a.png":                                false,
		"x y":                                  false,
		strings.Repeat("a", 65):                false,
	}
	for id, want := range tests {
		if got := ValidID(id); got != want {
			t.Errorf("ValidID(%q) = %v, want %v", id, got, want)
		}
	}
	if !ValidID(NewID()) {
		t.Error("NewID() is not a valid id")
	}
}

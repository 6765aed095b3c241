package oekaki

import (
	"bytes"
	"errors"
	"image/png"
	"strings"
	"testing"
)

func TestPNGExport(t *testing.T) {
	e := newTestEngine(t, 40, 20)
	useTool(e, ToolPen, 6)
	stroke(e, Pt(5, 10), Pt(35, 10))

	data, err := e.PNG()
	if err != nil {
		t.Fatalf("PNG() error = %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != 40 || b.Dy() != 20 {
		t.Errorf("decoded bounds = %v, want 40x20", b)
	}
	if r, _, _, _ := img.At(20, 10).RGBA(); r > 0x1000 {
		t.Errorf("decoded stroke pixel red = %#x, want black", r)
	}
	if r, g, b, a := img.At(20, 1).RGBA(); r != 0xffff || g != 0xffff || b != 0xffff || a != 0xffff {
		t.Errorf("decoded background pixel = %#x %#x %#x %#x, want white", r, g, b, a)
	}

	again, err := e.PNG()
	if err != nil {
		t.Fatalf("second PNG() error = %v", err)
	}
	if !bytes.Equal(data, again) {
		t.Error("PNG() is not idempotent")
	}
}

func TestPNGExcludesOverlay(t *testing.T) {
	e := newTestEngine(t, 40, 20)
	blank, err := e.PNG()
	if err != nil {
		t.Fatal(err)
	}

	useTool(e, ToolPen, 6)
	e.StartStroke(Pt(5, 10))
	e.ContinueStroke(Pt(35, 10))
	during, err := e.PNG()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(blank, during) {
		t.Error("PNG() during a pen stroke includes the overlay preview")
	}
	e.EndStroke()
}

func TestDataURLRoundTrip(t *testing.T) {
	e := newTestEngine(t, 8, 8)
	url, err := e.DataURL()
	if err != nil {
		t.Fatalf("DataURL() error = %v", err)
	}
	if !strings.HasPrefix(url, "data:image/png;base64,") {
		t.Errorf("DataURL() = %.40q..., want a PNG data URL", url)
	}

	want, _ := e.PNG()
	got, err := DecodeDataURL(url)
	if err != nil {
		t.Fatalf("DecodeDataURL() error = %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Error("DecodeDataURL(DataURL()) differs from PNG()")
	}

	bare := strings.TrimPrefix(url, "data:image/png;base64,")
	if got, err := DecodeDataURL(bare); err != nil || !bytes.Equal(got, want) {
		t.Errorf("DecodeDataURL(bare base64) = %d bytes, %v", len(got), err)
	}
}

func TestDecodeDataURLErrors(t *testing.T) {
	tests := []string{
		"",
		"data:text/plain;base64,aGVsbG8=",
		"data:image/png,raw",
		"data:image/png;base64",
		"data:image/png;base64,!!!not-base64",
		"not base64 at all",
	}
	for _, in := range tests {
		if _, err := DecodeDataURL(in); !errors.Is(err, ErrNotDataURL) {
			t.Errorf("DecodeDataURL(%q) error = %v, want ErrNotDataURL", in, err)
		}
	}
}

func TestExportAfterClose(t *testing.T) {
	e := New(4, 4)
	_ = e.Close()

	if _, err := e.PNG(); !errors.Is(err, ErrClosed) {
		t.Errorf("PNG() after Close error = %v, want ErrClosed", err)
	}
	if _, err := e.DataURL(); !errors.Is(err, ErrClosed) {
		t.Errorf("DataURL() after Close error = %v, want ErrClosed", err)
	}
}

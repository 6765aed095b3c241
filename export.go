package oekaki

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"
	"io"
	"strings"
)

// dataURLPrefix is the prefix of a base64 PNG data URL.
const dataURLPrefix = "data:image/png;base64,"

// EncodePNG writes the Surface as PNG to w.
// It does not modify the engine and can be called any number of times.
func (e *Engine) EncodePNG(w io.Writer) error {
	if e.closed {
		return ErrClosed
	}
	return png.Encode(w, e.surface.pm.ToImage())
}

// PNG returns the Surface encoded as PNG.
func (e *Engine) PNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := e.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DataURL returns the Surface as a base64 PNG data URL, the payload that
// save, share and download consumers exchange.
func (e *Engine) DataURL() (string, error) {
	b, err := e.PNG()
	if err != nil {
		return "", err
	}
	return EncodeDataURL(b), nil
}

// EncodeDataURL wraps PNG bytes in a base64 data URL.
func EncodeDataURL(pngData []byte) string {
	return dataURLPrefix + base64.StdEncoding.EncodeToString(pngData)
}

// DecodeDataURL returns the image bytes of a base64 image data URL
// ("data:image/<type>;base64,..."). A bare base64 payload without the
// data URL header is accepted as well.
func DecodeDataURL(s string) ([]byte, error) {
	payload := s
	if strings.HasPrefix(s, "data:") {
		header, body, ok := strings.Cut(s, ",")
		if !ok || !strings.HasPrefix(header, "data:image/") || !strings.HasSuffix(header, ";base64") {
			return nil, ErrNotDataURL
		}
		payload = body
	}
	b, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotDataURL, err)
	}
	if len(b) == 0 {
		return nil, ErrNotDataURL
	}
	return b, nil
}

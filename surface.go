package oekaki

import (
	"github.com/gogpu/gg"

	"github.com/gogpu/oekaki/internal/history"
)

// layer is a raster buffer with a drawing context bound to it.
// The engine keeps the pixmap so it can snapshot and restore raw bytes
// without going through the context.
type layer struct {
	pm *gg.Pixmap
	dc *gg.Context
}

func newLayer(width, height int) layer {
	pm := gg.NewPixmap(width, height)
	return layer{
		pm: pm,
		dc: gg.NewContext(width, height, gg.WithPixmap(pm)),
	}
}

func (l layer) close() {
	if l.dc != nil {
		_ = l.dc.Close()
	}
}

// fill replaces every pixel with c.
func (l layer) fill(c gg.RGBA) {
	l.pm.Clear(c)
}

// clear makes every pixel transparent.
func (l layer) clear() {
	l.pm.Clear(gg.Transparent)
}

// compositeOver draws src onto l with source-over. Both layers hold
// premultiplied RGBA of the same size, so each channel is
// src + dst*(255-srcAlpha)/255 rounded to nearest.
func (l layer) compositeOver(src layer) {
	dst, sp := l.pm.Data(), src.pm.Data()
	n := min(len(dst), len(sp))
	for i := 0; i+3 < n; i += 4 {
		sa := uint32(sp[i+3])
		if sa == 0 {
			continue
		}
		inv := 255 - sa
		for c := i; c < i+4; c++ {
			v := uint32(sp[c]) + (uint32(dst[c])*inv+127)/255
			dst[c] = byte(min(v, 255))
		}
	}
}

// restore writes a snapshot back into the layer. A snapshot of another
// size is placed at the origin over bg, clipped and unscaled.
func (l layer) restore(s history.Snapshot, bg gg.RGBA) {
	if s.Width == l.pm.Width() && s.Height == l.pm.Height() {
		copy(l.pm.Data(), s.Pix)
		return
	}
	l.fill(bg)
	blit(l.pm.Data(), l.pm.Width(), l.pm.Height(), s.Pix, s.Width, s.Height)
}

// blit copies the top-left overlap of src into dst. Both buffers are RGBA
// with a stride of four bytes per pixel.
func blit(dst []byte, dw, dh int, src []byte, sw, sh int) {
	rowBytes := min(dw, sw) * 4
	for y := range min(dh, sh) {
		d := y * dw * 4
		s := y * sw * 4
		copy(dst[d:d+rowBytes], src[s:s+rowBytes])
	}
}

package oekaki

import (
	"sync"

	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"
)

// defaultFontSource parses the Go Regular font once per process.
var defaultFontSource = sync.OnceValues(func() (*text.FontSource, error) {
	return text.NewFontSource(goregular.TTF)
})

// stampFace returns a face of the given size over the configured fonts,
// falling back through them in order.
func (e *Engine) stampFace(size float64) (text.Face, error) {
	sources := e.fonts
	if len(sources) == 0 {
		src, err := defaultFontSource()
		if err != nil {
			return nil, err
		}
		sources = []*text.FontSource{src}
	}
	if len(sources) == 1 {
		return sources[0].Face(size), nil
	}

	faces := make([]text.Face, len(sources))
	for i, src := range sources {
		faces[i] = src.Face(size)
	}
	return text.NewMultiFace(faces...)
}

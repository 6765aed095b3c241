package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"math/rand/v2"
	"os"

	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/oekaki"
	"github.com/gogpu/oekaki/gallery"
)

func runRender(args []string) error {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	var (
		common  commonFlags
		output  = fs.String("o", "drawing.png", "output PNG file (empty: do not write)")
		seed    = fs.Uint64("seed", 0, "brush random seed (0: time based)")
		save    = fs.Bool("save", false, "save the result to the gallery")
		history = fs.Int("history", 0, "undo history size (0: default)")
		fonts   []string
	)
	common.register(fs)
	fs.Func("font", "TTF/OTF font for stamps, tried before Go Regular (repeatable)", func(s string) error {
		fonts = append(fonts, s)
		return nil
	})
	fs.Parse(args)
	common.setupLogging()

	if fs.NArg() != 1 {
		return fmt.Errorf("render: want one script file, got %d", fs.NArg())
	}
	sc, err := openScript(fs.Arg(0))
	if err != nil {
		return err
	}

	opts, err := sc.options()
	if err != nil {
		return err
	}
	if *seed != 0 {
		opts = append(opts, oekaki.WithRand(rand.New(rand.NewPCG(*seed, 0))))
	}
	if *history > 0 {
		opts = append(opts, oekaki.WithMaxHistory(*history))
	}
	if len(fonts) > 0 {
		sources, err := loadFonts(fonts)
		if err != nil {
			return err
		}
		defer closeFonts(sources)
		opts = append(opts, oekaki.WithFontSources(sources...))
	}

	e := oekaki.New(sc.Width, sc.Height, opts...)
	defer e.Close()
	if err := sc.replay(e); err != nil {
		return err
	}

	png, err := e.PNG()
	if err != nil {
		return err
	}
	if *output != "" {
		if err := os.WriteFile(*output, png, 0o644); err != nil {
			return err
		}
		oekaki.Logger().Info("drawing written", "file", *output, "width", e.Width(), "height", e.Height())
	}
	if *save {
		d, err := saveDrawing(context.Background(), &common, png)
		if err != nil {
			return err
		}
		fmt.Println(d.ID)
	}
	return nil
}

func openScript(name string) (*script, error) {
	var r io.Reader = os.Stdin
	if name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	return readScript(r)
}

// loadFonts opens the given font files and appends Go Regular as the last
// fallback.
func loadFonts(paths []string) ([]*text.FontSource, error) {
	sources := make([]*text.FontSource, 0, len(paths)+1)
	for _, p := range paths {
		src, err := text.NewFontSourceFromFile(p)
		if err != nil {
			closeFonts(sources)
			return nil, fmt.Errorf("load font %s: %w", p, err)
		}
		sources = append(sources, src)
	}
	src, err := text.NewFontSource(goregular.TTF)
	if err != nil {
		closeFonts(sources)
		return nil, err
	}
	return append(sources, src), nil
}

func closeFonts(sources []*text.FontSource) {
	for _, s := range sources {
		_ = s.Close()
	}
}

// saveDrawing stores png through the hybrid store and records its id in
// the "my drawings" list.
func saveDrawing(ctx context.Context, c *commonFlags, png []byte) (gallery.Drawing, error) {
	store := newStore(c)
	d, err := store.Save(ctx, png)
	if err != nil {
		return gallery.Drawing{}, err
	}
	if err := gallery.OpenIDList(c.idListPath()).Add(d.ID); err != nil {
		return gallery.Drawing{}, err
	}
	oekaki.Logger().Info("drawing saved", "id", d.ID, "cloud", store.CloudMode())
	return d, nil
}

func newStore(c *commonFlags) *gallery.Hybrid {
	local := gallery.OpenLocalStore(c.localStorePath())
	if c.apiURL == "" {
		return gallery.NewHybrid(local)
	}
	return gallery.NewHybrid(local, gallery.WithRemote(gallery.NewClient(c.apiURL)))
}

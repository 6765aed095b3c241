package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/gogpu/oekaki/gallery"
	"github.com/gogpu/oekaki/internal/discovery"
)

func runGallery(args []string) error {
	fs := flag.NewFlagSet("gallery", flag.ExitOnError)
	var common commonFlags
	common.register(fs)
	fs.Parse(args)
	common.setupLogging()

	if fs.NArg() == 0 {
		return errors.New("gallery: missing command (list, mine, fetch, delete, watch, browse)")
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store := newStore(&common)
	ids := gallery.OpenIDList(common.idListPath())
	cmd, rest := fs.Arg(0), fs.Args()[1:]

	switch cmd {
	case "list":
		ds, err := store.List(ctx)
		if err != nil {
			return err
		}
		return printDrawings(ds)
	case "mine":
		ds, err := store.FetchByIDs(ctx, ids.IDs())
		if err != nil {
			return err
		}
		return printDrawings(ds)
	case "fetch":
		if len(rest) == 0 {
			return errors.New("gallery fetch: missing ids")
		}
		ds, err := store.FetchByIDs(ctx, rest)
		if err != nil {
			return err
		}
		return printDrawings(ds)
	case "delete":
		if len(rest) != 1 {
			return errors.New("gallery delete: want exactly one id")
		}
		if err := store.Delete(ctx, rest[0]); err != nil {
			return err
		}
		return ids.Remove(rest[0])
	case "watch":
		if common.apiURL == "" {
			return errors.New("gallery watch: needs a remote gallery (-api or OEKAKI_API_URL)")
		}
		enc := json.NewEncoder(os.Stdout)
		return gallery.NewClient(common.apiURL).Watch(ctx, func(d gallery.Drawing) {
			_ = enc.Encode(d)
		})
	case "browse":
		return discovery.Browse(ctx, func(addr string) {
			fmt.Printf("http://%s\n", addr)
		})
	default:
		return fmt.Errorf("gallery: unknown command %q", cmd)
	}
}

// printDrawings writes one JSON object per line.
func printDrawings(ds []gallery.Drawing) error {
	enc := json.NewEncoder(os.Stdout)
	for _, d := range ds {
		if err := enc.Encode(d); err != nil {
			return err
		}
	}
	return nil
}

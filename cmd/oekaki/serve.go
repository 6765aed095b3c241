package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gogpu/oekaki"
	"github.com/gogpu/oekaki/gallery"
	"github.com/gogpu/oekaki/internal/discovery"
)

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	var (
		common    commonFlags
		addr      = fs.String("addr", envOr("OEKAKI_ADDR", ":8080"), "listen address")
		baseURL   = fs.String("base-url", "", "public URL prefix of stored drawings (empty: this server)")
		limit     = fs.Int("limit", gallery.DefaultGalleryLimit, "drawings listed on /gallery")
		advertise = fs.Bool("advertise", false, "announce the server on the LAN over mDNS")
		name      = fs.String("name", "", "mDNS instance name (empty: oekaki)")
		bucketURL = fs.String("bucket", envOr("OEKAKI_BUCKET", ""), "object bucket URL, e.g. gs://my-bucket (empty: <data>/objects)")
	)
	common.register(fs)
	fs.Parse(args)
	common.setupLogging()
	log := oekaki.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	blobs, objects, err := openObjects(ctx, *bucketURL, common.objectsDir())
	if err != nil {
		return err
	}
	defer blobs.Close()

	srv := gallery.NewServer(
		blobs,
		gallery.WithBaseURL(*baseURL),
		gallery.WithGalleryLimit(*limit),
	)
	defer srv.Feed().Close()

	ln, err := net.Listen("tcp", *addr)
	if err != nil {
		return err
	}
	port := ln.Addr().(*net.TCPAddr).Port

	if *advertise {
		ad, err := discovery.Advertise(*name, port)
		if err != nil {
			_ = ln.Close()
			return err
		}
		defer ad.Close()
		log.Info("advertising gallery", "service", discovery.ServiceType, "port", port)
	}

	hs := &http.Server{
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Feed().Close()
		_ = hs.Shutdown(shutdownCtx)
	}()

	log.Info("gallery listening", "addr", ln.Addr().String(), "objects", objects,
		"url", "http://"+net.JoinHostPort("localhost", strconv.Itoa(port)))
	if err := hs.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// openObjects opens the bucket at url, or the objects directory when url is
// empty. It also returns where the objects live for logging.
func openObjects(ctx context.Context, url, dir string) (*gallery.BucketBlobs, string, error) {
	if url == "" {
		b, err := gallery.OpenDirBlobs(dir)
		return b, dir, err
	}
	b, err := gallery.OpenBlobs(ctx, url)
	return b, url, err
}

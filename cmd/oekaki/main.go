// Command oekaki replays drawing scripts through the drawing engine and
// runs or queries a drawing gallery.
//
// Usage:
//
//	oekaki render [flags] script.json   replay a script and write a PNG
//	oekaki serve [flags]                run the gallery backend
//	oekaki gallery [flags] <command>    list, fetch, delete or watch drawings
//
// Environment:
//
//	OEKAKI_API_URL   remote gallery URL (cloud mode)
//	OEKAKI_DATA_DIR  directory of the local store and the served objects
//	OEKAKI_ADDR      listen address of serve
//	OEKAKI_BUCKET    object bucket URL of serve (gs://, file://, mem://)
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gogpu/oekaki"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "render":
		err = runRender(args)
	case "serve":
		err = runServe(args)
	case "gallery":
		err = runGallery(args)
	case "-h", "-help", "--help", "help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "oekaki: unknown command %q\n\n", cmd)
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "oekaki: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `usage:
  oekaki render [flags] script.json
  oekaki serve [flags]
  oekaki gallery [flags] list|mine|fetch ID...|delete ID|watch|browse

Run "oekaki <command> -h" for the flags of a command.
`)
}

// commonFlags are shared by every subcommand.
type commonFlags struct {
	verbose bool
	dataDir string
	apiURL  string
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.BoolVar(&c.verbose, "v", false, "log debug output")
	fs.StringVar(&c.dataDir, "data", envOr("OEKAKI_DATA_DIR", defaultDataDir()), "data directory")
	fs.StringVar(&c.apiURL, "api", os.Getenv("OEKAKI_API_URL"), "remote gallery URL (empty: local only)")
}

// setupLogging routes engine and gallery logs to stderr.
func (c *commonFlags) setupLogging() {
	level := slog.LevelInfo
	if c.verbose {
		level = slog.LevelDebug
	}
	oekaki.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func (c *commonFlags) localStorePath() string { return filepath.Join(c.dataDir, "local.json") }
func (c *commonFlags) idListPath() string     { return filepath.Join(c.dataDir, "my_drawings.json") }
func (c *commonFlags) objectsDir() string     { return filepath.Join(c.dataDir, "objects") }

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "oekaki")
	}
	return ".oekaki"
}

// Command markpix opens an image in the annotation editor.
//
// Usage:
//
//	markpix [flags] image.png
//
// Tools are selected with single keys (R rect, O ellipse, A arrow, L line,
// T text, B brush, N marker, X mosaic, G magnifier, C crop, V select,
// space pan). Ctrl+Z/Ctrl+Y undo and redo, Ctrl+S saves, Ctrl+C copies the
// flattened image to the clipboard, digits 1-9 run configured actions and
// Q quits.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/example/markpix/internal/actions"
	"github.com/example/markpix/internal/config"
	"github.com/example/markpix/internal/editor"
	"github.com/example/markpix/internal/effects"
	"github.com/example/markpix/internal/notify"
	"github.com/example/markpix/internal/source"
)

// version is set at build time.
var version = "dev"

func main() {
	log.SetFlags(0)
	log.SetPrefix("markpix: ")

	output := flag.String("output", "", "output path, overrides the configured pattern")
	configPath := flag.String("config", "", "config file path")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		return
	}
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: markpix [flags] image.png")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := config.NewLoader(version, *configPath).Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	base, err := source.Load(flag.Arg(0))
	if err != nil {
		log.Fatalf("%v", err)
	}

	ed := editor.New(base.Bounds().Dx(), base.Bounds().Dy(),
		editor.WithToolConfig(cfg.ToolConfig()))

	v := &viewer{
		ed:       ed,
		base:     base,
		cfg:      cfg,
		output:   *output,
		notifier: notify.FromConfig(cfg.Notify),
		runner:   actions.NewRunner(cfg.Actions),
		sched:    effects.NewScheduler(),
	}
	v.Run()
}

// Command rtplan builds the render task graphs described by a TOML frame
// file and prints the task trees, the pass schedule and the texture store
// state of every frame.
//
// Usage:
//
//	rtplan [-frames n] [-data] [-v] frames.toml
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/gogpu/rendertask"
)

func main() {
	var (
		frames  = flag.Int("frames", 0, "number of frames to build (overrides the frame file)")
		data    = flag.Bool("data", false, "print the packed task data")
		verbose = flag.Bool("v", false, "log debug output to stderr")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: rtplan [flags] frames.toml\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if *verbose {
		rendertask.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	ff, err := loadFrameFile(flag.Arg(0))
	if err != nil {
		log.Fatalf("rtplan: %v", err)
	}
	if *frames > 0 {
		ff.Frames = *frames
	}

	if err := newPlanner(ff, os.Stdout, *data).run(); err != nil {
		log.Fatalf("rtplan: %v", err)
	}
}

// Corvel CLI - loads a host manifest, opens libraries, and runs chunks.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/tliron/commonlog"

	"github.com/chazu/corvel/bind"
	"github.com/chazu/corvel/engine"
	"github.com/chazu/corvel/lib/base"
	"github.com/chazu/corvel/lib/storelib"
	"github.com/chazu/corvel/lib/uuidlib"
	"github.com/chazu/corvel/manifest"

	_ "github.com/tliron/commonlog/simple"
)

func main() {
	verbose := flag.Int("v", 0, "Log verbosity (0-2)")
	memLimit := flag.Int64("mem", 0, "Memory budget in units (0 = unlimited)")
	stackLimit := flag.Int("stack", 0, "Per-thread stack slot limit (0 = unlimited)")
	trace := flag.Bool("trace", false, "Log every native call and return")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: corvel [options] [chunks...]\n\n")
		fmt.Fprintf(os.Stderr, "Runs Corvel chunk files (textual or dumped) against a fresh VM.\n")
		fmt.Fprintf(os.Stderr, "A corvel.toml found in or above the working directory supplies\n")
		fmt.Fprintf(os.Stderr, "defaults for limits, libraries, and startup chunks.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	commonlog.Configure(*verbose, nil)
	log := commonlog.GetLogger("corvel")

	cfg := engine.Config{MemLimit: *memLimit, StackLimit: *stackLimit}
	libraries := []string{"base"}
	chunks := flag.Args()

	m, err := manifest.FindAndLoad(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "corvel: %v\n", err)
		os.Exit(1)
	}
	if m != nil {
		log.Infof("using manifest in %s", m.Dir)
		if cfg.MemLimit == 0 {
			cfg.MemLimit = m.Runtime.MemLimit
		}
		if cfg.StackLimit == 0 {
			cfg.StackLimit = m.Runtime.StackLimit
		}
		libraries = m.Libraries
		if len(chunks) == 0 {
			chunks = m.ChunkPaths()
		}
	}

	l := engine.NewStateWith(cfg)
	if *trace {
		l.SetHook(func(event, name string) {
			log.Debugf("%s %s", event, name)
		})
	}

	for _, lib := range libraries {
		switch lib {
		case "base":
			base.Open(l)
		case "store":
			storelib.Open(l)
		case "uuid":
			uuidlib.Open(l)
		}
	}

	if len(chunks) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	for _, path := range chunks {
		if err := bind.DoFile(l, path); err != nil {
			log.Errorf("%s: %v", path, err)
			fmt.Fprintf(os.Stderr, "corvel: %s: %v\n", path, err)
			os.Exit(exitCode(err))
		}
		// Discard chunk results between files.
		l.SetTop(0)
	}
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, bind.ErrSyntax):
		return 3
	case errors.Is(err, bind.ErrFile):
		return 4
	case errors.Is(err, bind.ErrOutOfMemory):
		return 5
	}
	return 1
}

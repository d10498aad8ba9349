// wrapgen CLI - generates Corvel binding registrations for a Go package.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/chazu/corvel/wrapgen"
)

func main() {
	pkgPath := flag.String("pkg", "", "Import path of the Go package to wrap (required)")
	outPkg := flag.String("out-pkg", "", "Package clause of the generated file (required)")
	outFile := flag.String("o", "", "Output file (default stdout)")
	global := flag.String("global", "", "Chunk-visible table name (default: package name)")
	only := flag.String("only", "", "Comma-separated list of exported names to include")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: wrapgen -pkg <import-path> -out-pkg <name> [options]\n\n")
		fmt.Fprintf(os.Stderr, "Generates a Go source file that opens the package's adaptable\n")
		fmt.Fprintf(os.Stderr, "functions as one global table of natives.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *pkgPath == "" || *outPkg == "" {
		flag.Usage()
		os.Exit(2)
	}

	var filter map[string]bool
	if *only != "" {
		filter = make(map[string]bool)
		for _, name := range strings.Split(*only, ",") {
			filter[strings.TrimSpace(name)] = true
		}
	}

	model, err := wrapgen.IntrospectPackage(*pkgPath, filter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "wrapgen: %v\n", err)
		os.Exit(1)
	}
	for _, name := range model.Skipped {
		fmt.Fprintf(os.Stderr, "wrapgen: skipping %s.%s: signature not adaptable\n", model.Name, name)
	}

	src, err := wrapgen.Generate(model, wrapgen.GenerateOptions{
		OutPackage: *outPkg,
		GlobalName: *global,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "wrapgen: %v\n", err)
		os.Exit(1)
	}

	if *outFile == "" {
		os.Stdout.Write(src)
		return
	}
	if err := os.WriteFile(*outFile, src, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "wrapgen: %v\n", err)
		os.Exit(1)
	}
}

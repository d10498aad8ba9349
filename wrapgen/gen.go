package wrapgen

import (
	"bytes"
	"fmt"
	"go/format"
	"sort"
)

// GenerateOptions configures code generation.
type GenerateOptions struct {
	// OutPackage is the package clause of the generated file.
	OutPackage string
	// GlobalName is the chunk-visible table name; defaults to the source
	// package name.
	GlobalName string
}

// Generate renders a Go source file containing an opener that installs
// every adaptable function of the model as an entry in one global table.
func Generate(model *PackageModel, opts GenerateOptions) ([]byte, error) {
	if opts.OutPackage == "" {
		return nil, fmt.Errorf("wrapgen: OutPackage is required")
	}
	global := opts.GlobalName
	if global == "" {
		global = model.Name
	}

	fns := make([]FunctionModel, len(model.Functions))
	copy(fns, model.Functions)
	sort.Slice(fns, func(i, j int) bool { return fns[i].Name < fns[j].Name })

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "// Code generated by wrapgen from %s. DO NOT EDIT.\n\n", model.ImportPath)
	fmt.Fprintf(&buf, "package %s\n\n", opts.OutPackage)
	fmt.Fprintf(&buf, "import (\n")
	fmt.Fprintf(&buf, "\t%q\n\n", model.ImportPath)
	fmt.Fprintf(&buf, "\t\"github.com/chazu/corvel/bind\"\n")
	fmt.Fprintf(&buf, "\t\"github.com/chazu/corvel/engine\"\n")
	fmt.Fprintf(&buf, ")\n\n")
	fmt.Fprintf(&buf, "// %s installs the global '%s' table.\n", OpenFuncName(model.Name), global)
	fmt.Fprintf(&buf, "func %s(l *engine.State) {\n", OpenFuncName(model.Name))
	fmt.Fprintf(&buf, "\tl.NewTable()\n")
	fmt.Fprintf(&buf, "\tbind.SetFuncs(l, -1, map[string]any{\n")
	for _, fn := range fns {
		fmt.Fprintf(&buf, "\t\t%q: %s.%s,\n", ScriptName(fn.Name), model.Name, fn.Name)
	}
	fmt.Fprintf(&buf, "\t})\n")
	fmt.Fprintf(&buf, "\tl.SetGlobal(%q)\n", global)
	fmt.Fprintf(&buf, "}\n")

	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("wrapgen: format generated source: %w", err)
	}
	return src, nil
}

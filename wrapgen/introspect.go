package wrapgen

import (
	"fmt"
	"go/types"

	"golang.org/x/tools/go/packages"
)

// IntrospectPackage loads a Go package by import path and returns the
// model of its adaptable exported functions. The includeFilter, if
// non-nil, restricts which exported names are considered.
func IntrospectPackage(importPath string, includeFilter map[string]bool) (*PackageModel, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedTypes | packages.NeedSyntax,
	}

	pkgs, err := packages.Load(cfg, importPath)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", importPath, err)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages found for %s", importPath)
	}
	if len(pkgs[0].Errors) > 0 {
		return nil, fmt.Errorf("package errors: %v", pkgs[0].Errors)
	}

	pkg := pkgs[0]
	if pkg.Types == nil {
		return nil, fmt.Errorf("type information not available for %s", importPath)
	}

	model := &PackageModel{
		ImportPath: importPath,
		Name:       pkg.Name,
	}

	scope := pkg.Types.Scope()

	for _, name := range scope.Names() {
		if includeFilter != nil && !includeFilter[name] {
			continue
		}

		obj := scope.Lookup(name)
		if !obj.Exported() {
			continue
		}
		fn, ok := obj.(*types.Func)
		if !ok {
			continue
		}
		sig := fn.Type().(*types.Signature)
		fm, ok := functionModelFromSig(fn.Name(), sig)
		if !ok {
			model.Skipped = append(model.Skipped, fn.Name())
			continue
		}
		model.Functions = append(model.Functions, fm)
	}

	return model, nil
}

func functionModelFromSig(name string, sig *types.Signature) (FunctionModel, bool) {
	fm := FunctionModel{Name: name}

	if sig.Variadic() || sig.TypeParams() != nil {
		return fm, false
	}

	params := sig.Params()
	for i := 0; i < params.Len(); i++ {
		p := params.At(i)
		if !adaptableType(p.Type()) {
			return fm, false
		}
		fm.Params = append(fm.Params, ParamModel{
			Name:    p.Name(),
			GoType:  p.Type(),
			TypeStr: p.Type().String(),
		})
	}

	results := sig.Results()
	for i := 0; i < results.Len(); i++ {
		r := results.At(i)
		last := i == results.Len()-1
		if isErrorType(r.Type()) {
			if !last {
				return fm, false
			}
			fm.ReturnsErr = true
		} else if !adaptableType(r.Type()) {
			return fm, false
		}
		fm.Results = append(fm.Results, ParamModel{
			Name:    r.Name(),
			GoType:  r.Type(),
			TypeStr: r.Type().String(),
		})
	}

	return fm, true
}

// adaptableType reports whether the binding layer has a coercion rule for
// the type: the basic scalar kinds and byte slices.
func adaptableType(t types.Type) bool {
	switch u := t.Underlying().(type) {
	case *types.Basic:
		switch u.Kind() {
		case types.Bool, types.String,
			types.Int, types.Int8, types.Int16, types.Int32, types.Int64,
			types.Uint, types.Uint8, types.Uint16, types.Uint32, types.Uint64,
			types.Float32, types.Float64:
			return true
		}
		return false
	case *types.Slice:
		b, ok := u.Elem().Underlying().(*types.Basic)
		return ok && b.Kind() == types.Uint8
	}
	return false
}

func isErrorType(t types.Type) bool {
	named, ok := t.(*types.Named)
	if !ok {
		return false
	}
	return named.Obj().Name() == "error" && named.Obj().Pkg() == nil
}

package wrapgen

import "strings"

// ScriptName converts a Go exported name to the chunk-visible name.
// Go uses PascalCase; Corvel globals use camelCase.
// e.g., "ToUpper" → "toUpper", "EqualFold" → "equalFold"
func ScriptName(name string) string {
	if name == "" {
		return name
	}
	// Keep leading initialisms readable: "URLEncode" → "urlEncode"
	i := 0
	for i < len(name) && name[i] >= 'A' && name[i] <= 'Z' {
		i++
	}
	if i == 0 {
		return name
	}
	if i == 1 || i == len(name) {
		return strings.ToLower(name[:i]) + name[i:]
	}
	return strings.ToLower(name[:i-1]) + name[i-1:]
}

// OpenFuncName returns the generated opener's name for a package.
// e.g., "strings" → "OpenStrings"
func OpenFuncName(pkgName string) string {
	if pkgName == "" {
		return "Open"
	}
	return "Open" + strings.ToUpper(pkgName[:1]) + pkgName[1:]
}

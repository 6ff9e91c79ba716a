package cel

import (
	"strings"
)

// FunctionHelp describes a CEL function for the functions listing.
type FunctionHelp struct {
	Name        string
	Signature   string
	Description string
	Examples    []string
}

// knownFunctions documents the functions most useful against a basic section.
// Other functions from DiscoverCELFunctions are listed by name only.
var knownFunctions = map[string]FunctionHelp{
	"isDistributed": {
		Signature:   "isDistributed(string) -> bool",
		Description: "true for DIST and MAPRED in any letter case",
		Examples:    []string{`isDistributed(_.runMode)`},
	},
	"has": {
		Signature:   "has(map.key) -> bool",
		Description: "tests whether a field or map key is present",
		Examples:    []string{`has(_.customPaths.hdfsModelSetPath)`},
	},
	"size": {
		Signature:   "size(string|list|map) -> int",
		Description: "length of a string, list or map",
		Examples:    []string{`size(_.customPaths) > 0`},
	},
	"startsWith": {
		Signature:   "string.startsWith(string) -> bool",
		Description: "prefix test",
		Examples:    []string{`_.name.startsWith("churn")`},
	},
	"lowerAscii": {
		Signature:   "string.lowerAscii() -> string",
		Description: "lower-cases ASCII letters",
		Examples:    []string{`_.runMode.lowerAscii() == "local"`},
	},
	"exists": {
		Signature:   "map.exists(k, predicate) -> bool",
		Description: "true when any key satisfies the predicate",
		Examples:    []string{`_.customPaths.exists(k, _.customPaths[k].startsWith("/user"))`},
	},
}

// Functions returns help for every function of the standard environment,
// sorted by name.
func Functions() ([]FunctionHelp, error) {
	names, err := DiscoverCELFunctions()
	if err != nil {
		return nil, err
	}
	out := make([]FunctionHelp, 0, len(names))
	for _, name := range names {
		fn := knownFunctions[name]
		fn.Name = name
		out = append(out, fn)
	}
	return out, nil
}

// FormatFunctionSignature returns the signature, falling back to name().
func FormatFunctionSignature(fn FunctionHelp) string {
	if fn.Signature != "" {
		return fn.Signature
	}
	return fn.Name + "()"
}

// FormatFunctionLines returns the signature, the description and up to
// maxExamples indented examples. A maxExamples of 0 keeps all examples.
func FormatFunctionLines(fn FunctionHelp, maxExamples int) []string {
	lines := make([]string, 0, 4)
	lines = append(lines, FormatFunctionSignature(fn))
	if fn.Description != "" {
		lines = append(lines, "  "+fn.Description)
	}
	for i, ex := range fn.Examples {
		if maxExamples > 0 && i >= maxExamples {
			break
		}
		if ex = strings.TrimSpace(ex); ex != "" {
			lines = append(lines, "    "+ex)
		}
	}
	return lines
}

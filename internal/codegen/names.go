package codegen

import (
	"strings"
	"unicode"

	"github.com/stoewer/go-strcase"
)

// Registry issues generated type and namespace identifiers for one
// generation run. It is created fresh per run and threaded explicitly;
// operation-derived and component-derived names share its namespace, so a
// collision between any two sources fails the run.
type Registry struct {
	taken map[string]string // identifier -> source name that claimed it
}

func NewRegistry() *Registry {
	return &Registry{taken: make(map[string]string)}
}

// Reserve computes the identifier for source plus an optional disambiguating
// suffix (e.g. "RequestBody", "Response") and records it. It fails with
// ErrDuplicateIdentifier when the computed name was already issued this run.
func (r *Registry) Reserve(source, suffix string) (string, error) {
	name := TypeName(source) + suffix
	if first, ok := r.taken[name]; ok {
		return "", errDuplicateIdentifier(name, first, source)
	}
	r.taken[name] = source
	return name, nil
}

// TypeName normalizes an arbitrary source name (schema name, operation id,
// or a "{method}{path}" fallback) to a leading-capital identifier.
func TypeName(source string) string {
	words := splitWords(source)
	if words == "" {
		return "Type"
	}
	name := strcase.UpperCamelCase(words)
	if !unicode.IsLetter(rune(name[0])) {
		name = "T" + name
	}
	return name
}

// FuncName is the lower-camel counterpart of TypeName, used for generated
// function names. Function names are not reserved: they live in a separate
// value namespace in the emitted module and follow their namespace identifier.
func FuncName(source string) string {
	words := splitWords(source)
	if words == "" {
		return "call"
	}
	name := strcase.LowerCamelCase(words)
	if !unicode.IsLetter(rune(name[0])) {
		name = "t" + name
	}
	return name
}

// HookName derives the data-fetching hook name from a function name by
// prefixing "use" and capitalizing the first letter.
func HookName(funcName string) string {
	if funcName == "" {
		return ""
	}
	runes := []rune(funcName)
	runes[0] = unicode.ToUpper(runes[0])
	return "use" + string(runes)
}

// splitWords flattens path separators, placeholder braces and any other
// punctuation into hyphen word boundaries so the case converter sees plain
// words. "get/pets/{petId}" -> "get-pets-petId".
func splitWords(s string) string {
	var b strings.Builder
	pending := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pending && b.Len() > 0 {
				b.WriteByte('-')
			}
			pending = false
			b.WriteRune(r)
		} else {
			pending = true
		}
	}
	return b.String()
}

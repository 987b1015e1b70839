package codegen

import (
	"context"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// Hooks are the injectable pieces of a generation run: document
// preprocessing, validation, the import block, the shared request runtime,
// the per-operation code producer, and the final formatter. Nil fields fall
// back to the shipped defaults.
type Hooks struct {
	PreProcess            func(context.Context, *openapi3.T) (*openapi3.T, error)
	Validate              func(context.Context, *openapi3.T) error
	CreateImports         func() string
	CreateRequestFunction func(baseURL string) string
	CreateEndpoint        func(*Endpoint) (string, error)
	Format                func(string) (string, error)
}

func (h Hooks) withDefaults() Hooks {
	if h.PreProcess == nil {
		h.PreProcess = func(_ context.Context, doc *openapi3.T) (*openapi3.T, error) { return doc, nil }
	}
	if h.Validate == nil {
		h.Validate = defaultValidate
	}
	if h.CreateImports == nil {
		h.CreateImports = func() string { return "" }
	}
	if h.CreateRequestFunction == nil {
		h.CreateRequestFunction = defaultRequestFunction
	}
	if h.CreateEndpoint == nil {
		h.CreateEndpoint = defaultEndpoint
	}
	if h.Format == nil {
		h.Format = defaultFormat
	}
	return h
}

// Options configure one Generate run.
type Options struct {
	// BaseURL overrides the document's first server URL inside the request
	// runtime.
	BaseURL string
	Hooks   Hooks
	// Warnings receives non-fatal notices; a fresh sink is used when nil.
	Warnings *Warnings
}

// Generate compiles doc into the full client module text. The run is
// synchronous: preprocessing and validation complete before compilation
// begins, formatting runs after emission, and a failure anywhere yields no
// output at all. Registry and reference table are created fresh per call, so
// concurrent Generate calls are independent.
func Generate(ctx context.Context, doc *openapi3.T, opts Options) (string, error) {
	hooks := opts.Hooks.withDefaults()
	warns := opts.Warnings
	if warns == nil {
		warns = NewWarnings()
	}

	doc, err := hooks.PreProcess(ctx, doc)
	if err != nil {
		return "", err
	}
	if doc == nil {
		return "", errValidationFailure(nil, "no document")
	}
	if err := hooks.Validate(ctx, doc); err != nil {
		return "", err
	}

	registry := NewRegistry()
	table, err := BuildRefTable(doc, registry)
	if err != nil {
		return "", err
	}
	compiler := NewCompiler(table, warns)
	assembler := NewAssembler(compiler, registry, table)

	sections := []string{headerComment(doc)}
	if imports := hooks.CreateImports(); imports != "" {
		sections = append(sections, imports)
	}

	components, err := componentDecls(doc, compiler, assembler, table)
	if err != nil {
		return "", err
	}
	if len(components) > 0 {
		sections = append(sections, Render(components))
	}

	sections = append(sections, hooks.CreateRequestFunction(resolveBaseURL(doc, opts.BaseURL)))

	for _, path := range sortedKeys(doc.Paths) {
		item := doc.Paths[path]
		if item == nil {
			continue
		}
		endpoints, err := assembler.AssemblePath(path, item)
		if err != nil {
			return "", err
		}
		for _, ep := range endpoints {
			fragment, err := hooks.CreateEndpoint(ep)
			if err != nil {
				return "", err
			}
			sections = append(sections, fragment)
		}
	}

	return hooks.Format(strings.Join(sections, "\n\n"))
}

// componentDecls emits one type alias per component schema and request body.
// Component parameters and responses have no standalone rendering and abort
// the run when declared.
func componentDecls(doc *openapi3.T, compiler *Compiler, assembler *Assembler, table *RefTable) ([]Decl, error) {
	if doc.Components == nil {
		return nil, nil
	}
	if len(doc.Components.Parameters) > 0 {
		return nil, errUnsupportedFeature("component-level parameters")
	}
	if len(doc.Components.Responses) > 0 {
		return nil, errUnsupportedFeature("component-level responses")
	}

	var decls []Decl
	for _, name := range sortedKeys(doc.Components.Schemas) {
		id, err := table.Resolve("#/components/schemas/" + name)
		if err != nil {
			return nil, err
		}
		expr, err := compiler.Compile(doc.Components.Schemas[name])
		if err != nil {
			return nil, err
		}
		decls = append(decls, &TypeAliasDecl{Name: id, Type: expr})
	}
	for _, name := range sortedKeys(doc.Components.RequestBodies) {
		id, err := table.Resolve("#/components/requestBodies/" + name)
		if err != nil {
			return nil, err
		}
		ref := doc.Components.RequestBodies[name]
		expr, err := assembler.bodyType(&openapi3.RequestBodyRef{Value: ref.Value})
		if err != nil {
			return nil, err
		}
		decls = append(decls, &TypeAliasDecl{Name: id, Type: expr})
	}
	return decls, nil
}

// headerComment renders the descriptive module header from the document's
// info section.
func headerComment(doc *openapi3.T) string {
	var b strings.Builder
	b.WriteString("/**\n")
	if info := doc.Info; info != nil {
		line := strings.TrimSpace(info.Title + " " + info.Version)
		if line != "" {
			b.WriteString(" * " + line + "\n")
		}
		for _, descLine := range strings.Split(info.Description, "\n") {
			if descLine = strings.TrimSpace(descLine); descLine != "" {
				b.WriteString(" * " + descLine + "\n")
			}
		}
		if c := info.Contact; c != nil {
			parts := make([]string, 0, 3)
			for _, p := range []string{c.Name, c.Email, c.URL} {
				if p != "" {
					parts = append(parts, p)
				}
			}
			if len(parts) > 0 {
				b.WriteString(" * Contact: " + strings.Join(parts, " ") + "\n")
			}
		}
		if l := info.License; l != nil && l.Name != "" {
			line := " * License: " + l.Name
			if l.URL != "" {
				line += " (" + l.URL + ")"
			}
			b.WriteString(line + "\n")
		}
	}
	b.WriteString(" * Generated by oas2ts; do not edit by hand.\n")
	b.WriteString(" */")
	return b.String()
}

func resolveBaseURL(doc *openapi3.T, override string) string {
	if override != "" {
		return override
	}
	if len(doc.Servers) > 0 && doc.Servers[0] != nil {
		return doc.Servers[0].URL
	}
	return ""
}

// defaultValidate rejects anything that is not an OpenAPI 3 document after
// preprocessing, then runs the structural validation of the parser library.
func defaultValidate(ctx context.Context, doc *openapi3.T) error {
	if !strings.HasPrefix(doc.OpenAPI, "3") {
		return errValidationFailure(nil, "document version "+strconv.Quote(doc.OpenAPI)+" is not OpenAPI 3")
	}
	if err := doc.Validate(ctx); err != nil {
		return errValidationFailure(err, "document failed validation")
	}
	return nil
}

// defaultFormat normalizes whitespace in place of an external pretty-printer:
// trailing spaces are stripped, runs of blank lines collapse to one, and the
// text ends with exactly one newline.
func defaultFormat(text string) (string, error) {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blank := 0
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			blank++
			if blank > 1 {
				continue
			}
		} else {
			blank = 0
		}
		out = append(out, line)
	}
	return strings.TrimRight(strings.Join(out, "\n"), "\n") + "\n", nil
}

package codegen

import (
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// httpMethods lists the recognized methods in emission order.
var httpMethods = []struct {
	Name string
	Op   func(*openapi3.PathItem) *openapi3.Operation
}{
	{"get", func(p *openapi3.PathItem) *openapi3.Operation { return p.Get }},
	{"put", func(p *openapi3.PathItem) *openapi3.Operation { return p.Put }},
	{"post", func(p *openapi3.PathItem) *openapi3.Operation { return p.Post }},
	{"delete", func(p *openapi3.PathItem) *openapi3.Operation { return p.Delete }},
	{"options", func(p *openapi3.PathItem) *openapi3.Operation { return p.Options }},
	{"head", func(p *openapi3.PathItem) *openapi3.Operation { return p.Head }},
	{"patch", func(p *openapi3.PathItem) *openapi3.Operation { return p.Patch }},
	{"trace", func(p *openapi3.PathItem) *openapi3.Operation { return p.Trace }},
}

// parameter locations in the order their aliases are emitted.
var locationOrder = []string{"path", "query", "header", "cookie"}

var locationAliases = map[string]string{
	"path":   "PathParameters",
	"query":  "QueryParameters",
	"header": "HeaderParameters",
	"cookie": "CookieParameters",
}

// ReturnKind describes how the generated function yields its result.
type ReturnKind int

// ReturnStructuredBody is the only kind currently produced: the function
// resolves to the parsed success body.
const ReturnStructuredBody ReturnKind = iota

// OperationDescriptor carries everything a per-operation code producer needs
// to render the callable function and its hook.
type OperationDescriptor struct {
	Method       string // upper-case HTTP method
	PathTemplate string // path with {placeholder} markers, unmodified
	Namespace    string // reserved identifier of the operation's namespace
	FuncName     string
	HookName     string
	HasPath      bool
	HasQuery     bool
	HasHeader    bool
	HasCookie    bool
	HasBody      bool
	HasResponses bool
	Headers      map[string]string
	ReturnKind   ReturnKind
}

// Endpoint pairs an operation's descriptor with its namespace of generated
// type declarations.
type Endpoint struct {
	Descriptor OperationDescriptor
	Decls      *NamespaceDecl
}

// ParameterGroup is one location's object-shaped parameter schema.
type ParameterGroup struct {
	Location string
	Members  []Member
}

// Assembler produces one Endpoint per path/method pair.
type Assembler struct {
	compiler *Compiler
	registry *Registry
	table    *RefTable
}

func NewAssembler(compiler *Compiler, registry *Registry, table *RefTable) *Assembler {
	return &Assembler{compiler: compiler, registry: registry, table: table}
}

// AssemblePath returns the endpoints for every recognized method present on
// one path item, in method emission order.
func (a *Assembler) AssemblePath(path string, item *openapi3.PathItem) ([]*Endpoint, error) {
	if item.Ref != "" {
		return nil, errUnsupportedFeature("$ref path items")
	}
	var endpoints []*Endpoint
	for _, m := range httpMethods {
		op := m.Op(item)
		if op == nil {
			continue
		}
		ep, err := a.assemble(path, m.Name, item, op)
		if err != nil {
			return nil, err
		}
		endpoints = append(endpoints, ep)
	}
	return endpoints, nil
}

func (a *Assembler) assemble(path, method string, item *openapi3.PathItem, op *openapi3.Operation) (*Endpoint, error) {
	if op.Servers != nil && len(*op.Servers) > 0 {
		return nil, errUnsupportedFeature("per-operation servers")
	}

	source := op.OperationID
	if source == "" {
		source = method + path
	}
	nsName, err := a.registry.Reserve(source, "")
	if err != nil {
		return nil, err
	}
	funcName := FuncName(source)

	desc := OperationDescriptor{
		Method:       strings.ToUpper(method),
		PathTemplate: path,
		Namespace:    nsName,
		FuncName:     funcName,
		HookName:     HookName(funcName),
		Headers:      make(map[string]string),
		ReturnKind:   ReturnStructuredBody,
	}
	ns := &NamespaceDecl{Name: nsName}

	groups, err := a.parameterGroups(item.Parameters, op.Parameters)
	if err != nil {
		return nil, err
	}
	for _, g := range groups {
		ns.Decls = append(ns.Decls, &TypeAliasDecl{
			Name: locationAliases[g.Location],
			Type: renderMembers(g.Members, ""),
		})
		switch g.Location {
		case "path":
			desc.HasPath = true
		case "query":
			desc.HasQuery = true
		case "header":
			desc.HasHeader = true
		case "cookie":
			desc.HasCookie = true
		}
	}

	if op.RequestBody != nil {
		body, err := a.bodyType(op.RequestBody)
		if err != nil {
			return nil, err
		}
		ns.Decls = append(ns.Decls, &TypeAliasDecl{Name: "RequestBody", Type: body})
		desc.HasBody = true
		desc.Headers["Content-Type"] = "application/json"
	}

	if len(op.Responses) > 0 {
		success, failure, err := a.responseTypes(op.Responses)
		if err != nil {
			return nil, err
		}
		ns.Decls = append(ns.Decls, &NamespaceDecl{
			Name: "Response",
			Decls: []Decl{
				&TypeAliasDecl{Name: "Success", Type: success},
				&TypeAliasDecl{Name: "Error", Type: failure},
			},
		})
		desc.HasResponses = true
	}

	return &Endpoint{Descriptor: desc, Decls: ns}, nil
}

// parameterGroups concatenates shared path-level parameters and
// operation-level parameters, then groups them by location. There is no
// deduplication: a name declared at both levels yields two members, and the
// duplicate surfaces as a compile error in the generated module rather than
// being silently merged.
func (a *Assembler) parameterGroups(shared, own openapi3.Parameters) ([]ParameterGroup, error) {
	byLocation := make(map[string][]Member)
	all := make(openapi3.Parameters, 0, len(shared)+len(own))
	all = append(all, shared...)
	all = append(all, own...)
	for _, pref := range all {
		if pref == nil || pref.Value == nil {
			continue
		}
		p := pref.Value
		expr, err := a.compiler.Compile(p.Schema)
		if err != nil {
			return nil, err
		}
		// Required unless explicitly marked optional.
		byLocation[p.In] = append(byLocation[p.In], Member{Name: p.Name, Type: expr, Optional: !p.Required})
	}

	var groups []ParameterGroup
	for _, loc := range locationOrder {
		if members := byLocation[loc]; len(members) > 0 {
			groups = append(groups, ParameterGroup{Location: loc, Members: members})
		}
	}
	return groups, nil
}

// bodyType compiles a request body into one type expression: the union over
// every media-type entry's schema.
func (a *Assembler) bodyType(ref *openapi3.RequestBodyRef) (string, error) {
	if ref.Ref != "" {
		return a.table.Resolve(ref.Ref)
	}
	rb := ref.Value
	if rb == nil || len(rb.Content) == 0 {
		return "unknown", nil
	}
	parts := make([]string, 0, len(rb.Content))
	for _, mime := range sortedKeys(rb.Content) {
		expr, err := a.compiler.Compile(rb.Content[mime].Schema)
		if err != nil {
			return "", err
		}
		parts = append(parts, expr)
	}
	return strings.Join(parts, " | "), nil
}

// responseTypes splits declared responses into the success group (2xx) and
// the error group (default/4xx/5xx) and compiles each group to one union.
// Entries with no content contribute void (success) or unknown (error); an
// empty group defaults the same way.
func (a *Assembler) responseTypes(responses openapi3.Responses) (string, string, error) {
	var success, failure []string
	for _, code := range sortedKeys(responses) {
		var isSuccess bool
		switch {
		case strings.HasPrefix(code, "2"):
			isSuccess = true
		case code == "default" || strings.HasPrefix(code, "4") || strings.HasPrefix(code, "5"):
			isSuccess = false
		default:
			continue
		}

		expr, err := a.responseType(responses[code], isSuccess)
		if err != nil {
			return "", "", err
		}
		if isSuccess {
			success = append(success, expr)
		} else {
			failure = append(failure, expr)
		}
	}
	if len(success) == 0 {
		success = []string{"void"}
	}
	if len(failure) == 0 {
		failure = []string{"unknown"}
	}
	return strings.Join(success, " | "), strings.Join(failure, " | "), nil
}

func (a *Assembler) responseType(ref *openapi3.ResponseRef, isSuccess bool) (string, error) {
	if ref == nil {
		return placeholderType(isSuccess), nil
	}
	if ref.Ref != "" {
		return a.table.Resolve(ref.Ref)
	}
	if ref.Value == nil || len(ref.Value.Content) == 0 {
		return placeholderType(isSuccess), nil
	}
	parts := make([]string, 0, len(ref.Value.Content))
	for _, mime := range sortedKeys(ref.Value.Content) {
		expr, err := a.compiler.Compile(ref.Value.Content[mime].Schema)
		if err != nil {
			return "", err
		}
		parts = append(parts, expr)
	}
	return strings.Join(parts, " | "), nil
}

func placeholderType(isSuccess bool) string {
	if isSuccess {
		return "void"
	}
	return "unknown"
}

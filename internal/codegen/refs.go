package codegen

import (
	"sort"

	"github.com/getkin/kin-openapi/openapi3"
)

// RefTable maps component pointers ("#/components/schemas/Pet") to the
// identifiers reserved for them. The table is fully populated before any
// schema body compiles, because references are resolved eagerly.
type RefTable struct {
	names map[string]string
}

// BuildRefTable scans every reusable component in the document in sorted key
// order and reserves one identifier per entry. Request bodies and responses
// carry a disambiguating suffix so they can share a source name with a schema.
func BuildRefTable(doc *openapi3.T, reg *Registry) (*RefTable, error) {
	t := &RefTable{names: make(map[string]string)}
	if doc.Components == nil {
		return t, nil
	}

	add := func(kind, name, suffix string) error {
		id, err := reg.Reserve(name, suffix)
		if err != nil {
			return err
		}
		t.names["#/components/"+kind+"/"+name] = id
		return nil
	}

	for _, name := range sortedKeys(doc.Components.Schemas) {
		if err := add("schemas", name, ""); err != nil {
			return nil, err
		}
	}
	for _, name := range sortedKeys(doc.Components.Parameters) {
		if err := add("parameters", name, ""); err != nil {
			return nil, err
		}
	}
	for _, name := range sortedKeys(doc.Components.RequestBodies) {
		if err := add("requestBodies", name, "RequestBody"); err != nil {
			return nil, err
		}
	}
	for _, name := range sortedKeys(doc.Components.Responses) {
		if err := add("responses", name, "Response"); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Resolve returns the identifier reserved for ref. Refs without a table
// entry (undeclared components, or external documents, which are
// unsupported) fail with ErrUnknownReference.
func (t *RefTable) Resolve(ref string) (string, error) {
	if id, ok := t.names[ref]; ok {
		return id, nil
	}
	return "", errUnknownReference(ref)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package codegen

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// schemaKind tags the SchemaNode union. Every schema the compiler accepts is
// exactly one of these; adding a keyword means adding a kind here and a case
// to classify and render.
type schemaKind int

const (
	kindReference schemaKind = iota
	kindComposed
	kindEnum
	kindScalar
	kindArray
	kindObject
)

type composeMode int

const (
	composeIntersection composeMode = iota // allOf
	composeUnion                           // anyOf / oneOf
)

// SchemaNode is the compiler's view of one schema: a tagged union with a
// nullability flag orthogonal to the tag.
type SchemaNode struct {
	Kind     schemaKind
	Nullable bool

	Ref string // kindReference

	Mode    composeMode // kindComposed
	Members []*SchemaNode

	Scalar string // kindScalar / kindEnum: boolean|integer|number|string
	Format string
	Enum   []any

	Elem *SchemaNode // kindArray

	Props         []propertyNode // kindObject, sorted by name
	Additional    *SchemaNode    // additionalProperties schema, when one is declared
	AdditionalAny bool           // additionalProperties: true (or an empty schema)
}

type propertyNode struct {
	Name     string
	Schema   *SchemaNode
	Required bool
}

// Compiler turns schema nodes into TypeScript type expressions. It is pure
// apart from reading the reference table and recording warnings; one
// Compiler serves one generation run.
type Compiler struct {
	refs  *RefTable
	warns *Warnings
}

func NewCompiler(refs *RefTable, warns *Warnings) *Compiler {
	return &Compiler{refs: refs, warns: warns}
}

// Compile translates a schema into a type expression. Any failure is fatal
// for the whole run; there is no partial output.
func (c *Compiler) Compile(ref *openapi3.SchemaRef) (string, error) {
	node, err := c.classify(ref)
	if err != nil {
		return "", err
	}
	return c.render(node)
}

// ignoredKeywords are compiled as if absent; each raises one warning per run.
func (c *Compiler) noteIgnoredKeywords(s *openapi3.Schema) {
	if s.Deprecated {
		c.warns.keyword("deprecated")
	}
	if s.Default != nil {
		c.warns.keyword("default")
	}
	if s.ReadOnly {
		c.warns.keyword("readOnly")
	}
	if s.WriteOnly {
		c.warns.keyword("writeOnly")
	}
	if s.XML != nil {
		c.warns.keyword("xml")
	}
}

// classify maps an openapi3 schema onto the SchemaNode union. The cases are
// checked in a fixed order and are mutually exclusive: reference, allOf,
// anyOf/oneOf, not/discriminator (unsupported), enum, scalar, array, object.
func (c *Compiler) classify(ref *openapi3.SchemaRef) (*SchemaNode, error) {
	if ref == nil || (ref.Ref == "" && ref.Value == nil) {
		// Absent schema: unconstrained.
		return &SchemaNode{Kind: kindObject}, nil
	}
	if ref.Ref != "" {
		return &SchemaNode{Kind: kindReference, Ref: ref.Ref}, nil
	}

	s := ref.Value
	c.noteIgnoredKeywords(s)
	node := &SchemaNode{Nullable: s.Nullable}

	switch {
	case len(s.AllOf) > 0:
		node.Kind, node.Mode = kindComposed, composeIntersection
		for _, m := range s.AllOf {
			member, err := c.classify(m)
			if err != nil {
				return nil, err
			}
			node.Members = append(node.Members, member)
		}

	case len(s.AnyOf) > 0 || len(s.OneOf) > 0:
		// No attempt to encode the exclusivity distinction between the two.
		node.Kind, node.Mode = kindComposed, composeUnion
		for _, m := range append(append(openapi3.SchemaRefs{}, s.AnyOf...), s.OneOf...) {
			member, err := c.classify(m)
			if err != nil {
				return nil, err
			}
			node.Members = append(node.Members, member)
		}

	case s.Not != nil:
		return nil, errUnsupportedKeyword("not")

	case s.Discriminator != nil:
		return nil, errUnsupportedKeyword("discriminator")

	case len(s.Enum) > 0:
		node.Kind = kindEnum
		node.Scalar = s.Type
		node.Enum = s.Enum

	case s.Type == "boolean" || s.Type == "integer" || s.Type == "number" || s.Type == "string":
		node.Kind = kindScalar
		node.Scalar = s.Type
		node.Format = s.Format

	case s.Type == "array":
		elem, err := c.classify(s.Items)
		if err != nil {
			return nil, err
		}
		node.Kind = kindArray
		node.Elem = elem

	case s.Type == "object" || s.Type == "":
		node.Kind = kindObject
		names := sortedKeys(s.Properties)
		required := make(map[string]bool, len(s.Required))
		for _, name := range s.Required {
			required[name] = true
		}
		for _, name := range names {
			prop, err := c.classify(s.Properties[name])
			if err != nil {
				return nil, err
			}
			// A property is required iff listed in the schema's required
			// set; no required set means every property is optional.
			node.Props = append(node.Props, propertyNode{Name: name, Schema: prop, Required: required[name]})
		}
		if s.AdditionalProperties.Schema != nil {
			add, err := c.classify(s.AdditionalProperties.Schema)
			if err != nil {
				return nil, err
			}
			node.Additional = add
		} else if s.AdditionalProperties.Has != nil && *s.AdditionalProperties.Has {
			node.AdditionalAny = true
		}

	default:
		return nil, errUnknownScalarType(s.Type)
	}

	return node, nil
}

// render prints a SchemaNode as a TypeScript type expression.
func (c *Compiler) render(n *SchemaNode) (string, error) {
	switch n.Kind {
	case kindReference:
		return c.refs.Resolve(n.Ref)

	case kindComposed:
		parts := make([]string, 0, len(n.Members))
		for _, m := range n.Members {
			expr, err := c.render(m)
			if err != nil {
				return "", err
			}
			if n.Mode == composeIntersection && strings.Contains(expr, " | ") {
				expr = "(" + expr + ")"
			}
			parts = append(parts, expr)
		}
		sep := " | "
		if n.Mode == composeIntersection {
			sep = " & "
		}
		return nullableExpr(strings.Join(parts, sep), n.Nullable), nil

	case kindEnum:
		parts := make([]string, 0, len(n.Enum)+1)
		for _, v := range n.Enum {
			parts = append(parts, literal(v))
		}
		if n.Nullable {
			parts = append(parts, "null")
		}
		return strings.Join(parts, " | "), nil

	case kindScalar:
		expr := scalarTypes[n.Scalar]
		if n.Format != "" {
			expr += " /* " + n.Format + " */"
		}
		return nullableExpr(expr, n.Nullable), nil

	case kindArray:
		elem, err := c.render(n.Elem)
		if err != nil {
			return "", err
		}
		if strings.Contains(elem, " | ") || strings.Contains(elem, " & ") {
			elem = "(" + elem + ")"
		}
		return nullableExpr(elem+"[]", n.Nullable), nil

	case kindObject:
		return c.renderObject(n)
	}
	return "", fmt.Errorf("codegen: unhandled schema kind %d", n.Kind)
}

func (c *Compiler) renderObject(n *SchemaNode) (string, error) {
	index := ""
	if n.Additional != nil {
		expr, err := c.render(n.Additional)
		if err != nil {
			return "", err
		}
		index = expr
	} else if n.AdditionalAny {
		index = "unknown"
	}

	if len(n.Props) == 0 {
		if index == "" {
			// Fully unconstrained schema; null is already a member of unknown.
			return "unknown", nil
		}
		return nullableExpr("Record<string, "+index+">", n.Nullable), nil
	}

	members := make([]Member, 0, len(n.Props))
	for _, p := range n.Props {
		expr, err := c.render(p.Schema)
		if err != nil {
			return "", err
		}
		members = append(members, Member{Name: p.Name, Type: expr, Optional: !p.Required})
	}
	return nullableExpr(renderMembers(members, index), n.Nullable), nil
}

// Member is one named member of an object type expression.
type Member struct {
	Name     string
	Type     string
	Optional bool
}

// renderMembers prints an inline object type. index, when non-empty, is the
// value type of a trailing index signature appended after the declared
// members rather than replacing them.
func renderMembers(members []Member, index string) string {
	parts := make([]string, 0, len(members)+1)
	for _, m := range members {
		name := m.Name
		if !tsIdentRe.MatchString(name) {
			name = strconv.Quote(name)
		}
		opt := ""
		if m.Optional {
			opt = "?"
		}
		parts = append(parts, fmt.Sprintf("%s%s: %s", name, opt, m.Type))
	}
	if index != "" {
		parts = append(parts, "[key: string]: "+index)
	}
	return "{ " + strings.Join(parts, "; ") + " }"
}

var tsIdentRe = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

var scalarTypes = map[string]string{
	"boolean": "boolean",
	"integer": "number",
	"number":  "number",
	"string":  "string",
}

func nullableExpr(expr string, nullable bool) string {
	if nullable {
		return expr + " | null"
	}
	return expr
}

// literal prints one enum value as a TypeScript literal. JSON literal syntax
// is valid TypeScript for the scalar kinds enums may carry.
func literal(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return strconv.Quote(fmt.Sprint(v))
	}
	return string(data)
}

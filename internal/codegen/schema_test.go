package codegen

import (
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCompiler(t *testing.T) (*Compiler, *Warnings) {
	t.Helper()
	table, err := BuildRefTable(componentsDoc(), NewRegistry())
	require.NoError(t, err)
	warns := NewWarnings()
	return NewCompiler(table, warns), warns
}

func schemaOf(s *openapi3.Schema) *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Value: s}
}

func TestCompileScalars(t *testing.T) {
	t.Parallel()
	c, _ := newTestCompiler(t)

	cases := []struct {
		schema *openapi3.Schema
		want   string
	}{
		{&openapi3.Schema{Type: "boolean"}, "boolean"},
		{&openapi3.Schema{Type: "integer"}, "number"},
		{&openapi3.Schema{Type: "number"}, "number"},
		{&openapi3.Schema{Type: "string"}, "string"},
		{&openapi3.Schema{Type: "integer", Format: "int64"}, "number /* int64 */"},
		{&openapi3.Schema{Type: "string", Nullable: true}, "string | null"},
	}
	for _, tc := range cases {
		got, err := c.Compile(schemaOf(tc.schema))
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}
}

func TestCompileUnknownScalarType(t *testing.T) {
	t.Parallel()
	c, _ := newTestCompiler(t)

	_, err := c.Compile(schemaOf(&openapi3.Schema{Type: "file"}))
	require.ErrorIs(t, err, ErrUnknownScalarType)
}

func TestCompileNullableEnum(t *testing.T) {
	t.Parallel()
	c, _ := newTestCompiler(t)

	got, err := c.Compile(schemaOf(&openapi3.Schema{
		Type:     "string",
		Enum:     []any{"a", "b"},
		Nullable: true,
	}))
	require.NoError(t, err)
	assert.Equal(t, `"a" | "b" | null`, got)

	numeric, err := c.Compile(schemaOf(&openapi3.Schema{Type: "integer", Enum: []any{1, 2}}))
	require.NoError(t, err)
	assert.Equal(t, "1 | 2", numeric)
}

func TestCompileReference(t *testing.T) {
	t.Parallel()
	c, _ := newTestCompiler(t)

	got, err := c.Compile(&openapi3.SchemaRef{Ref: "#/components/schemas/Pet"})
	require.NoError(t, err)
	assert.Equal(t, "Pet", got)

	_, err = c.Compile(&openapi3.SchemaRef{Ref: "#/components/schemas/Ghost"})
	require.ErrorIs(t, err, ErrUnknownReference)
}

func TestCompileObjectRequired(t *testing.T) {
	t.Parallel()
	c, _ := newTestCompiler(t)

	got, err := c.Compile(schemaOf(&openapi3.Schema{
		Type: "object",
		Properties: openapi3.Schemas{
			"id":   schemaOf(&openapi3.Schema{Type: "integer"}),
			"name": schemaOf(&openapi3.Schema{Type: "string"}),
		},
		Required: []string{"id"},
	}))
	require.NoError(t, err)
	assert.Equal(t, "{ id: number; name?: string }", got)

	// No required set means every property is optional.
	allOptional, err := c.Compile(schemaOf(&openapi3.Schema{
		Type: "object",
		Properties: openapi3.Schemas{
			"id": schemaOf(&openapi3.Schema{Type: "integer"}),
		},
	}))
	require.NoError(t, err)
	assert.Equal(t, "{ id?: number }", allOptional)
}

func TestCompileDictionaries(t *testing.T) {
	t.Parallel()
	c, _ := newTestCompiler(t)

	allowed := true
	open, err := c.Compile(schemaOf(&openapi3.Schema{
		Type:                 "object",
		AdditionalProperties: openapi3.AdditionalProperties{Has: &allowed},
	}))
	require.NoError(t, err)
	assert.Equal(t, "Record<string, unknown>", open)

	typed, err := c.Compile(schemaOf(&openapi3.Schema{
		Type:                 "object",
		AdditionalProperties: openapi3.AdditionalProperties{Schema: schemaOf(&openapi3.Schema{Type: "integer"})},
	}))
	require.NoError(t, err)
	assert.Equal(t, "Record<string, number>", typed)

	// Declared properties keep the index signature as an extra member.
	mixed, err := c.Compile(schemaOf(&openapi3.Schema{
		Type: "object",
		Properties: openapi3.Schemas{
			"id": schemaOf(&openapi3.Schema{Type: "integer"}),
		},
		AdditionalProperties: openapi3.AdditionalProperties{Schema: schemaOf(&openapi3.Schema{Type: "string"})},
	}))
	require.NoError(t, err)
	assert.Equal(t, "{ id?: number; [key: string]: string }", mixed)
}

func TestCompileComposed(t *testing.T) {
	t.Parallel()
	c, _ := newTestCompiler(t)

	intersection, err := c.Compile(schemaOf(&openapi3.Schema{
		AllOf: openapi3.SchemaRefs{
			{Ref: "#/components/schemas/Pet"},
			schemaOf(&openapi3.Schema{
				Type:       "object",
				Properties: openapi3.Schemas{"extra": schemaOf(&openapi3.Schema{Type: "string"})},
			}),
		},
	}))
	require.NoError(t, err)
	assert.Equal(t, "Pet & { extra?: string }", intersection)

	union, err := c.Compile(schemaOf(&openapi3.Schema{
		OneOf: openapi3.SchemaRefs{
			{Ref: "#/components/schemas/Pet"},
			schemaOf(&openapi3.Schema{Type: "string"}),
		},
	}))
	require.NoError(t, err)
	assert.Equal(t, "Pet | string", union)

	// A union member inside an intersection gets parenthesized.
	nested, err := c.Compile(schemaOf(&openapi3.Schema{
		AllOf: openapi3.SchemaRefs{
			{Ref: "#/components/schemas/Pet"},
			schemaOf(&openapi3.Schema{
				AnyOf: openapi3.SchemaRefs{
					schemaOf(&openapi3.Schema{Type: "string"}),
					schemaOf(&openapi3.Schema{Type: "integer"}),
				},
			}),
		},
	}))
	require.NoError(t, err)
	assert.Equal(t, "Pet & (string | number)", nested)
}

func TestCompileArray(t *testing.T) {
	t.Parallel()
	c, _ := newTestCompiler(t)

	plain, err := c.Compile(schemaOf(&openapi3.Schema{
		Type:  "array",
		Items: schemaOf(&openapi3.Schema{Type: "string"}),
	}))
	require.NoError(t, err)
	assert.Equal(t, "string[]", plain)

	ofUnion, err := c.Compile(schemaOf(&openapi3.Schema{
		Type: "array",
		Items: schemaOf(&openapi3.Schema{
			OneOf: openapi3.SchemaRefs{
				schemaOf(&openapi3.Schema{Type: "string"}),
				schemaOf(&openapi3.Schema{Type: "integer"}),
			},
		}),
		Nullable: true,
	}))
	require.NoError(t, err)
	assert.Equal(t, "(string | number)[] | null", ofUnion)
}

func TestCompileUnsupportedKeywords(t *testing.T) {
	t.Parallel()
	c, _ := newTestCompiler(t)

	_, err := c.Compile(schemaOf(&openapi3.Schema{
		Not: schemaOf(&openapi3.Schema{Type: "string"}),
	}))
	require.ErrorIs(t, err, ErrUnsupportedKeyword)

	_, err = c.Compile(schemaOf(&openapi3.Schema{
		Discriminator: &openapi3.Discriminator{PropertyName: "kind"},
	}))
	require.ErrorIs(t, err, ErrUnsupportedKeyword)
}

func TestIgnoredKeywordsWarnOncePerRun(t *testing.T) {
	t.Parallel()
	c, warns := newTestCompiler(t)

	for i := 0; i < 3; i++ {
		_, err := c.Compile(schemaOf(&openapi3.Schema{Type: "string", Deprecated: true}))
		require.NoError(t, err)
	}
	_, err := c.Compile(schemaOf(&openapi3.Schema{Type: "string", Default: "x"}))
	require.NoError(t, err)

	require.Len(t, warns.List(), 2)
	assert.Contains(t, warns.List()[0], "deprecated")
	assert.Contains(t, warns.List()[1], "default")
}

func TestCompileQuotedPropertyNames(t *testing.T) {
	t.Parallel()
	c, _ := newTestCompiler(t)

	got, err := c.Compile(schemaOf(&openapi3.Schema{
		Type: "object",
		Properties: openapi3.Schemas{
			"content-type": schemaOf(&openapi3.Schema{Type: "string"}),
		},
	}))
	require.NoError(t, err)
	assert.Equal(t, `{ "content-type"?: string }`, got)
}

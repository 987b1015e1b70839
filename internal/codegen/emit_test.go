package codegen

import (
	"context"
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const petstoreYAML = `
openapi: 3.0.3
info:
  title: Petstore
  version: 1.2.3
  description: A sample API.
servers:
  - url: https://api.example.com/v1
paths:
  /pets:
    get:
      operationId: listPets
      parameters:
        - name: limit
          in: query
          schema:
            type: integer
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema:
                type: array
                items:
                  $ref: "#/components/schemas/Pet"
    post:
      operationId: createPet
      requestBody:
        content:
          application/json:
            schema:
              $ref: "#/components/schemas/Pet"
      responses:
        "201":
          description: created
components:
  schemas:
    Pet:
      type: object
      required: [id]
      properties:
        id:
          type: integer
        name:
          type: string
`

func loadDoc(t *testing.T, data string) *openapi3.T {
	t.Helper()
	doc, err := openapi3.NewLoader().LoadFromData([]byte(data))
	require.NoError(t, err)
	return doc
}

func TestGenerateFullModule(t *testing.T) {
	t.Parallel()
	out, err := Generate(context.Background(), loadDoc(t, petstoreYAML), Options{})
	require.NoError(t, err)

	// Header.
	assert.Contains(t, out, " * Petstore 1.2.3\n")
	assert.Contains(t, out, " * A sample API.\n")
	assert.Contains(t, out, " * Generated by oas2ts; do not edit by hand.\n")

	// Component schemas become one alias each.
	assert.Contains(t, out, "export type Pet = { id: number; name?: string };")

	// Request runtime carries the document's first server URL.
	assert.Contains(t, out, `const defaultBaseUrl = "https://api.example.com/v1";`)

	// GET operation: function plus query-style hook.
	assert.Contains(t, out, "export namespace ListPets {")
	assert.Contains(t, out, "export type QueryParameters = { limit?: number };")
	assert.Contains(t, out, "export async function listPets(queryParams: ListPets.QueryParameters, options?: RequestOptions): Promise<ListPets.Response.Success> {")
	assert.Contains(t, out, `return useQuery(["/pets", queryParams], () => listPets(queryParams, options));`)

	// POST operation: body argument, JSON content type, mutation-style hook.
	assert.Contains(t, out, "export type RequestBody = Pet;")
	assert.Contains(t, out, `headers: { "Content-Type": "application/json" },`)
	assert.Contains(t, out, "export function useCreatePet() {")
	assert.Contains(t, out, "return useMutation((...args: Parameters<typeof createPet>) => createPet(...args));")

	// Formatter guarantees.
	assert.True(t, strings.HasSuffix(out, "\n"))
	assert.False(t, strings.HasSuffix(out, "\n\n"))
	assert.NotContains(t, out, "\n\n\n")
}

func TestGenerateDeterministic(t *testing.T) {
	t.Parallel()
	first, err := Generate(context.Background(), loadDoc(t, petstoreYAML), Options{})
	require.NoError(t, err)
	second, err := Generate(context.Background(), loadDoc(t, petstoreYAML), Options{})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGenerateBaseURLOverride(t *testing.T) {
	t.Parallel()
	out, err := Generate(context.Background(), loadDoc(t, petstoreYAML), Options{BaseURL: "http://localhost:8080"})
	require.NoError(t, err)
	assert.Contains(t, out, `const defaultBaseUrl = "http://localhost:8080";`)
	assert.NotContains(t, out, "api.example.com")
}

func TestGenerateRejectsComponentParameters(t *testing.T) {
	t.Parallel()
	doc := loadDoc(t, petstoreYAML)
	doc.Components.Parameters = openapi3.ParametersMap{
		"limitParam": &openapi3.ParameterRef{Value: &openapi3.Parameter{
			Name:   "limit",
			In:     "query",
			Schema: schemaOf(&openapi3.Schema{Type: "integer"}),
		}},
	}
	_, err := Generate(context.Background(), doc, Options{})
	require.ErrorIs(t, err, ErrUnsupportedFeature)
}

func TestGenerateRejectsNonV3(t *testing.T) {
	t.Parallel()
	doc := loadDoc(t, petstoreYAML)
	doc.OpenAPI = "2.0"
	_, err := Generate(context.Background(), doc, Options{})
	require.ErrorIs(t, err, ErrValidationFailure)
}

func TestGenerateHookOverrides(t *testing.T) {
	t.Parallel()

	var preprocessed, validated bool
	out, err := Generate(context.Background(), loadDoc(t, petstoreYAML), Options{
		Hooks: Hooks{
			PreProcess: func(_ context.Context, doc *openapi3.T) (*openapi3.T, error) {
				preprocessed = true
				return doc, nil
			},
			Validate: func(context.Context, *openapi3.T) error {
				validated = true
				return nil
			},
			CreateImports: func() string { return `import { z } from "zod";` },
			CreateEndpoint: func(ep *Endpoint) (string, error) {
				return "// " + ep.Descriptor.FuncName, nil
			},
		},
	})
	require.NoError(t, err)
	assert.True(t, preprocessed)
	assert.True(t, validated)
	assert.Contains(t, out, `import { z } from "zod";`)
	assert.Contains(t, out, "// listPets")
	assert.Contains(t, out, "// createPet")
	assert.NotContains(t, out, "export async function listPets")
}

func TestGenerateNilPreProcessResult(t *testing.T) {
	t.Parallel()
	_, err := Generate(context.Background(), loadDoc(t, petstoreYAML), Options{
		Hooks: Hooks{
			PreProcess: func(context.Context, *openapi3.T) (*openapi3.T, error) { return nil, nil },
		},
	})
	require.ErrorIs(t, err, ErrValidationFailure)
}

func TestGenerateCollectsWarnings(t *testing.T) {
	t.Parallel()
	doc := loadDoc(t, petstoreYAML)
	doc.Components.Schemas["Pet"].Value.Deprecated = true

	warns := NewWarnings()
	_, err := Generate(context.Background(), doc, Options{Warnings: warns})
	require.NoError(t, err)
	require.Len(t, warns.List(), 1)
	assert.Contains(t, warns.List()[0], "deprecated")
}

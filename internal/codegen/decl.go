package codegen

import "strings"

// The declaration tree separates what a fragment declares from how it is
// printed: the assembler and emitter build Decl values, and Render prints
// them in one later pass.

// Decl is one emitted declaration.
type Decl interface {
	render(b *strings.Builder, indent string)
}

// TypeAliasDecl is an exported type alias.
type TypeAliasDecl struct {
	Name    string
	Type    string
	Comment string // optional single-line doc comment
}

func (d *TypeAliasDecl) render(b *strings.Builder, indent string) {
	if d.Comment != "" {
		b.WriteString(indent)
		b.WriteString("/** ")
		b.WriteString(d.Comment)
		b.WriteString(" */\n")
	}
	b.WriteString(indent)
	b.WriteString("export type ")
	b.WriteString(d.Name)
	b.WriteString(" = ")
	b.WriteString(d.Type)
	b.WriteString(";\n")
}

// NamespaceDecl groups child declarations under an exported namespace.
type NamespaceDecl struct {
	Name  string
	Decls []Decl
}

func (d *NamespaceDecl) render(b *strings.Builder, indent string) {
	b.WriteString(indent)
	b.WriteString("export namespace ")
	b.WriteString(d.Name)
	b.WriteString(" {\n")
	for _, child := range d.Decls {
		child.render(b, indent+"  ")
	}
	b.WriteString(indent)
	b.WriteString("}\n")
}

// RawDecl is pre-rendered text placed verbatim at its indent level.
type RawDecl struct {
	Text string
}

func (d *RawDecl) render(b *strings.Builder, indent string) {
	for _, line := range strings.Split(strings.TrimRight(d.Text, "\n"), "\n") {
		if line != "" {
			b.WriteString(indent)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
}

// Render prints a declaration list at top level.
func Render(decls []Decl) string {
	var b strings.Builder
	for i, d := range decls {
		if i > 0 {
			b.WriteByte('\n')
		}
		d.render(&b, "")
	}
	return b.String()
}

package tsemitter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Options controls how the TypeScript emitter lays out a client package.
type Options struct {
	OutDir      string // required; target directory to write the package
	PackageName string // npm package name; derived from the title when empty
	Force       bool   // overwrite existing files
	DryRun      bool   // don't write, only plan
	Verbose     bool
}

// Meta carries the document fields surfaced in package.json and the README.
type Meta struct {
	Title       string
	Version     string
	Description string
}

// PlannedFile describes a file the emitter intends to write.
type PlannedFile struct {
	RelPath string
	Size    int
	Mode    os.FileMode
}

// Result returns the planned files and the final resolved package name.
type Result struct {
	PackageName string
	Planned     []PlannedFile
}

// Emit writes the generated client module plus npm scaffolding to disk.
// moduleText is the fully generated and formatted source; the emitter never
// rewrites it.
func Emit(ctx context.Context, moduleText string, meta Meta, opts Options) (*Result, error) {
	_ = ctx
	if strings.TrimSpace(moduleText) == "" {
		return nil, fmt.Errorf("tsemitter: empty module text")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("tsemitter: OutDir is required")
	}
	pkgName := sanitizePackageName(opts.PackageName)
	if pkgName == "" {
		pkgName = sanitizePackageName(meta.Title)
	}
	if pkgName == "" {
		pkgName = "api-client"
	}

	files := map[string][]byte{
		filepath.Join("src", "client.ts"): []byte(moduleText),
		"package.json":                    []byte(renderPackageJSON(pkgName, meta)),
		"tsconfig.json":                   []byte(renderTSConfig()),
		"README.md":                       []byte(renderReadme(pkgName, meta)),
	}

	rels := make([]string, 0, len(files))
	for p := range files {
		rels = append(rels, filepath.ToSlash(p))
	}
	sort.Strings(rels)

	planned := make([]PlannedFile, 0, len(rels))
	for _, rel := range rels {
		planned = append(planned, PlannedFile{RelPath: rel, Size: len(files[rel]), Mode: 0o644})
	}

	if !opts.DryRun {
		if err := writeFiles(opts.OutDir, files, opts.Force); err != nil {
			return nil, err
		}
	}

	return &Result{PackageName: pkgName, Planned: planned}, nil
}

func writeFiles(outDir string, files map[string][]byte, force bool) error {
	abs, err := filepath.Abs(outDir)
	if err != nil {
		return fmt.Errorf("resolve out dir: %w", err)
	}
	if st, err := os.Stat(abs); err == nil && st.IsDir() && !force {
		entries, rerr := os.ReadDir(abs)
		if rerr == nil && len(entries) > 0 {
			return fmt.Errorf("tsemitter: output directory %q is not empty (use --force to overwrite)", abs)
		}
	}
	for rel, content := range files {
		p := filepath.Join(abs, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return fmt.Errorf("mkdir: %w", err)
		}
		// atomic write via temp file + rename
		tmp := p + ".tmp-" + time.Now().Format("20060102150405")
		if err := os.WriteFile(tmp, content, 0o644); err != nil {
			return fmt.Errorf("write temp %s: %w", rel, err)
		}
		if err := os.Rename(tmp, p); err != nil {
			_ = os.Remove(tmp)
			return fmt.Errorf("rename %s: %w", rel, err)
		}
	}
	return nil
}

func renderPackageJSON(pkgName string, meta Meta) string {
	version := strings.TrimSpace(meta.Version)
	if version == "" {
		version = "0.0.0"
	}
	description := strings.ReplaceAll(strings.TrimSpace(meta.Description), "\n", " ")
	return fmt.Sprintf(`{
  "name": %q,
  "version": %q,
  "description": %q,
  "type": "module",
  "main": "dist/client.js",
  "types": "dist/client.d.ts",
  "files": ["dist"],
  "scripts": {
    "build": "tsc -p tsconfig.json"
  },
  "devDependencies": {
    "typescript": "^5.4.0"
  }
}
`, pkgName, version, description)
}

func renderTSConfig() string {
	return `{
  "compilerOptions": {
    "target": "ES2020",
    "module": "ES2020",
    "moduleResolution": "bundler",
    "lib": ["ES2020", "DOM"],
    "declaration": true,
    "strict": true,
    "outDir": "dist"
  },
  "include": ["src"]
}
`
}

func renderReadme(pkgName string, meta Meta) string {
	title := strings.TrimSpace(meta.Title)
	if title == "" {
		title = pkgName
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	if desc := strings.TrimSpace(meta.Description); desc != "" {
		b.WriteString(desc + "\n\n")
	}
	b.WriteString("Generated TypeScript client. Each API operation exports a typed request\n")
	b.WriteString("function and a matching `use*` hook; shared types live next to them in\n")
	b.WriteString("`src/client.ts`.\n\n```ts\nimport * as api from \"" + pkgName + "\";\n```\n")
	return b.String()
}

func sanitizePackageName(name string) string {
	// Simplified npm name sanitizer (no scope handling); keep lowercase,
	// digits, dot, dash, underscore.
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ""
	}
	name = strings.ReplaceAll(name, " ", "-")
	name = strings.ReplaceAll(name, "/", "-")
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.' {
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-.")
}

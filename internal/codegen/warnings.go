package codegen

import "fmt"

// Warnings collects non-fatal compile notices for one generation run. Each
// ignored schema keyword is reported once per run regardless of how many
// schemas carry it.
type Warnings struct {
	seen map[string]struct{}
	list []string
}

func NewWarnings() *Warnings {
	return &Warnings{seen: make(map[string]struct{})}
}

func (w *Warnings) keyword(kw string) {
	if w == nil {
		return
	}
	if _, ok := w.seen[kw]; ok {
		return
	}
	w.seen[kw] = struct{}{}
	w.list = append(w.list, fmt.Sprintf("schema keyword %q is not supported and was ignored", kw))
}

// List returns the collected warnings in the order they were first raised.
func (w *Warnings) List() []string {
	if w == nil {
		return nil
	}
	return w.list
}

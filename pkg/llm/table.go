package llm

// Model aliases clients may use instead of concrete model names.
const (
	AliasFast     = "fast"
	AliasBalanced = "balanced"
	AliasEmbed    = "embed"
)

// Table is a frozen alias-to-model lookup built once at process start and
// injected into handlers. It is never mutated after construction.
type Table struct {
	entries map[string]string
}

// NewTable builds a lookup table from the supplied alias map, filling in
// defaults for any alias the caller leaves unset.
func NewTable(aliases map[string]string) Table {
	entries := map[string]string{
		AliasFast:     "llama3.2",
		AliasBalanced: "llama3.1",
		AliasEmbed:    "nomic-embed-text",
	}
	for alias, model := range aliases {
		if model != "" {
			entries[alias] = model
		}
	}
	return Table{entries: entries}
}

// Resolve maps an alias to its concrete model name. Unknown names are passed
// through unchanged so callers may address models directly.
func (t Table) Resolve(name string) string {
	if model, ok := t.entries[name]; ok {
		return model
	}
	return name
}

// Fast returns the default conversational model.
func (t Table) Fast() string { return t.entries[AliasFast] }

// Embedding returns the embedding model.
func (t Table) Embedding() string { return t.entries[AliasEmbed] }

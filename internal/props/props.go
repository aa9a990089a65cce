// Package props holds the eliminated-property table: the mapping from a
// synthetic accessor ("Decl.set_Items") to the member name recovered by an
// earlier stage ("SetItem").
//
// A Builder is filled by one writer. Freeze hands out a Table that can only
// be read and is safe to share between goroutines.
package props

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Builder accumulates entries before the table is frozen.
type Builder struct {
	entries map[string]string
	frozen  bool
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{entries: make(map[string]string)}
}

// Add records key => name. Entries are append-only; adding a key twice with
// a different name is an error.
func (b *Builder) Add(key, name string) error {
	if b.frozen {
		return fmt.Errorf("property table is frozen")
	}
	if key == "" || name == "" {
		return fmt.Errorf("empty property entry %q => %q", key, name)
	}
	if prev, ok := b.entries[key]; ok && prev != name {
		return fmt.Errorf("property %q already maps to %q", key, prev)
	}
	b.entries[key] = name
	return nil
}

// Freeze ends the writing phase. The builder cannot be used afterwards.
func (b *Builder) Freeze() *Table {
	b.frozen = true
	t := &Table{entries: b.entries}
	b.entries = nil
	return t
}

// Table is the read-only view handed to the rewrite engine.
type Table struct {
	entries map[string]string
}

// Empty returns a table with no entries.
func Empty() *Table { return &Table{} }

// Lookup returns the recovered name for key.
func (t *Table) Lookup(key string) (string, bool) {
	if t == nil {
		return "", false
	}
	name, ok := t.entries[key]
	return name, ok
}

// Len returns the number of entries.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Entry is one key => name pair.
type Entry struct {
	Key  string
	Name string
}

// Entries returns every entry sorted by key.
func (t *Table) Entries() []Entry {
	if t == nil {
		return nil
	}
	out := make([]Entry, 0, len(t.entries))
	for k, v := range t.entries {
		out = append(out, Entry{Key: k, Name: v})
	}
	slices.SortFunc(out, func(a, b Entry) int { return cmp.Compare(a.Key, b.Key) })
	return out
}

type file struct {
	Properties map[string]string `yaml:"properties"`
}

// Decode reads a table file:
//
//	properties:
//	  Borland.Vcl.Units.Classes.TStrings.set_Strings: SetString
func Decode(r io.Reader) (*Table, error) {
	var f file
	if err := yaml.NewDecoder(r).Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding property table: %w", err)
	}
	b := NewBuilder()
	for k, v := range f.Properties {
		if err := b.Add(k, v); err != nil {
			return nil, err
		}
	}
	return b.Freeze(), nil
}

// Load reads the table file at path.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening property table: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

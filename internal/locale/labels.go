// Package locale owns the label tables used to localize rendered output.
// Tables are built once at startup and shared read-only across requests.
package locale

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Builtin locale identifiers.
const (
	LocaleEnglish   = "en"
	LocaleNorwegian = "no"
)

// builtinTables are the label tables shipped with the binary. The Norwegian
// table is first-class: the original service targeted the Nordic market.
var builtinTables = map[string]map[string]string{
	LocaleEnglish: {
		"product":           "Product",
		"revision":          "Rev.",
		"approvals_header":  "Approvals / Specifications",
		"properties_header": "Typical properties",
		"comparison_header": "Comparison",
		"vs":                "vs",
		"only_in":           "only in",
		"common":            "shared",
		"none":              "none found",
		"unparsed_note":     "unparsed content omitted",
	},
	LocaleNorwegian: {
		"product":           "Produkt",
		"revision":          "Rev.",
		"approvals_header":  "Godkjenninger / spesifikasjoner",
		"properties_header": "Typiske egenskaper",
		"comparison_header": "Sammenligning",
		"vs":                "mot",
		"only_in":           "kun i",
		"common":            "felles",
		"none":              "ingen funnet",
		"unparsed_note":     "utolket innhold utelatt",
	},
}

// overlayFile is the YAML shape of an optional startup overlay: extra or
// replacement locale tables plus property-name synonyms for the normalizer.
type overlayFile struct {
	Locales  map[string]map[string]string `yaml:"locales"`
	Synonyms map[string][]string          `yaml:"synonyms"`
}

// Store is an immutable set of label tables. Build it once at startup with
// NewStore / LoadStore; it is never mutated afterwards, so no locking is
// needed for concurrent lookups.
type Store struct {
	tables   map[string]map[string]string
	synonyms map[string][]string
}

// NewStore returns a store with the builtin locales only.
func NewStore() *Store {
	return &Store{tables: cloneTables(builtinTables)}
}

// LoadStore returns the builtin locales merged with the overlay file at
// path. Overlay entries replace builtin keys per locale; unknown locales are
// added whole.
func LoadStore(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read locale file: %w", err)
	}

	var overlay overlayFile
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("parse locale file %s: %w", path, err)
	}

	store := NewStore()
	for loc, entries := range overlay.Locales {
		table := store.tables[loc]
		if table == nil {
			table = make(map[string]string, len(entries))
			store.tables[loc] = table
		}
		for k, v := range entries {
			table[k] = v
		}
	}
	store.synonyms = overlay.Synonyms
	return store, nil
}

// Labels returns the label table for a locale. The boolean is false when the
// locale is unknown; callers surface that as an unsupported-locale failure
// rather than guessing a fallback.
func (s *Store) Labels(locale string) (map[string]string, bool) {
	table, ok := s.tables[locale]
	return table, ok
}

// Locales lists the available locale identifiers.
func (s *Store) Locales() []string {
	out := make([]string, 0, len(s.tables))
	for loc := range s.tables {
		out = append(out, loc)
	}
	return out
}

// Synonyms returns the property-name aliases loaded from the overlay file,
// or nil when none were configured.
func (s *Store) Synonyms() map[string][]string {
	return s.synonyms
}

func cloneTables(src map[string]map[string]string) map[string]map[string]string {
	out := make(map[string]map[string]string, len(src))
	for loc, table := range src {
		t := make(map[string]string, len(table))
		for k, v := range table {
			t[k] = v
		}
		out[loc] = t
	}
	return out
}

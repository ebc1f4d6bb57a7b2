package pds

import (
	"regexp"
	"strings"
)

// unit tokens that may trail a value or decorate a property name. Longer
// tokens first so alternation matching prefers the longest literal.
var knownUnitTokens = []string{
	"mg koh/g",
	"mgkoh/g",
	"mm²/s",
	"mm2/s",
	"kg/m³",
	"kg/m3",
	"g/cm3",
	"g/ml",
	"mpa.s",
	"mpa·s",
	"cst",
	"kg/l",
	"°c",
	"°f",
	"hpa",
	"bar",
	"%",
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	inlineUnitRe = buildInlineUnitRe()
)

func buildInlineUnitRe() *regexp.Regexp {
	quoted := make([]string, len(knownUnitTokens))
	for i, u := range knownUnitTokens {
		quoted[i] = regexp.QuoteMeta(u)
	}
	// value = optional comparator, number with comma or dot decimals,
	// immediately followed by a known unit token.
	return regexp.MustCompile(`(?i)^([<>]?\s*-?\d[\d.,]*)\s*(` + strings.Join(quoted, "|") + `)$`)
}

// unifySymbols folds the symbol variants PDS documents mix freely so that
// downstream pattern matching stays simple: degree signs, dashes and
// superscripts are reduced to one canonical form.
func unifySymbols(s string) string {
	r := strings.NewReplacer(
		"º", "°",
		"–", "-", // en dash
		"—", "-", // em dash
		"²", "2",
		"\r", "\n",
	)
	return r.Replace(s)
}

// collapseWhitespace trims and folds whitespace runs to single spaces.
func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// isUnitToken reports whether s is a bare measurement unit.
func isUnitToken(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, u := range knownUnitTokens {
		if s == u {
			return true
		}
	}
	return false
}

// splitInlineUnit splits a trailing unit token off a value string.
// Returns the bare value and the unit, or the input and "" when the value
// carries no recognizable unit.
func splitInlineUnit(value string) (string, string) {
	m := inlineUnitRe.FindStringSubmatch(strings.TrimSpace(value))
	if m == nil {
		return strings.TrimSpace(value), ""
	}
	return collapseWhitespace(m[1]), m[2]
}

// defaultSynonymAliases maps each canonical property key to the source
// phrasings seen across manufacturers. Keys and variants are compared after
// base normalization, so punctuation and unit decorations never matter here.
var defaultSynonymAliases = map[string][]string{
	"viscosity @ 40": {
		"kinematic viscosity @ 40",
		"viscosity at 40",
		"viscosity 40",
		"kv40",
	},
	"viscosity @ 100": {
		"kinematic viscosity @ 100",
		"viscosity at 100",
		"viscosity 100",
		"kv100",
	},
	"viscosity index": {
		"vi",
	},
	"pour point": {
		"pourpoint",
		"pour point max",
	},
	"flash point coc": {
		"flash point cleveland open cup",
		"flash point cleveland",
	},
	"flash point": {
		"flashpoint",
		"flash point min",
	},
	"density @ 15": {
		"density at 15",
		"specific gravity @ 15",
		"specific gravity",
		"relative density",
	},
	"tbn": {
		"total base number",
		"base number",
	},
	"tan": {
		"total acid number",
		"acid number",
	},
	"sulphated ash": {
		"sulfated ash",
		"ash sulphated",
	},
	"noack volatility": {
		"noack",
		"evaporation loss noack",
	},
	"color": {
		"colour",
		"astm color",
		"astm colour",
	},
}

// normalizer derives canonical property keys. It is immutable once built and
// safe to share across concurrent requests.
type normalizer struct {
	index map[string]string // base-normalized phrasing -> canonical key
}

// newNormalizer builds a normalizer from the built-in synonym table plus any
// extra canonical->variants aliases loaded from configuration at startup.
func newNormalizer(extra map[string][]string) *normalizer {
	n := &normalizer{index: make(map[string]string)}
	n.addAliases(defaultSynonymAliases)
	n.addAliases(extra)
	return n
}

func (n *normalizer) addAliases(aliases map[string][]string) {
	for canonical, variants := range aliases {
		key := baseNormalize(canonical)
		n.index[key] = key
		for _, v := range variants {
			n.index[baseNormalize(v)] = key
		}
	}
}

// Normalize returns the canonical key for a raw property name. It is a pure
// function of its input: deterministic and idempotent.
func (n *normalizer) Normalize(name string) string {
	key := baseNormalize(name)
	if canonical, ok := n.index[key]; ok {
		return canonical
	}
	return key
}

// Known reports whether the phrase maps to a synonym-table entry.
func (n *normalizer) Known(name string) bool {
	_, ok := n.index[baseNormalize(name)]
	return ok
}

// baseNormalize case-folds, unifies symbols, drops punctuation and bare unit
// tokens, and collapses whitespace. "Flash Point, COC °C" and
// "Flash point (COC), °C" both reduce to "flash point coc".
func baseNormalize(name string) string {
	s := strings.ToLower(unifySymbols(name))
	s = strings.NewReplacer("(", " ", ")", " ", ",", " ", ";", " ", ":", " ", "@", " @ ").Replace(s)
	fields := strings.Fields(s)
	kept := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, ".")
		// "40°c" style glued number+unit keeps only the number
		if m := inlineUnitRe.FindStringSubmatch(f); m != nil {
			f = m[1]
		}
		if f == "" || isUnitToken(f) {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}

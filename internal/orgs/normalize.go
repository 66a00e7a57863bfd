// Package orgs canonicalizes club and institution names so that career
// records from different feeds can be matched against each other.
package orgs

import "strings"

// legalFormPrefixes are stripped before comparison. Order matters: the
// longer "1. FC " form must be tried before plain "FC ".
var legalFormPrefixes = []string{
	"1. fc ",
	"1. fsv ",
	"fc ",
	"sv ",
	"vfl ",
	"vfb ",
	"tsg ",
	"tsv ",
	"ssv ",
	"sc ",
	"spvgg ",
	"bsc ",
}

// defaultAliases maps commonly seen short or historical club names to
// one canonical form. Both sides are compared after lowercasing and
// prefix stripping, so the table only needs to capture renames and
// abbreviations, not legal-form variants.
var defaultAliases = map[string]string{
	"bor. dortmund":      "borussia dortmund",
	"bor. m'gladbach":    "borussia mönchengladbach",
	"borussia mgladbach": "borussia mönchengladbach",
	"b. leverkusen":      "bayer 04 leverkusen",
	"leverkusen":         "bayer 04 leverkusen",
	"e. frankfurt":       "eintracht frankfurt",
	"hannover 96":        "hannover",
	"1899 hoffenheim":    "hoffenheim",
	"arminia bielefeld":  "bielefeld",
	"fortuna düsseldorf": "düsseldorf",
}

// Normalizer canonicalizes raw organization names into comparable keys.
// The zero value is not usable; construct with NewNormalizer.
type Normalizer struct {
	aliases map[string]string
}

// NewNormalizer builds a normalizer with the built-in alias table plus
// any extra aliases from configuration. Extra entries override built-ins
// for the same raw name. Alias keys and values are themselves normalized
// so config files can use any capitalization or legal form.
func NewNormalizer(extraAliases map[string]string) *Normalizer {
	n := &Normalizer{aliases: make(map[string]string, len(defaultAliases)+len(extraAliases))}
	for raw, canonical := range defaultAliases {
		n.aliases[stripLegalForm(strings.ToLower(strings.TrimSpace(raw)))] = stripLegalForm(strings.ToLower(strings.TrimSpace(canonical)))
	}
	for raw, canonical := range extraAliases {
		n.aliases[stripLegalForm(strings.ToLower(strings.TrimSpace(raw)))] = stripLegalForm(strings.ToLower(strings.TrimSpace(canonical)))
	}
	return n
}

// Normalize returns the canonical key for a raw organization name.
// It always returns a usable key: if nothing in the alias table matches,
// the trimmed, lowercased, prefix-stripped input is the key.
func (n *Normalizer) Normalize(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return ""
	}
	key = stripLegalForm(key)
	if canonical, ok := n.aliases[key]; ok {
		return canonical
	}
	return key
}

// stripLegalForm removes one leading legal-form prefix, if present.
func stripLegalForm(name string) string {
	for _, prefix := range legalFormPrefixes {
		if strings.HasPrefix(name, prefix) && len(name) > len(prefix) {
			return strings.TrimSpace(name[len(prefix):])
		}
	}
	return name
}

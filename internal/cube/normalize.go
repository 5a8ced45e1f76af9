package cube

import "strings"

// regionSynonyms maps lowercase, hyphenated spellings observed in source data
// to the canonical region labels used in cube output. Spellings outside the
// map are uppercased as-is so new regions appear without code changes.
var regionSynonyms = map[string]string{
	"east":       "EAST",
	"eas":        "EAST",
	"west":       "WEST",
	"south-west": "SOUTH-WEST",
	"southwest":  "SOUTH-WEST",
	"south":      "SOUTH",
	"north":      "NORTH",
	"central":    "CENTRAL",
}

// NormalizeRegion maps a raw region spelling onto its canonical label:
// trimmed, lowercased, underscores folded to hyphens, then looked up in the
// synonym table. Blank regions become UNKNOWN so every fact lands in a group.
func NormalizeRegion(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "UNKNOWN"
	}
	key := strings.ReplaceAll(strings.ToLower(trimmed), "_", "-")
	if canonical, ok := regionSynonyms[key]; ok {
		return canonical
	}
	return strings.ToUpper(key)
}

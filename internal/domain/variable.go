package domain

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// levelSuffixRe tests whether a variable name is level-bearing, i.e. ends
	// in a numeric level with a recognized unit: "temperature_850hPa",
	// "wind_u_component_10m", "soil_temperature_0cm".
	levelSuffixRe = regexp.MustCompile(`_\d+(?:cm|m|hPa)$`)

	// levelPrefixRe extracts the non-empty group prefix of a level-bearing
	// name: "wind_u_component_850hPa" -> "wind_u_component".
	levelPrefixRe = regexp.MustCompile(`^(.+?)_\d+(?:cm|m|hPa)$`)

	// levelValueRe extracts the (value, unit) pair for display:
	// "temperature_850hPa" -> ("850", "hPa").
	levelValueRe = regexp.MustCompile(`_(\d+)(cm|m|hPa)$`)
)

// LevelEntry is one level-qualified variant inside a level group.
type LevelEntry struct {
	Variable string `json:"variable"` // full name, e.g. "temperature_850hPa"
	Label    string `json:"label"`    // display label, e.g. "850 hPa"
}

// Classification is the derived menu structure for one metadata document.
// Options holds scalar names and group prefixes in source order, each prefix
// at most once. Groups maps a prefix to its entries in source order.
type Classification struct {
	Options []string                `json:"options"`
	Groups  map[string][]LevelEntry `json:"groups"`
}

// IsLevelBearing reports whether name carries a numeric level suffix.
func IsLevelBearing(name string) bool {
	return levelSuffixRe.MatchString(name)
}

// LevelPrefix returns the group prefix of a level-bearing name. The second
// return is false when the name has no extractable prefix (e.g. a bare
// "_850hPa" with nothing before the underscore).
func LevelPrefix(name string) (string, bool) {
	m := levelPrefixRe.FindStringSubmatch(name)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// LevelValue returns the numeric level value and unit of a level-bearing
// name. The third return is false when no level can be extracted; callers
// fall back to the raw name for display.
func LevelValue(name string) (value, unit string, ok bool) {
	m := levelValueRe.FindStringSubmatch(name)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// levelLabel formats the display label for a level-bearing name, falling
// back to the raw name when extraction misses.
func levelLabel(name string) string {
	value, unit, ok := LevelValue(name)
	if !ok {
		return name
	}
	return fmt.Sprintf("%s %s", value, unit)
}

// ClassifyVariables derives the hierarchical menu structure from a metadata
// document's flat variable list. Scalar names are passed through verbatim.
// Level-bearing names are grouped by prefix, the prefix entering Options the
// first time it is seen. A level-bearing name whose prefix cannot be
// extracted is dropped from both outputs.
func ClassifyVariables(variables []string) Classification {
	c := Classification{
		Options: make([]string, 0, len(variables)),
		Groups:  make(map[string][]LevelEntry),
	}
	for _, name := range variables {
		if !IsLevelBearing(name) {
			c.Options = append(c.Options, name)
			continue
		}
		prefix, ok := LevelPrefix(name)
		if !ok {
			continue
		}
		if _, seen := c.Groups[prefix]; !seen {
			c.Options = append(c.Options, prefix)
		}
		c.Groups[prefix] = append(c.Groups[prefix], LevelEntry{
			Variable: name,
			Label:    levelLabel(name),
		})
	}
	return c
}

// DefaultGroupMember picks the variant selected when the user switches to a
// level group: the first entry near the surface, preferring 2m, then 10m,
// then 100m, then the group's first entry.
func DefaultGroupMember(entries []LevelEntry) (LevelEntry, bool) {
	if len(entries) == 0 {
		return LevelEntry{}, false
	}
	for _, needle := range []string{"2m", "10m", "100m"} {
		for _, e := range entries {
			if strings.Contains(e.Variable, needle) {
				return e, true
			}
		}
	}
	return entries[0], true
}

package domain

import "time"

// Selection is the current (domain, variable, display time) triple.
type Selection struct {
	Domain      string    `json:"domain"`
	Variable    string    `json:"variable"`
	DisplayTime time.Time `json:"display_time"`
}

// NextVariableForDomain decides which variable a selection carries into a
// newly loaded metadata document:
//   - the current variable, when the new catalogue still has it;
//   - otherwise the first catalogue entry sharing the current variable's
//     group prefix, in document order;
//   - otherwise the catalogue's first entry.
//
// An empty catalogue keeps the current variable unchanged.
func NextVariableForDomain(current string, doc MetadataDocument) string {
	if len(doc.Variables) == 0 {
		return current
	}
	if doc.HasVariable(current) {
		return current
	}
	if prefix, ok := LevelPrefix(current); ok {
		for _, v := range doc.Variables {
			if p, ok := LevelPrefix(v); ok && p == prefix {
				return v
			}
		}
	}
	return doc.Variables[0]
}

// ResolveVariableChoice maps a top-level menu selection to a concrete
// variable: a group prefix resolves to the group's default member, anything
// else is taken as-is.
func ResolveVariableChoice(selector string, c Classification) string {
	if entries, ok := c.Groups[selector]; ok {
		if e, ok := DefaultGroupMember(entries); ok {
			return e.Variable
		}
	}
	return selector
}

package domain

import "time"

// MetadataDocument is the per-domain description of the latest model run:
// its reference time and the ordered variable catalogue. A document is
// replaced wholesale on every domain change, never merged.
type MetadataDocument struct {
	ReferenceTime time.Time
	Variables     []string
}

// HasVariable reports whether name is in the document's catalogue.
func (d MetadataDocument) HasVariable(name string) bool {
	for _, v := range d.Variables {
		if v == name {
			return true
		}
	}
	return false
}

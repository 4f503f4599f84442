// Package schema parses the OData metadata dictionary (EDMX) that defines
// every entity and property the enrichment engine can match against, and
// builds the lookup structures used by matching and resolution.
//
// The index is built once per session and is read-only afterwards; it is safe
// to share across concurrent template transformations.
package schema

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// PropertyEntry is one property definition from the metadata dictionary.
// Immutable once parsed.
type PropertyEntry struct {
	// Name is the raw property identifier, e.g. "person-id-external".
	Name string
	// NormalizedName is Normalize(Name).
	NormalizedName string
	// EdmType is the raw type string, e.g. "Edm.String" or "SFOData.PicklistOption".
	EdmType string
	// MaxLength is the declared maximum length; 0 means absent or non-numeric.
	MaxLength int
	// Required reports whether the dictionary marks the property required.
	Required bool
	// Label is the display label; empty when the dictionary carries none.
	Label string
	// EntityType is the owning entity's name.
	EntityType string
}

// DisplayLabel returns the label, falling back to the raw property name.
func (p *PropertyEntry) DisplayLabel() string {
	if p.Label != "" {
		return p.Label
	}
	return p.Name
}

// Index holds the two lookup structures built from the metadata dictionary.
//
// Global maps a normalized name to every property definition carrying that
// name, in document order of first appearance. The order is observable: the
// resolver's global fallback returns the first element, so it must reproduce
// document order exactly.
//
// ByEntity maps an entity name to that entity's own properties, one entry per
// normalized name (last definition wins within an entity).
type Index struct {
	Global   map[string][]*PropertyEntry
	ByEntity map[string]map[string]*PropertyEntry

	// EntityOrder lists entity names in document order. The matcher iterates
	// in this order so its first-seen tie-break is deterministic.
	EntityOrder []string
}

// Entities returns the number of entities in the index.
func (ix *Index) Entities() int { return len(ix.ByEntity) }

// Properties returns the total number of property definitions.
func (ix *Index) Properties() int {
	n := 0
	for _, entries := range ix.Global {
		n += len(entries)
	}
	return n
}

// MalformedSchemaError reports that the schema dictionary bytes could not be
// parsed as an EDMX document. Construction fails wholesale; no partial index
// is ever returned.
type MalformedSchemaError struct {
	Reason string
	Err    error
}

func (e *MalformedSchemaError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed schema dictionary: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed schema dictionary: %s", e.Reason)
}

func (e *MalformedSchemaError) Unwrap() error { return e.Err }

// Build parses the raw metadata dictionary bytes and constructs the index.
//
// It walks every EntityType element in document order and every Property
// nested under it. Namespaced attributes (sap:required, sap:label) are matched
// by local name so the parse does not depend on prefix declarations.
//
// Errors:
//   - Returns *MalformedSchemaError if the bytes are not well-formed XML or
//     contain no entity definitions at all.
func Build(raw []byte) (*Index, error) {
	ix := &Index{
		Global:   make(map[string][]*PropertyEntry),
		ByEntity: make(map[string]map[string]*PropertyEntry),
	}

	dec := xml.NewDecoder(bytes.NewReader(raw))

	var entity string          // current EntityType name, "" when outside one
	var props map[string]*PropertyEntry

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &MalformedSchemaError{Reason: "xml parse", Err: err}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "EntityType":
				entity = attrLocal(t.Attr, "Name")
				props = make(map[string]*PropertyEntry)
			case "Property":
				if entity == "" {
					continue
				}
				p := propertyFromAttrs(t.Attr, entity)
				if p.Name == "" {
					continue
				}
				ix.Global[p.NormalizedName] = append(ix.Global[p.NormalizedName], p)
				props[p.NormalizedName] = p
			}
		case xml.EndElement:
			if t.Name.Local == "EntityType" && entity != "" {
				ix.ByEntity[entity] = props
				ix.EntityOrder = append(ix.EntityOrder, entity)
				entity = ""
				props = nil
			}
		}
	}

	if len(ix.ByEntity) == 0 {
		return nil, &MalformedSchemaError{Reason: "no entity definitions found"}
	}
	return ix, nil
}

func propertyFromAttrs(attrs []xml.Attr, entity string) *PropertyEntry {
	p := &PropertyEntry{EntityType: entity}
	for _, a := range attrs {
		switch a.Name.Local {
		case "Name":
			// Plain (non-namespaced) attribute only; sap:Name does not exist
			// but guard anyway.
			if a.Name.Space == "" {
				p.Name = a.Value
			}
		case "Type":
			if a.Name.Space == "" {
				p.EdmType = a.Value
			}
		case "MaxLength":
			if n, err := strconv.Atoi(strings.TrimSpace(a.Value)); err == nil && n > 0 {
				p.MaxLength = n
			}
		case "required":
			p.Required = strings.EqualFold(strings.TrimSpace(a.Value), "true")
		case "label":
			p.Label = a.Value
		}
	}
	p.NormalizedName = Normalize(p.Name)
	return p
}

func attrLocal(attrs []xml.Attr, local string) string {
	for _, a := range attrs {
		if a.Name.Local == local && a.Name.Space == "" {
			return a.Value
		}
	}
	return ""
}

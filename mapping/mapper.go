// Package mapping maintains the source-column to target-field assignment for
// one document-type schema, with fuzzy auto-suggestion.
package mapping

import (
	"fmt"
	"strings"

	"github.com/ledgerline/taxdoc-import/dto"
	"github.com/ledgerline/taxdoc-import/schema"
	"github.com/ledgerline/taxdoc-import/utils"
)

// Mapper holds the mutable state of one in-progress mapping session. It is
// not safe for concurrent use; a session belongs to a single caller.
type Mapper struct {
	schema  *schema.Schema
	mapping map[string]string // source column -> target field
}

// NewMapper starts an empty mapping session for sch.
func NewMapper(sch *schema.Schema) *Mapper {
	return &Mapper{
		schema:  sch,
		mapping: make(map[string]string),
	}
}

// Suggest proposes target fields for the given source columns. A column
// matches a field when the normalized form of either contains the other,
// against the field's name or label; the first matching field in schema
// declaration order wins. Suggestions never displace existing assignments or
// claim an already-assigned target, so the same columns always produce the
// same mapping on a fresh session. Returns the full mapping after applying
// the suggestions.
func (m *Mapper) Suggest(columns []string) map[string]string {
	for _, col := range columns {
		if _, mapped := m.mapping[col]; mapped {
			continue
		}
		normCol := utils.NormalizeKey(col)
		if normCol == "" {
			continue
		}
		for i := range m.schema.Fields {
			f := &m.schema.Fields[i]
			if m.targetClaimed(f.Name) {
				continue
			}
			if contains(normCol, utils.NormalizeKey(f.Name)) || contains(normCol, utils.NormalizeKey(f.Label)) {
				m.mapping[col] = f.Name
				break
			}
		}
	}
	return m.Mapping()
}

// Set assigns source to target, replacing any previous target for source.
// Claiming a target that another source already holds is an error and leaves
// the mapping unchanged.
func (m *Mapper) Set(source, target string) error {
	if _, ok := m.schema.Field(target); !ok {
		return fmt.Errorf("unknown target field %q for document type %q", target, m.schema.Type)
	}
	for src, tgt := range m.mapping {
		if tgt == target && src != source {
			return fmt.Errorf("%w: %q is already mapped from column %q", dto.ErrDuplicateTarget, target, src)
		}
	}
	m.mapping[source] = target
	return nil
}

// Unset removes the assignment for source, if any.
func (m *Mapper) Unset(source string) {
	delete(m.mapping, source)
}

// Mapping returns a copy of the current source -> target assignment.
func (m *Mapper) Mapping() map[string]string {
	out := make(map[string]string, len(m.mapping))
	for k, v := range m.mapping {
		out[k] = v
	}
	return out
}

func (m *Mapper) targetClaimed(target string) bool {
	for _, tgt := range m.mapping {
		if tgt == target {
			return true
		}
	}
	return false
}

// contains reports containment in either direction.
func contains(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

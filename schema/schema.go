// Package schema holds the per-document-type target field catalogue. The
// catalogue is data, not code: it is embedded at build time and loaded once
// per process.
package schema

import (
	_ "embed"
	"fmt"
	"regexp"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/ledgerline/taxdoc-import/dto"
)

// Field value types.
const (
	TypeText    = "text"
	TypeNumber  = "number"
	TypeDecimal = "decimal"
	TypeBoolean = "boolean"
	TypeDate    = "date"
	TypeChoice  = "choice"
)

//go:embed catalogue.yaml
var catalogueYAML []byte

// FieldDefinition describes one target field of a document-type schema.
type FieldDefinition struct {
	Name     string   `yaml:"name" json:"name"`
	Label    string   `yaml:"label" json:"label"`
	Type     string   `yaml:"type" json:"type"`
	Required bool     `yaml:"required" json:"required"`
	Box      string   `yaml:"box" json:"box,omitempty"`
	Choices  []string `yaml:"choices" json:"choices,omitempty"`
	Min      *float64 `yaml:"min" json:"min,omitempty"`
	Max      *float64 `yaml:"max" json:"max,omitempty"`
	Pattern  string   `yaml:"pattern" json:"pattern,omitempty"`

	pattern *regexp.Regexp
}

// MatchesPattern reports whether value satisfies the field's pattern
// constraint. Fields without a pattern always match.
func (f *FieldDefinition) MatchesPattern(value string) bool {
	if f.pattern == nil {
		return true
	}
	return f.pattern.MatchString(value)
}

// Schema is the ordered field list for one document type.
type Schema struct {
	Type         string            `yaml:"type" json:"type"`
	Label        string            `yaml:"label" json:"label"`
	Category     string            `yaml:"category" json:"category"`
	AmountField  string            `yaml:"amount_field" json:"amount_field,omitempty"`
	Counterparty string            `yaml:"counterparty" json:"counterparty,omitempty"`
	Permissive   bool              `yaml:"permissive" json:"permissive,omitempty"`
	Fields       []FieldDefinition `yaml:"fields" json:"fields"`

	index map[string]int
}

// Field returns the definition for name, if the schema declares it.
func (s *Schema) Field(name string) (*FieldDefinition, bool) {
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return &s.Fields[i], true
}

func (s *Schema) init() error {
	s.index = make(map[string]int, len(s.Fields))
	hasRequired := false

	for i := range s.Fields {
		f := &s.Fields[i]
		if f.Name == "" {
			return fmt.Errorf("field %d has no name", i)
		}
		if _, dup := s.index[f.Name]; dup {
			return fmt.Errorf("duplicate field name %q", f.Name)
		}
		s.index[f.Name] = i

		switch f.Type {
		case TypeText, TypeNumber, TypeDecimal, TypeBoolean, TypeDate, TypeChoice:
		default:
			return fmt.Errorf("field %q has unknown type %q", f.Name, f.Type)
		}

		if f.Pattern != "" {
			re, err := regexp.Compile(f.Pattern)
			if err != nil {
				return fmt.Errorf("field %q has invalid pattern: %w", f.Name, err)
			}
			f.pattern = re
		}

		if f.Required {
			hasRequired = true
		}
	}

	if !hasRequired && !s.Permissive {
		return fmt.Errorf("no required field declared")
	}
	if s.AmountField != "" {
		if _, ok := s.index[s.AmountField]; !ok {
			return fmt.Errorf("amount field %q is not declared", s.AmountField)
		}
	}
	return nil
}

type catalogue struct {
	Version       int       `yaml:"version"`
	DocumentTypes []*Schema `yaml:"document_types"`
}

var (
	loadOnce sync.Once
	loadErr  error
	byType   map[string]*Schema
)

func load() {
	var cat catalogue
	if err := yaml.Unmarshal(catalogueYAML, &cat); err != nil {
		loadErr = fmt.Errorf("failed to parse schema catalogue: %w", err)
		return
	}

	byType = make(map[string]*Schema, len(cat.DocumentTypes))
	for _, s := range cat.DocumentTypes {
		if err := s.init(); err != nil {
			loadErr = fmt.Errorf("schema %q: %w", s.Type, err)
			return
		}
		if _, dup := byType[s.Type]; dup {
			loadErr = fmt.Errorf("duplicate schema type %q", s.Type)
			return
		}
		byType[s.Type] = s
	}
}

// ForType returns the schema for the given document type identifier.
func ForType(docType string) (*Schema, error) {
	loadOnce.Do(load)
	if loadErr != nil {
		return nil, loadErr
	}
	s, ok := byType[docType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", dto.ErrUnknownDocumentType, docType)
	}
	return s, nil
}

// Types lists every document type in the catalogue, sorted.
func Types() ([]string, error) {
	loadOnce.Do(load)
	if loadErr != nil {
		return nil, loadErr
	}
	types := make([]string, 0, len(byType))
	for t := range byType {
		types = append(types, t)
	}
	sort.Strings(types)
	return types, nil
}

// Package registry loads the schema registry: the set of canonical tables
// that imported datasets are matched against.
package registry

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/jinzhu/inflection"
	"gopkg.in/yaml.v3"

	"github.com/ekaya-inc/ekaya-ingest/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-ingest/pkg/models"
	"github.com/ekaya-inc/ekaya-ingest/pkg/textutil"
)

//go:embed default_schema.yaml
var defaultSchemaYAML []byte

type document struct {
	Tables []models.SchemaTable `yaml:"tables"`
}

// Parse decodes a YAML registry, validates it and fills in singular/plural
// table aliases.
func Parse(data []byte) ([]models.SchemaTable, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidRegistry, err)
	}
	if err := Validate(doc.Tables); err != nil {
		return nil, err
	}
	for i := range doc.Tables {
		doc.Tables[i].Aliases = withInflections(doc.Tables[i].Table, doc.Tables[i].Aliases)
	}
	return doc.Tables, nil
}

// LoadFile reads and parses a registry file.
func LoadFile(path string) ([]models.SchemaTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry %s: %w", path, err)
	}
	tables, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}
	return tables, nil
}

// Default returns a fresh copy of the built-in CRM registry.
func Default() []models.SchemaTable {
	tables, err := Parse(defaultSchemaYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded registry is invalid: %v", err))
	}
	return tables
}

// Validate checks that every table and field is named and that names are
// unique after normalization.
func Validate(tables []models.SchemaTable) error {
	if len(tables) == 0 {
		return fmt.Errorf("%w: no tables defined", apperrors.ErrInvalidRegistry)
	}

	seenTables := make(map[string]bool, len(tables))
	for i, t := range tables {
		name := textutil.NormalizeName(t.Table)
		if name == "" {
			return fmt.Errorf("%w: table %d has no name", apperrors.ErrInvalidRegistry, i+1)
		}
		if seenTables[name] {
			return fmt.Errorf("%w: duplicate table %q", apperrors.ErrInvalidRegistry, t.Table)
		}
		seenTables[name] = true

		if len(t.Fields) == 0 {
			return fmt.Errorf("%w: table %q has no fields", apperrors.ErrInvalidRegistry, t.Table)
		}
		seenFields := make(map[string]bool, len(t.Fields))
		for j, f := range t.Fields {
			field := textutil.NormalizeName(f.Field)
			if field == "" {
				return fmt.Errorf("%w: field %d of table %q has no name", apperrors.ErrInvalidRegistry, j+1, t.Table)
			}
			if seenFields[field] {
				return fmt.Errorf("%w: duplicate field %q in table %q", apperrors.ErrInvalidRegistry, f.Field, t.Table)
			}
			seenFields[field] = true
		}
	}
	return nil
}

// Lookup finds a table by name, ignoring case and punctuation.
func Lookup(tables []models.SchemaTable, name string) (*models.SchemaTable, error) {
	want := textutil.NormalizeName(name)
	for i := range tables {
		if textutil.NormalizeName(tables[i].Table) == want {
			return &tables[i], nil
		}
	}
	return nil, fmt.Errorf("table %q: %w", name, apperrors.ErrNotFound)
}

// withInflections appends the singular and plural forms of table to aliases
// when they differ from the table name and are not already listed.
func withInflections(table string, aliases []string) []string {
	out := slices.Clone(aliases)
	for _, form := range []string{inflection.Singular(table), inflection.Plural(table)} {
		if strings.EqualFold(form, table) || slices.ContainsFunc(out, func(a string) bool { return strings.EqualFold(a, form) }) {
			continue
		}
		out = append(out, form)
	}
	return out
}

package models

// SchemaTable is a canonical target table that imported columns can map to.
// Registries are supplied by the caller and never mutated by the matcher.
type SchemaTable struct {
	Table   string        `json:"table" yaml:"table"`
	Label   string        `json:"label" yaml:"label"`
	Aliases []string      `json:"aliases,omitempty" yaml:"aliases"`
	Fields  []SchemaField `json:"fields" yaml:"fields"`
}

// SchemaField is a canonical target field.
type SchemaField struct {
	Field    string   `json:"field" yaml:"field"`
	Aliases  []string `json:"aliases,omitempty" yaml:"aliases"`
	Type     string   `json:"type" yaml:"type"`
	Required bool     `json:"required" yaml:"required"`
}

// Key returns the "table.field" identifier used in suggested mappings.
func (t *SchemaTable) Key(field string) string {
	return t.Table + "." + field
}

// RequiredFields returns the names of all required fields in declaration order.
func (t *SchemaTable) RequiredFields() []string {
	var out []string
	for _, f := range t.Fields {
		if f.Required {
			out = append(out, f.Field)
		}
	}
	return out
}

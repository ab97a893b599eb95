package schema

import (
	"fmt"
	"strings"
)

// ValidationError describes a problem found in a table definition.
type ValidationError struct {
	Table   string
	Column  string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s.%s: %s", e.Table, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Table, e.Message)
}

// ValidationResult holds the problems found by ValidateTable and
// ValidateSchema. Errors stop a migration, warnings do not.
type ValidationResult struct {
	Errors   []*ValidationError
	Warnings []*ValidationError
}

// HasErrors reports whether the result holds errors.
func (r *ValidationResult) HasErrors() bool { return len(r.Errors) > 0 }

// HasWarnings reports whether the result holds warnings.
func (r *ValidationResult) HasWarnings() bool { return len(r.Warnings) > 0 }

func (r *ValidationResult) errorf(table, column, format string, args ...any) {
	r.Errors = append(r.Errors, &ValidationError{Table: table, Column: column, Message: fmt.Sprintf(format, args...)})
}

func (r *ValidationResult) warnf(table, column, format string, args ...any) {
	r.Warnings = append(r.Warnings, &ValidationError{Table: table, Column: column, Message: fmt.Sprintf(format, args...)})
}

// String returns the problems one per line.
func (r *ValidationResult) String() string {
	if !r.HasErrors() && !r.HasWarnings() {
		return "no issues found"
	}
	var b strings.Builder
	for _, e := range r.Errors {
		b.WriteString("  error: ")
		b.WriteString(e.Error())
		b.WriteByte('\n')
	}
	for _, w := range r.Warnings {
		b.WriteString("  warning: ")
		b.WriteString(w.Error())
		b.WriteByte('\n')
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// ValidateTable checks a single table definition.
func ValidateTable(t *Table) *ValidationResult {
	r := &ValidationResult{}
	validateTable(t, r)
	return r
}

func validateTable(t *Table, r *ValidationResult) {
	if t.Name == "" {
		r.errorf("<unnamed>", "", "table has no name")
	}
	if len(t.PrimaryKey) == 0 {
		r.warnf(t.Name, "", "table has no primary key")
	}
	columns := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		if columns[c.Name] {
			r.errorf(t.Name, c.Name, "duplicate column name")
		}
		columns[c.Name] = true
		if !c.Type.Valid() {
			r.errorf(t.Name, c.Name, "invalid column type")
		}
	}
	indexes := make(map[string]bool, len(t.Indexes))
	for _, idx := range t.Indexes {
		if indexes[idx.Name] {
			r.errorf(t.Name, "", "duplicate index name %q", idx.Name)
		}
		indexes[idx.Name] = true
		if len(idx.Columns) == 0 {
			r.errorf(t.Name, "", "index %q has no columns", idx.Name)
		}
		for _, c := range idx.Columns {
			if !columns[c.Name] {
				r.errorf(t.Name, "", "index %q references unknown column %q", idx.Name, c.Name)
			}
		}
	}
	for _, fk := range t.ForeignKeys {
		if fk.RefTable == nil {
			r.errorf(t.Name, "", "foreign key %q has no referenced table", fk.Symbol)
		}
		if len(fk.Columns) != len(fk.RefColumns) {
			r.errorf(t.Name, "", "foreign key %q has %d columns and %d referenced columns", fk.Symbol, len(fk.Columns), len(fk.RefColumns))
		}
		for _, c := range fk.Columns {
			if !columns[c.Name] {
				r.errorf(t.Name, "", "foreign key %q references unknown column %q", fk.Symbol, c.Name)
			}
			if fk.OnDelete == SetNull && !c.Nullable {
				r.errorf(t.Name, c.Name, "foreign key %q sets a NOT NULL column to null", fk.Symbol)
			}
		}
	}
}

// ValidateSchema checks a set of tables, including the tables their
// foreign keys reference.
func ValidateSchema(tables []*Table) *ValidationResult {
	r := &ValidationResult{}
	names := make(map[string]bool, len(tables))
	for _, t := range tables {
		if names[t.Name] {
			r.errorf(t.Name, "", "duplicate table name")
		}
		names[t.Name] = true
		validateTable(t, r)
	}
	for _, t := range tables {
		for _, fk := range t.ForeignKeys {
			if fk.RefTable != nil && !names[fk.RefTable.Name] {
				r.errorf(t.Name, "", "foreign key %q references unknown table %q", fk.Symbol, fk.RefTable.Name)
			}
		}
	}
	return r
}

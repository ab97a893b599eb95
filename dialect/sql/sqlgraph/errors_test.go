package sqlgraph

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ConstraintKind
	}{
		{"nil", nil, ConstraintNone},
		{"plain", errors.New("connection refused"), ConstraintNone},
		{"pq/unique", &pq.Error{Code: "23505"}, ConstraintUnique},
		{"pq/fk", &pq.Error{Code: "23503"}, ConstraintForeignKey},
		{"pq/check", &pq.Error{Code: "23514"}, ConstraintCheck},
		{"pq/notnull", &pq.Error{Code: "23502"}, ConstraintNotNull},
		{"pq/other", &pq.Error{Code: "42P01"}, ConstraintNone},
		{"mysql/duplicate", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, ConstraintUnique},
		{"mysql/fk/parent", &mysql.MySQLError{Number: 1451}, ConstraintForeignKey},
		{"mysql/fk/child", &mysql.MySQLError{Number: 1452}, ConstraintForeignKey},
		{"mysql/check", &mysql.MySQLError{Number: 3819}, ConstraintCheck},
		{"mysql/null", &mysql.MySQLError{Number: 1048}, ConstraintNotNull},
		{"mysql/other", &mysql.MySQLError{Number: 1146}, ConstraintNone},
		{"wrapped", fmt.Errorf("insert: %w", &pq.Error{Code: "23505"}), ConstraintUnique},
		{"sqlite/unique", errors.New("constraint failed: UNIQUE constraint failed: posts.slug (2067)"), ConstraintUnique},
		{"sqlite/fk", errors.New("FOREIGN KEY constraint failed"), ConstraintForeignKey},
		{"sqlite/check", errors.New("CHECK constraint failed: is_active"), ConstraintCheck},
		{"sqlite/notnull", errors.New("NOT NULL constraint failed: posts.title"), ConstraintNotNull},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
			assert.Equal(t, tt.want != ConstraintNone, IsConstraintError(tt.err))
		})
	}
}

func TestPredicates(t *testing.T) {
	unique := &pq.Error{Code: "23505"}
	assert.True(t, IsUniqueConstraintError(unique))
	assert.False(t, IsForeignKeyConstraintError(unique))
	assert.False(t, IsCheckConstraintError(unique))
	assert.False(t, IsNotNullConstraintError(unique))

	fk := &mysql.MySQLError{Number: 1452}
	assert.True(t, IsForeignKeyConstraintError(fk))
	assert.False(t, IsUniqueConstraintError(fk))

	assert.True(t, IsCheckConstraintError(errors.New(`pq: new row violates check constraint "chk"`)))
	assert.True(t, IsNotNullConstraintError(errors.New("NOT NULL constraint failed: posts.title")))
}

func TestConstraintKindString(t *testing.T) {
	assert.Equal(t, "unique", ConstraintUnique.String())
	assert.Equal(t, "foreign key", ConstraintForeignKey.String())
	assert.Equal(t, "check", ConstraintCheck.String())
	assert.Equal(t, "not null", ConstraintNotNull.String())
	assert.Equal(t, "none", ConstraintNone.String())
}

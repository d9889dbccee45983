package sql

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSelectList(t *testing.T) {
	tests := []struct {
		name     string
		list     string
		expected []ParsedColumn
	}{
		{
			name: "simple columns",
			list: "id, name, email",
			expected: []ParsedColumn{
				{Name: "id", Expr: "id"},
				{Name: "name", Expr: "name"},
				{Name: "email", Expr: "email"},
			},
		},
		{
			name: "columns with AS aliases",
			list: "id, name AS customer_name, email as contact_email",
			expected: []ParsedColumn{
				{Name: "id", Expr: "id"},
				{Name: "customer_name", Expr: "name AS customer_name"},
				{Name: "contact_email", Expr: "email as contact_email"},
			},
		},
		{
			name: "aggregate functions with aliases",
			list: "COUNT(*) AS total, SUM(amount) AS revenue",
			expected: []ParsedColumn{
				{Name: "total", Expr: "COUNT(*) AS total"},
				{Name: "revenue", Expr: "SUM(amount) AS revenue"},
			},
		},
		{
			name: "table-qualified columns",
			list: "u.id, u.name, o.total",
			expected: []ParsedColumn{
				{Name: "id", Expr: "u.id"},
				{Name: "name", Expr: "u.name"},
				{Name: "total", Expr: "o.total"},
			},
		},
		{
			name: "function without alias keeps the expression",
			list: "COUNT(*), COALESCE(a, b)",
			expected: []ParsedColumn{
				{Name: "COUNT(*)", Expr: "COUNT(*)"},
				{Name: "COALESCE(a, b)", Expr: "COALESCE(a, b)"},
			},
		},
		{
			name: "implicit alias",
			list: "COUNT(*) total, SUM(amount) revenue",
			expected: []ParsedColumn{
				{Name: "total", Expr: "COUNT(*) total"},
				{Name: "revenue", Expr: "SUM(amount) revenue"},
			},
		},
		{
			name: "quoted alias",
			list: `first_name AS "First Name"`,
			expected: []ParsedColumn{
				{Name: "First Name", Expr: `first_name AS "First Name"`},
			},
		},
		{
			name: "star entries are dropped",
			list: "*, id",
			expected: []ParsedColumn{
				{Name: "id", Expr: "id"},
			},
		},
		{
			name:     "only star",
			list:     "*",
			expected: nil,
		},
		{
			name: "distinct prefix",
			list: "DISTINCT email",
			expected: []ParsedColumn{
				{Name: "email", Expr: "email"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseSelectList(tt.list))
		})
	}
}

func TestSelectColumnName(t *testing.T) {
	tests := []struct {
		expr     string
		expected string
	}{
		{"id", "id"},
		{"  name  ", "name"},
		{"u.email", "email"},
		{`"public"."users"."email"`, "email"},
		{"`donor_id`", "donor_id"},
		{"amount * 100 AS cents", "cents"},
		{"amount * 100 cents", "cents"},
		{"SUM(amount)", "SUM(amount)"},
		{"CAST(x AS INT)", "CAST(x AS INT)"},
		{"full_name AS [Full Name]", "Full Name"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			assert.Equal(t, tt.expected, SelectColumnName(tt.expr))
		})
	}
}

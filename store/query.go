package store

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Boundary validation errors for caller-controlled identifiers.
var (
	ErrBadTable      = errors.New("store: table not allowed")
	ErrBadIdentifier = errors.New("store: invalid identifier")
	ErrBadOperator   = errors.New("store: invalid operator")
	ErrNotFound      = errors.New("store: no matching rows")
)

// Filter is one WHERE predicate. Op defaults to "=" when empty. Filters are a
// slice, not a map, so clause order is deterministic.
type Filter struct {
	Col   string
	Op    string
	Value any
}

// allowedTables is the fixed set of company-database tables the bridge reads.
var allowedTables = map[string]bool{
	"ORDR": true, // sales orders
	"OADM": true, // company admin
	"OCPR": true, // contact persons
	"OEXD": true, // additional expenses
	"OSHP": true, // shipping types
	"OPYM": true, // payment methods
	"OSTA": true, // sales tax codes
	"ODLN": true, // deliveries
	"DLN1": true, // delivery lines
	"OITM": true, // items
	"ITM1": true, // item prices
	"OITW": true, // item warehouse stock
}

var allowedOps = map[string]bool{
	"=": true, "<>": true, "!=": true,
	"<": true, "<=": true, ">": true, ">=": true,
	"LIKE": true,
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// BuildSelect constructs a parameterized SELECT statement. Identifiers (table,
// columns, operators) are validated against allow-lists and interpolated;
// values are always bound as named parameters.
func BuildSelect(table string, columns []string, limit int, filters []Filter) (string, []any, error) {
	if !allowedTables[table] {
		return "", nil, fmt.Errorf("%w: %q", ErrBadTable, table)
	}

	cols := "*"
	if len(columns) > 0 {
		for _, col := range columns {
			if !identRe.MatchString(col) {
				return "", nil, fmt.Errorf("%w: column %q", ErrBadIdentifier, col)
			}
		}
		cols = strings.Join(columns, ", ")
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	if limit > 0 {
		fmt.Fprintf(&b, "TOP (%d) ", limit)
	}
	b.WriteString(cols)
	b.WriteString(" FROM dbo.")
	b.WriteString(table)

	args := make([]any, 0, len(filters))
	for i, f := range filters {
		if !identRe.MatchString(f.Col) {
			return "", nil, fmt.Errorf("%w: filter column %q", ErrBadIdentifier, f.Col)
		}
		op := f.Op
		if op == "" {
			op = "="
		}
		if !allowedOps[strings.ToUpper(op)] {
			return "", nil, fmt.Errorf("%w: %q", ErrBadOperator, f.Op)
		}
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		name := fmt.Sprintf("p%d", i)
		fmt.Fprintf(&b, "%s %s @%s", f.Col, op, name)
		args = append(args, sql.Named(name, f.Value))
	}

	return b.String(), args, nil
}

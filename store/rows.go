package store

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"
)

const timeLayout = "2006-01-02 15:04:05"

// Row is one normalized result row keyed by column name.
type Row map[string]any

// normalizeRows converts raw driver values into transport-friendly ones:
// NULL becomes "", date-times become "2006-01-02 15:04:05" strings, byte
// slices (the driver's DECIMAL/NUMERIC and text representation) become
// strings, everything else passes through.
func normalizeRows(rows *sql.Rows) ([]Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var out []Row
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(Row, len(cols))
		for i, col := range cols {
			row[col] = normalizeValue(vals[i])
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case nil:
		return ""
	case time.Time:
		return t.Format(timeLayout)
	case []byte:
		return string(t)
	default:
		return v
	}
}

// String returns the row value as a string, or "" when absent.
func (r Row) String(col string) string {
	switch t := r[col].(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

// Int returns the row value as an int where the column holds a numeric value
// in any of the driver's representations.
func (r Row) Int(col string) (int, bool) {
	switch t := r[col].(type) {
	case int64:
		return int(t), true
	case int:
		return t, true
	case float64:
		return int(t), true
	case string:
		n, err := strconv.Atoi(t)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

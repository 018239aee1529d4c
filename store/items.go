package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Price list 2 is the sales price list in the target installation.
const salesPriceList = 2

var defaultItemColumns = []string{
	"ItemCode", "ItemName", "ItmsGrpCod", "UgpEntry",
	"U_MARCA", "U_DIVISION", "AvgPrice", "CreateDate", "UpdateDate",
}

var defaultPriceColumns = []string{
	"ItemCode", "Price", "Currency", "Ovrwritten", "Factor",
}

// Items retrieves item (product) rows from OITM. With warehouse set, only
// items stocked in that warehouse are returned; with code set, the single
// item with that code.
func (c *Conn) Items(ctx context.Context, limit int, columns []string, warehouse, code string) ([]Row, error) {
	cols, err := columnList(columns, defaultItemColumns)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 1
	}

	var query string
	var args []any
	switch {
	case warehouse != "":
		query = fmt.Sprintf(`SELECT TOP (%d) %s FROM dbo.OITM
			WHERE ItemCode IN (SELECT ItemCode FROM dbo.OITW WHERE WhsCode = @whs)`, limit, cols)
		args = append(args, sql.Named("whs", warehouse))
	case code != "":
		query = fmt.Sprintf(`SELECT %s FROM dbo.OITM WHERE ItemCode = @code`, cols)
		args = append(args, sql.Named("code", code))
	default:
		query = fmt.Sprintf(`SELECT TOP (%d) %s FROM dbo.OITM`, limit, cols)
	}

	rows, err := c.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query OITM: %w", err)
	}
	defer rows.Close()
	return normalizeRows(rows)
}

// Prices retrieves sales price list rows from ITM1, filtered the same way as
// Items.
func (c *Conn) Prices(ctx context.Context, limit int, columns []string, warehouse, code string) ([]Row, error) {
	cols, err := columnList(columns, defaultPriceColumns)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 1
	}

	var query string
	args := []any{sql.Named("list", salesPriceList)}
	switch {
	case warehouse != "":
		query = fmt.Sprintf(`SELECT TOP (%d) %s FROM dbo.ITM1
			WHERE PriceList = @list
			AND ItemCode IN (SELECT ItemCode FROM dbo.OITW WHERE WhsCode = @whs)`, limit, cols)
		args = append(args, sql.Named("whs", warehouse))
	case code != "":
		query = fmt.Sprintf(`SELECT %s FROM dbo.ITM1 WHERE PriceList = @list AND ItemCode = @code`, cols)
		args = append(args, sql.Named("code", code))
	default:
		query = fmt.Sprintf(`SELECT TOP (%d) %s FROM dbo.ITM1 WHERE PriceList = @list`, limit, cols)
	}

	rows, err := c.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query ITM1: %w", err)
	}
	defer rows.Close()
	return normalizeRows(rows)
}

func columnList(columns, defaults []string) (string, error) {
	if len(columns) == 0 {
		columns = defaults
	}
	for _, col := range columns {
		if !identRe.MatchString(col) {
			return "", fmt.Errorf("%w: column %q", ErrBadIdentifier, col)
		}
	}
	return strings.Join(columns, ", "), nil
}

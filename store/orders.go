package store

import "context"

// Orders retrieves sales order rows from ORDR.
func (c *Conn) Orders(ctx context.Context, limit int, columns []string, filters []Filter) ([]Row, error) {
	return c.selectRows(ctx, "ORDR", columns, limit, filters)
}

// MainCurrency retrieves the company's main currency from the admin table.
func (c *Conn) MainCurrency(ctx context.Context) (string, error) {
	row, err := c.selectOne(ctx, "OADM", []string{"MainCurncy"}, nil)
	if err != nil {
		return "", err
	}
	return row.String("MainCurncy"), nil
}

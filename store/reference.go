package store

import (
	"context"
	"fmt"
)

// Reference code lookups. These are live round trips on every call; codes are
// deliberately not cached because they can be edited in SAP at any time.

// ExpenseCode resolves an additional-expense code by its name.
func (c *Conn) ExpenseCode(ctx context.Context, name string) (int, error) {
	row, err := c.selectOne(ctx, "OEXD", []string{"ExpnsCode"}, []Filter{{Col: "ExpnsName", Value: name}})
	if err != nil {
		return 0, err
	}
	code, ok := row.Int("ExpnsCode")
	if !ok {
		return 0, fmt.Errorf("expense %q: non-numeric ExpnsCode %v", name, row["ExpnsCode"])
	}
	return code, nil
}

// ExpenseNames lists all additional-expense names.
func (c *Conn) ExpenseNames(ctx context.Context) ([]Row, error) {
	return c.selectRows(ctx, "OEXD", []string{"ExpnsName"}, 0, nil)
}

// TransportCode resolves a shipping type code by its name.
func (c *Conn) TransportCode(ctx context.Context, name string) (int, error) {
	row, err := c.selectOne(ctx, "OSHP", []string{"TrnspCode"}, []Filter{{Col: "TrnspName", Value: name}})
	if err != nil {
		return 0, err
	}
	code, ok := row.Int("TrnspCode")
	if !ok {
		return 0, fmt.Errorf("transport %q: non-numeric TrnspCode %v", name, row["TrnspCode"])
	}
	return code, nil
}

// TransportNames lists all shipping type names.
func (c *Conn) TransportNames(ctx context.Context) ([]Row, error) {
	return c.selectRows(ctx, "OSHP", []string{"TrnspName"}, 0, nil)
}

// PaymentMethods lists all payment method codes.
func (c *Conn) PaymentMethods(ctx context.Context) ([]Row, error) {
	return c.selectRows(ctx, "OPYM", []string{"PayMethCod"}, 0, nil)
}

// TaxCodes lists all sales tax codes with names and rates.
func (c *Conn) TaxCodes(ctx context.Context) ([]Row, error) {
	return c.selectRows(ctx, "OSTA", []string{"Code", "Name", "Rate"}, 0, nil)
}

package store

import "context"

// Contacts retrieves contact person rows under a business partner. Extra
// filters narrow the lookup (first name, last name, email and so on); they
// are applied before the CardCode predicate in the order given.
func (c *Conn) Contacts(ctx context.Context, limit int, columns []string, cardCode string, filters []Filter) ([]Row, error) {
	all := make([]Filter, 0, len(filters)+1)
	all = append(all, filters...)
	all = append(all, Filter{Col: "CardCode", Value: cardCode})
	return c.selectRows(ctx, "OCPR", columns, limit, all)
}

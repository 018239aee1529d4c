package store

import (
	"context"
	"fmt"
)

// Shipments retrieves delivery headers from ODLN with their DLN1 line items
// attached under "items". DocEntry is always projected because it joins the
// header to its lines.
func (c *Conn) Shipments(ctx context.Context, limit int, columns []string, filters []Filter, itemColumns []string) ([]Row, error) {
	if len(columns) > 0 && !containsColumn(columns, "DocEntry") {
		columns = append(append([]string(nil), columns...), "DocEntry")
	}
	shipments, err := c.selectRows(ctx, "ODLN", columns, limit, filters)
	if err != nil {
		return nil, err
	}
	for _, shipment := range shipments {
		docEntry, ok := shipment.Int("DocEntry")
		if !ok {
			return nil, fmt.Errorf("shipment row has no usable DocEntry: %v", shipment["DocEntry"])
		}
		items, err := c.shipmentItems(ctx, docEntry, itemColumns)
		if err != nil {
			return nil, err
		}
		shipment["items"] = items
	}
	return shipments, nil
}

// shipmentItems retrieves the line items of one delivery.
func (c *Conn) shipmentItems(ctx context.Context, docEntry int, columns []string) ([]Row, error) {
	return c.selectRows(ctx, "DLN1", columns, 0, []Filter{{Col: "DocEntry", Value: docEntry}})
}

func containsColumn(columns []string, col string) bool {
	for _, c := range columns {
		if c == col {
			return true
		}
	}
	return false
}

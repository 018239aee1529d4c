package orders

// EventEmitter is the interface the orders package uses to report sync
// outcomes. Emitting must never fail the operation that already committed.
type EventEmitter interface {
	EmitOrderSynced(docEntry int, externalID, cardCode string)
	EmitOrderCancelled(docEntry int, externalID string)
	EmitContactCreated(contactCode int, cardCode string)
}

// NopEmitter drops all events. Used when messaging is disabled.
type NopEmitter struct{}

func (NopEmitter) EmitOrderSynced(int, string, string) {}
func (NopEmitter) EmitOrderCancelled(int, string)      {}
func (NopEmitter) EmitContactCreated(int, string)      {}

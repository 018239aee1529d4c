package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Sync event names.
const (
	EventOrderSynced    = "order.synced"
	EventOrderCancelled = "order.cancelled"
	EventContactCreated = "contact.created"
)

// SyncEvent is the JSON payload published after a successful commit.
type SyncEvent struct {
	EventID     string `json:"event_id"`
	Event       string `json:"event"`
	ExternalID  string `json:"fe_order_id,omitempty"`
	DocEntry    int    `json:"doc_entry,omitempty"`
	ContactCode int    `json:"cntct_code,omitempty"`
	CardCode    string `json:"card_code,omitempty"`
	Timestamp   string `json:"timestamp"`
}

// Reporter publishes sync outcomes to the configured topic. It satisfies the
// orders.EventEmitter interface. Publish failures are logged and dropped: the
// remote commit already happened, so the sync must not fail on them.
type Reporter struct {
	client *Client
	topic  string
	log    *zap.SugaredLogger
}

// NewReporter creates a reporter publishing on the given topic.
func NewReporter(client *Client, topic string, log *zap.SugaredLogger) *Reporter {
	return &Reporter{client: client, topic: topic, log: log}
}

func (r *Reporter) EmitOrderSynced(docEntry int, externalID, cardCode string) {
	r.publish(SyncEvent{
		Event:      EventOrderSynced,
		ExternalID: externalID,
		DocEntry:   docEntry,
		CardCode:   cardCode,
	})
}

func (r *Reporter) EmitOrderCancelled(docEntry int, externalID string) {
	r.publish(SyncEvent{
		Event:      EventOrderCancelled,
		ExternalID: externalID,
		DocEntry:   docEntry,
	})
}

func (r *Reporter) EmitContactCreated(contactCode int, cardCode string) {
	r.publish(SyncEvent{
		Event:       EventContactCreated,
		ContactCode: contactCode,
		CardCode:    cardCode,
	})
}

func (r *Reporter) publish(evt SyncEvent) {
	evt.EventID = uuid.New().String()
	evt.Timestamp = time.Now().UTC().Format(time.RFC3339)
	payload, err := json.Marshal(evt)
	if err != nil {
		r.log.Errorw("marshal sync event", "event", evt.Event, "error", err)
		return
	}
	if err := r.client.Publish(r.topic, payload); err != nil {
		r.log.Warnw("publish sync event", "event", evt.Event, "topic", r.topic, "error", err)
	}
}

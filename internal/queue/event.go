// Package queue defines message payloads exchanged over the message broker.
package queue

// PurchaseFinishedEvent is published when a shopping run is finalized.  It
// carries enough information for downstream consumers to log, notify or
// feed household spending analytics without querying the primary database.
type PurchaseFinishedEvent struct {
	UserID           uint64   `json:"user_id"`
	ItemIDs          []uint64 `json:"item_ids"`
	ItemNames        []string `json:"items"`
	ItemCount        int      `json:"item_count"`
	TotalPriceCents  *int64   `json:"total_price_cents,omitempty"`
	DeliveryForecast string   `json:"delivery_forecast,omitempty"`
	FinishedAt       string   `json:"finished_at"`
}

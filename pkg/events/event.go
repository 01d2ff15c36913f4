package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "PLAN_GENERATED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the common implementation used by event constructors.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewPlanGenerated is emitted after a vendor matching run completes,
// carrying the per-category result counts.
func NewPlanGenerated(location string, categories int, vendorCounts map[string]int) Event {
	counts := make(map[string]interface{}, len(vendorCounts))
	for category, n := range vendorCounts {
		counts[category] = n
	}
	return BaseEvent{
		Type: "PLAN_GENERATED",
		Data: map[string]interface{}{
			"location":      location,
			"categories":    categories,
			"vendor_counts": counts,
		},
		OccurredAt: time.Now(),
	}
}

package event

import (
	"time"

	"github.com/viant/approvio/model"
)

// Standard lifecycle topics published by the engine.
const (
	TopicRequestCreated  = "request.created"
	TopicRequestUpdated  = "request.updated"
	TopicRequestExpired  = "request.expired"
	TopicDecisionCreated = "decision.created"
)

// Event is the envelope published on the engine's event queue whenever an
// instance changes state. Consumers must treat delivery as best effort;
// the store remains the source of truth.
type Event struct {
	Topic      string                 `json:"topic"`
	InstanceID string                 `json:"instanceId"`
	State      model.State            `json:"state"`
	CreatedAt  time.Time              `json:"createdAt"`
	Data       map[string]interface{} `json:"data,omitempty"`
}

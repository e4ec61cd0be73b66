package notifier

import "context"

// Notification carries everything a human decision channel needs to surface
// an approval request: the instance identifier, the resumption token and the
// caller payload for context. The token is the credential; whoever holds it
// can resume the instance exactly once.
type Notification struct {
	InstanceID string                 `json:"requestId"`
	Token      string                 `json:"taskToken"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
}

// Service delivers a suspension notification through some out-of-band
// channel (log line, queue, chat webhook). Delivery failure is a workflow
// failure: a token nobody received is unreachable and the engine proactively
// invalidates it.
type Service interface {
	Notify(ctx context.Context, notification *Notification) error
}

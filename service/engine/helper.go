package engine

import (
	"context"

	"github.com/viant/approvio/model"
	"github.com/viant/approvio/service/messaging"
	"github.com/viant/approvio/service/notifier"
)

// DecisionFunc decides what to do with a delivered notification.
// Return (VerdictApproved, "") to approve, or (VerdictRejected, "reason")
// to reject.
type DecisionFunc func(n *notifier.Notification) (verdict model.Verdict, reason string)

// AutoDecider starts a goroutine that consumes suspension notifications
// from the queue and applies fn to each one, resuming the instance with the
// carried token. It returns stop(); call it (or cancel ctx) to exit. It is
// intended for tests and demos standing in for a human decision maker.
func AutoDecider(ctx context.Context, svc *Service,
	queue messaging.Queue[notifier.Notification], fn DecisionFunc) (stop func()) {

	ctx, cancel := context.WithCancel(ctx)
	go func() {
		for {
			message, err := queue.Consume(ctx)
			if err != nil {
				return
			}
			notification := message.T()
			verdict, reason := fn(notification)
			if _, err = svc.Decide(ctx, notification.Token, verdict, reason); err != nil {
				_ = message.Nack(err)
				continue
			}
			_ = message.Ack()
		}
	}()
	return cancel
}

// AutoApprove approves every delivered notification.
func AutoApprove(ctx context.Context, svc *Service,
	queue messaging.Queue[notifier.Notification]) func() {
	return AutoDecider(ctx, svc, queue,
		func(*notifier.Notification) (model.Verdict, string) { return model.VerdictApproved, "" })
}

// AutoReject rejects every delivered notification with the given reason.
func AutoReject(ctx context.Context, svc *Service,
	queue messaging.Queue[notifier.Notification], reason string) func() {
	return AutoDecider(ctx, svc, queue,
		func(*notifier.Notification) (model.Verdict, string) { return model.VerdictRejected, reason })
}

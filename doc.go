// Package approvio provides a self-contained approval workflow
// orchestrator: a caller submits a request, the workflow suspends pending
// an out-of-band decision and a later decision message resumes and
// completes it.
//
// The engine executes a fixed three-stage lifecycle (submit, suspend for
// external decision, complete) with pluggable service layers:
//
//   - engine   – lifecycle state machine, the only state mutator
//   - token    – single-use, unguessable resumption credentials
//   - dao      – instance persistence (memory or afs-backed filesystem)
//   - notifier – decision channel delivery (log, queue, webhook)
//   - server   – HTTP submission, decision and status endpoints
//
// Approvio is designed to be embedded. Hosts typically interact through
// the high-level Service façade exposed by the root package:
//
//	svc, _ := approvio.New()
//	inst, _ := svc.Engine().Submit(ctx, map[string]interface{}{
//		"name": "A", "course": "B", "cost": 100,
//	})
//	_, _ = svc.Engine().Decide(ctx, token, model.VerdictApproved, "")
//
// or over HTTP via svc.Start(ctx). See the sub-packages for details.
package approvio

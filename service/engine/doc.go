// Package engine implements the approval lifecycle state machine: submit,
// suspend pending an out-of-band decision, resume and complete. It owns
// every state mutation; racing resume attempts are arbitrated by the token
// service's single-consumption guarantee and timeouts are enforced against
// stored timestamps so the engine tolerates being offline between checks.
package engine

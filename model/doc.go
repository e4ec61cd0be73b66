// Package model contains the in-memory representation of approval
// instances: the lifecycle state machine, decision verdicts and the caller
// payload contract. Stores persist these structures verbatim; all state
// mutation funnels through the engine.
package model

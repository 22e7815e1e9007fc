package joycon

import "errors"

// Protocol error taxonomy. Framing errors live in the frame package and are
// never escalated past the receive path; these are the ones callers see.
var (
	// ErrCommandTimeout: a synchronous exchange got no matching reply
	// within the deadline, after the single retry.
	ErrCommandTimeout = errors.New("joycon: subcommand timed out")

	// ErrHandshakeFailed: a bring-up step failed after retry. The state
	// machine reverts to low-baud detection; the transport stays open.
	ErrHandshakeFailed = errors.New("joycon: handshake failed")

	// ErrQueueFull: the bounded output queue rejected a frame. Droppable
	// writes (LED refreshes) swallow this; critical paths surface it.
	ErrQueueFull = errors.New("joycon: output queue full")

	// ErrDetached: the controller disconnected mid-operation.
	ErrDetached = errors.New("joycon: controller detached")
)

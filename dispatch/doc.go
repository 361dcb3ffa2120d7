// Package dispatch implements the caller-facing half of the submit/wait
// rendezvous. A Dispatcher hands encoded worker invocations to a task
// queue, confirms via a receipt channel that a worker actually picked
// the job up, and later decodes the worker's completion payload back
// into typed job state.
//
// Submit blocks only until start confirmation; Wait blocks until the
// completion signal arrives or the timeout expires. Wait never returns
// an error: callers inspect the returned status.
package dispatch

// Package lockstep gives callers a synchronous-looking "submit a command,
// then wait for it to finish" API while the command actually executes
// asynchronously on a worker owned by an external task-queue engine.
//
// Lockstep is designed as a library, not a service. Import it, plug in a
// task queue and a signal registry (in-memory, Redis, and Postgres
// implementations ship in subpackages), and drive jobs through a
// Dispatcher.
//
// # Quick Start
//
//	signals := sigmem.New()
//	engine := taskqmem.New(worker.Entrypoint(runner, signals))
//	d := dispatch.New(
//	    dispatch.WithQueue(engine),
//	    dispatch.WithSignals(signals),
//	)
//
//	j, err := job.New("nightly-load", "refresh_rollups")
//	if err := d.Submit(ctx, j); err != nil { ... }   // returns once the worker confirms start
//	status := d.Wait(ctx, j)                          // blocks until completion or timeout
//
// # Architecture
//
// The submit/wait rendezvous runs over named broadcast channels with
// register-before-signal, newest-unconsumed-signal-wins delivery. Submit
// registers the job's receipt and completion channels before enqueueing,
// so the worker's signals can never be lost; the worker brackets command
// execution with a receipt signal and a completion signal carrying a
// packed status+message payload.
package lockstep

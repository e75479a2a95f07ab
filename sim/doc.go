// Package sim provides the discrete-event simulation engine behind the
// waresim warehouse digital twin.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - order.go: Order lifecycle states (RECEIVED → ... → COMPLETED) and stage stamps
//   - eventqueue.go: the deterministic event heap that drives simulated time
//   - simulator.go: the event loop, run setup, and the horizon cutoff
//
// Around the kernel:
//   - lifecycle.go: the order lifecycle machine, written as callback continuations
//   - pool.go: FIFO worker and forklift pools with busy-time accounting
//   - generator.go: the Poisson arrival stream and synthetic order composition
//   - recorder.go: the bounded ring buffer of warehouse events
//   - metrics.go: per-run sample collection and the end-of-run snapshot
//
// The twin loop (comparing the simulation against a system of record) lives in:
//   - erp.go: the ERPSystem port, attach, and the periodic sync tick
//   - drift.go: inventory divergence scoring
//   - calibrate.go: timing-parameter estimation from recorded events
//   - scenario.go: what-if runs and sensitivity sweeps over a fixed baseline
//
// A seeded in-memory ERP for demos and tests lives in sim/erpmock/; an
// adapter for live Odoo instances lives in sim/erpodoo/.
//
// # Determinism
//
// A run is a pure function of its Config (seed included) and starting
// inventory. Three mechanisms carry that guarantee: the partitioned RNG
// (rng.go) isolates arrival draws from service-time draws, the event heap
// breaks timestamp ties by kind and then by per-simulator sequence, and all
// map iteration that feeds randomness or events goes through sorted keys.
// Anything wall-clock (Event.Wall, ScenarioResult.RunID) is excluded from
// the guarantee.
package sim

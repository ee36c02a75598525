// Package testctx accumulates the steps of one test.
//
// A Context moves from Fresh to Accumulating as props and steps are
// added, to Finalized when its test starts running, and back to Fresh on
// Reset. Finalize hands out a Plan, an immutable copy the runner executes
// in recorded order: every act step, then every assertion.
package testctx

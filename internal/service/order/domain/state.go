// internal/service/order/domain/state.go
package domain

// StageState is the lifecycle of a pipeline stage. A stage moves
// PENDING -> RUNNING -> DONE and never back.
type StageState string

const (
	StagePending StageState = "PENDING" // constructed, not started
	StageRunning StageState = "RUNNING" // polling or working on an order
	StageDone    StageState = "DONE"    // loop exited
)

// StopReason records why a stage reached DONE.
type StopReason string

const (
	StopExhausted   StopReason = "exhausted"    // generator produced every order
	StopClosed      StopReason = "closed"       // input closed and drained
	StopIdleTimeout StopReason = "idle_timeout" // no input within the idle timeout
	StopInterrupted StopReason = "interrupted"  // context cancelled
)

// StageSnapshot is the externally observable status of a stage.
type StageSnapshot struct {
	Name        string
	State       StageState
	Reason      StopReason
	Interrupted bool
	Handled     int
}

// internal/service/order/state.go
package order

import (
	"sync"

	"orderpipe/internal/service/order/domain"
)

// stageStatus is the execution record of one stage. The stage writes it; the
// orchestrator reads it after the join.
type stageStatus struct {
	mu          sync.Mutex
	name        string
	state       domain.StageState
	reason      domain.StopReason
	interrupted bool
	handled     int
}

func newStageStatus(name string) *stageStatus {
	return &stageStatus{name: name, state: domain.StagePending}
}

// start moves PENDING -> RUNNING. It reports false if the stage already ran.
func (s *stageStatus) start() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != domain.StagePending {
		return false
	}
	s.state = domain.StageRunning
	return true
}

func (s *stageStatus) handledOne() {
	s.mu.Lock()
	s.handled++
	s.mu.Unlock()
}

// finish moves RUNNING -> DONE. Only the first call has an effect.
func (s *stageStatus) finish(reason domain.StopReason) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != domain.StageRunning {
		return
	}
	s.state = domain.StageDone
	s.reason = reason
	s.interrupted = reason == domain.StopInterrupted
}

func (s *stageStatus) snapshot() domain.StageSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return domain.StageSnapshot{
		Name:        s.name,
		State:       s.state,
		Reason:      s.reason,
		Interrupted: s.interrupted,
		Handled:     s.handled,
	}
}

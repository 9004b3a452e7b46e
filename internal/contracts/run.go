package contracts

// RunState is a state in the rebalance coordinator's state machine.
// SSOT: all logs and run records use these constants.
//
// Quarterly path:
//
//	IDLE → SCORING → SELECTING → WEIGHTING → COMMITTED
//
// Monthly emergency path:
//
//	IDLE → EMERGENCY_CHECK → (NO_ACTION | EMERGENCY_REBALANCE) → COMMITTED
//
// NO_ACTION returns to IDLE without touching committed state.
type RunState string

const (
	StateIdle               RunState = "IDLE"
	StateScoring            RunState = "SCORING"
	StateSelecting          RunState = "SELECTING"
	StateWeighting          RunState = "WEIGHTING"
	StateCommitted          RunState = "COMMITTED"
	StateEmergencyCheck     RunState = "EMERGENCY_CHECK"
	StateNoAction           RunState = "NO_ACTION"
	StateEmergencyRebalance RunState = "EMERGENCY_REBALANCE"
)

var runTransitions = map[RunState][]RunState{
	StateIdle:               {StateScoring, StateEmergencyCheck},
	StateScoring:            {StateSelecting},
	StateSelecting:          {StateWeighting},
	StateWeighting:          {StateCommitted},
	StateEmergencyCheck:     {StateNoAction, StateEmergencyRebalance},
	StateEmergencyRebalance: {StateCommitted},
	StateNoAction:           {StateIdle},
	StateCommitted:          {StateIdle},
}

// CanTransition reports whether moving from s to next is a legal step.
func (s RunState) CanTransition(next RunState) bool {
	for _, allowed := range runTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// String returns the state name.
func (s RunState) String() string {
	return string(s)
}

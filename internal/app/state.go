package app

// State is the orchestrator's position in an update cycle.
type State int

// Update cycle states.
const (
	StateIdle State = iota
	StateChecking
	StateNoUpdate
	StateUpdateAvailable
	StateDownloading
	StateInstalling
)

var stateNames = map[State]string{
	StateIdle:            "idle",
	StateChecking:        "checking",
	StateNoUpdate:        "no_update",
	StateUpdateAvailable: "update_available",
	StateDownloading:     "downloading",
	StateInstalling:      "installing",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Outcome is how an update cycle ended.
type Outcome string

// Cycle outcomes.
const (
	// OutcomeNoUpdate means the installed version is current.
	OutcomeNoUpdate Outcome = "no_update"
	// OutcomeAvailable means a newer version exists; check-only mode stops here.
	OutcomeAvailable Outcome = "available"
	// OutcomeDeclined means the user canceled the update prompt.
	OutcomeDeclined Outcome = "declined"
	// OutcomeLaunched means the installer was started.
	OutcomeLaunched Outcome = "launched"
	// OutcomeRejected means the newer version falls outside the allowed range.
	OutcomeRejected Outcome = "rejected"
	// OutcomeFailed means a stage failed; Result.Stage names it.
	OutcomeFailed Outcome = "failed"
	// OutcomeBusy means another cycle was already running.
	OutcomeBusy Outcome = "busy"
)

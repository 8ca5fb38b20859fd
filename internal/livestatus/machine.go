package livestatus

type State int

const (
	StateOffline State = iota
	StateLive
)

type Transition int

const (
	TransitionNone Transition = iota
	TransitionWentLive
	TransitionWentOffline
)

// Machine is the explicit two-state view of the stream. Each transition
// fires at most once per actual state change, whatever the polling rate.
type Machine struct {
	state State
}

func NewMachine(live bool) *Machine {
	m := &Machine{}
	if live {
		m.state = StateLive
	}
	return m
}

func (m *Machine) State() State { return m.state }

// Observe feeds one poll result into the machine and reports the resulting
// transition, if any.
func (m *Machine) Observe(live bool) Transition {
	switch {
	case live && m.state == StateOffline:
		m.state = StateLive
		return TransitionWentLive
	case !live && m.state == StateLive:
		m.state = StateOffline
		return TransitionWentOffline
	default:
		return TransitionNone
	}
}

package shiftlight

// VisualState is what the LED strip should be showing right now. It is
// a pure function of the current telemetry and link status, recomputed
// every tick; only the animation phase carries history.
type VisualState int

const (
	StateOff VisualState = iota
	StateIdleNeutral
	StateEfficiency
	StateStallDanger
	StateNormalDriving
	StateShiftDanger
	StateRevLimit
	StateLinkError
)

func (s VisualState) String() string {
	switch s {
	case StateOff:
		return "off"
	case StateIdleNeutral:
		return "idle-neutral"
	case StateEfficiency:
		return "efficiency"
	case StateStallDanger:
		return "stall-danger"
	case StateNormalDriving:
		return "normal-driving"
	case StateShiftDanger:
		return "shift-danger"
	case StateRevLimit:
		return "rev-limit"
	case StateLinkError:
		return "link-error"
	}
	return "unknown"
}

// RPM band boundaries, inclusive.
const (
	stallMin      = 750
	efficiencyMin = 2000
	normalMin     = 2501
	shiftMin      = 4501
	revLimitMin   = 7200
)

// ClassifyVisual picks exactly one visual state for the current
// telemetry. First match wins, highest priority first.
func ClassifyVisual(t *Telemetry, linkError bool) VisualState {
	switch {
	case linkError:
		return StateLinkError
	case t.Stationary():
		return StateIdleNeutral
	case t.RPM >= revLimitMin:
		return StateRevLimit
	case t.RPM >= shiftMin:
		return StateShiftDanger
	case t.RPM >= normalMin:
		return StateNormalDriving
	case t.RPM >= efficiencyMin:
		return StateEfficiency
	case t.RPM >= stallMin:
		return StateStallDanger
	}
	return StateOff
}

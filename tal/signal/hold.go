package signal

import "fmt"

type Hold int

const (
	HoldNone Hold = iota
	HoldStationStop
	HoldManualLock
	HoldManualPass
	HoldManualApproach
)

var holdNames = []string{
	HoldNone:           "none",
	HoldStationStop:    "station-stop",
	HoldManualLock:     "manual-lock",
	HoldManualPass:     "manual-pass",
	HoldManualApproach: "manual-approach",
}

func (h Hold) String() string {
	if h < 0 || int(h) >= len(holdNames) {
		panic(fmt.Sprintf("unknown Hold %d", int(h)))
	}
	return holdNames[h]
}

func (h Hold) MarshalText() ([]byte, error) { return []byte(h.String()), nil }

func (h *Hold) UnmarshalText(text []byte) error {
	for k, name := range holdNames {
		if name == string(text) {
			*h = Hold(k)
			return nil
		}
	}
	return fmt.Errorf("unknown hold %q", text)
}

type Permission int

const (
	PermissionGranted Permission = iota
	PermissionRequested
	PermissionDenied
)

var permissionNames = []string{
	PermissionGranted:   "granted",
	PermissionRequested: "requested",
	PermissionDenied:    "denied",
}

func (p Permission) String() string {
	if p < 0 || int(p) >= len(permissionNames) {
		panic(fmt.Sprintf("unknown Permission %d", int(p)))
	}
	return permissionNames[p]
}

func (p Permission) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Permission) UnmarshalText(text []byte) error {
	for k, name := range permissionNames {
		if name == string(text) {
			*p = Permission(k)
			return nil
		}
	}
	return fmt.Errorf("unknown permission %q", text)
}

func (o *Object) normalHeads(fn func(h *Head)) {
	for _, h := range o.Heads {
		if h.Function == FunctionNormal {
			fn(h)
		}
	}
}

// RequestHold locks the signal at its most restrictive aspect.
func (o *Object) RequestHold() {
	o.Hold = HoldManualLock
	o.normalHeads((*Head).SetMostRestrictiveAspect)
}

// RequestApproach holds the signal at an approach aspect.
func (o *Object) RequestApproach() {
	o.Hold = HoldManualApproach
	o.normalHeads((*Head).SetApproachAspect)
}

// RequestPass clears the signal regardless of the block beyond it.
func (o *Object) RequestPass() {
	o.Hold = HoldManualPass
	o.normalHeads((*Head).SetLeastRestrictiveAspect)
}

// SetStationHold holds the signal at danger for a station stop.
func (o *Object) SetStationHold() {
	o.Hold = HoldStationStop
	o.normalHeads((*Head).SetMostRestrictiveAspect)
}

// ClearHold returns the signal to normal working.
func (o *Object) ClearHold() {
	o.Hold = HoldNone
}

// SetHold applies h through the matching request.
func (o *Object) SetHold(h Hold) {
	switch h {
	case HoldNone:
		o.ClearHold()
	case HoldStationStop:
		o.SetStationHold()
	case HoldManualLock:
		o.RequestHold()
	case HoldManualPass:
		o.RequestPass()
	case HoldManualApproach:
		o.RequestApproach()
	default:
		panic("unreachable")
	}
}

func (o *Object) RequestPermission() { o.Permission = PermissionRequested }

func (o *Object) GrantPermission() { o.Permission = PermissionGranted }

func (o *Object) DenyPermission() { o.Permission = PermissionDenied }

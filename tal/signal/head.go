package signal

import "go.uber.org/zap"

type Head struct {
	Function  Function
	Aspect    Aspect
	DrawState int
	// Type is nil if the head's type could not be resolved.
	Type     *Type
	TypeName string
	Speeds   map[Aspect]SpeedInfo
	// TrackItem is the id of the track item the head was created from.
	TrackItem   int
	BackFacing  bool
	Description string
	// Owner is the index of the object the head belongs to.
	Owner int
}

func NewHead(owner, item int, typeName string) *Head {
	return &Head{
		Function:  FunctionUnknown,
		Aspect:    AspectStop,
		DrawState: -1,
		TypeName:  typeName,
		Speeds:    map[Aspect]SpeedInfo{},
		TrackItem: item,
		Owner:     owner,
	}
}

// NewSpeedHead returns the head of a speed post showing the limit speed.
func NewSpeedHead(owner, item int, speed SpeedInfo) *Head {
	h := NewHead(owner, item, "")
	h.Function = FunctionSpeed
	h.Aspect = AspectClear2
	h.Speeds[AspectClear2] = speed
	return h
}

// SetType binds the type called name. An unknown name leaves the head with FunctionUnknown.
func (h *Head) SetType(types *Types, name string) bool {
	t, ok := types.Lookup(name)
	if !ok {
		zap.S().Warnf("signal %d item %d: unknown signal type %q", h.Owner, h.TrackItem, name)
		h.Function = FunctionUnknown
		h.Type = nil
		return false
	}
	h.Type = t
	h.TypeName = name
	h.Function = t.Function
	h.Speeds = map[Aspect]SpeedInfo{}
	for _, d := range t.Aspects {
		if d.Speed != nil {
			h.Speeds[d.Aspect] = *d.Speed
		}
	}
	return true
}

func (h *Head) setAspect(a Aspect) {
	h.Aspect = a
	if h.Type == nil {
		h.DrawState = -1
		return
	}
	h.DrawState = h.Type.DrawState(a)
}

func (h *Head) SetMostRestrictiveAspect() {
	if h.Type == nil {
		h.setAspect(AspectStop)
		return
	}
	h.setAspect(h.Type.MostRestrictive())
}

func (h *Head) SetLeastRestrictiveAspect() {
	if h.Type == nil {
		h.setAspect(AspectClear2)
		return
	}
	h.setAspect(h.Type.LeastRestrictive())
}

// SetApproachAspect shows approach-1, or failing that the most restrictive aspect above stop.
func (h *Head) SetApproachAspect() {
	if h.Type == nil {
		h.setAspect(AspectStop)
		return
	}
	if h.Type.Declares(AspectApproach1) {
		h.setAspect(AspectApproach1)
		return
	}
	found := false
	var best Aspect
	for _, d := range h.Type.Aspects {
		if d.Aspect == AspectUnknown || d.Aspect == AspectStop {
			continue
		}
		if !found || d.Aspect.MoreRestrictive(best) {
			best, found = d.Aspect, true
		}
	}
	if !found {
		best = AspectStop
	}
	h.setAspect(best)
}

// Speed returns the limit shown with aspect a, or NoSpeed.
func (h *Head) Speed(a Aspect) SpeedInfo {
	s, ok := h.Speeds[a]
	if !ok {
		return NoSpeed
	}
	return s
}

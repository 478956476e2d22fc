package weapon

// Arsenal is the ordered weapon inventory of one wielder with a current
// selection.
//
// Invariant: when non-empty, 0 <= current < len(weapons).
type Arsenal struct {
	weapons []*Weapon
	current int
}

// NewArsenal returns an Arsenal holding ws in order with the first selected.
func NewArsenal(ws ...*Weapon) *Arsenal {
	return &Arsenal{weapons: ws}
}

// NewDefaultArsenal returns an Arsenal with one weapon of every known kind,
// each built from the table row overlaid with tunings[kind].
//
// Postcondition: Returns an error if any tuned row fails validation.
func NewDefaultArsenal(tunings map[Kind]Tuning) (*Arsenal, error) {
	ws := make([]*Weapon, 0, len(order))
	for _, k := range order {
		p := table[k].With(tunings[k])
		w, err := NewWithParams(p)
		if err != nil {
			return nil, err
		}
		ws = append(ws, w)
	}
	return NewArsenal(ws...), nil
}

// Current returns the selected weapon, or nil if the arsenal is empty.
func (a *Arsenal) Current() *Weapon {
	if len(a.weapons) == 0 {
		return nil
	}
	return a.weapons[a.current]
}

// Get returns the weapon of kind k.
func (a *Arsenal) Get(k Kind) (*Weapon, bool) {
	for _, w := range a.weapons {
		if w.Kind() == k {
			return w, true
		}
	}
	return nil, false
}

// Select makes the weapon of kind k current.
//
// Postcondition: Returns false and leaves the selection unchanged when k is not held.
func (a *Arsenal) Select(k Kind) bool {
	for i, w := range a.weapons {
		if w.Kind() == k {
			a.current = i
			return true
		}
	}
	return false
}

// Next cycles the selection forward, wrapping around.
func (a *Arsenal) Next() {
	if len(a.weapons) == 0 {
		return
	}
	a.current = (a.current + 1) % len(a.weapons)
}

// All returns the held weapons in order.
func (a *Arsenal) All() []*Weapon {
	out := make([]*Weapon, len(a.weapons))
	copy(out, a.weapons)
	return out
}

// Len returns the number of held weapons.
func (a *Arsenal) Len() int { return len(a.weapons) }

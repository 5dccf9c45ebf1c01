package pitch

import "fmt"

// Formation is the closed set of supported formations. Each supported
// value carries its canonical slot ordering as static data. Formation
// names outside the set map to FormationUnsupported, which triggers the
// documented passthrough fallback in fixed mode.
type Formation int

const (
	FormationUnsupported Formation = iota
	Formation4231
	Formation442
	Formation433
)

// Slot names follow the DFL position codes (TW goalkeeper, LV left back,
// IVL/IVR inner defenders, ...).
var slotOrders = map[Formation][]string{
	Formation4231: {"TW", "LV", "IVL", "IVR", "RV", "DML", "DMR", "OLM", "ZO", "ORM", "STZ"},
	Formation442:  {"TW", "LV", "IVL", "IVR", "RV", "LM", "ZML", "ZMR", "RM", "STL", "STR"},
	Formation433:  {"TW", "LV", "IVL", "IVR", "RV", "DM", "HL", "HR", "LA", "STZ", "RA"},
}

var formationNames = map[string]Formation{
	"4-2-3-1": Formation4231,
	"4-4-2":   Formation442,
	"4-3-3":   Formation433,
}

// ParseFormation maps a lineup string such as "4-2-3-1" to a Formation.
// Unknown names map to FormationUnsupported.
func ParseFormation(name string) Formation {
	return formationNames[name]
}

func (f Formation) String() string {
	switch f {
	case Formation4231:
		return "4-2-3-1"
	case Formation442:
		return "4-4-2"
	case Formation433:
		return "4-3-3"
	case FormationUnsupported:
		return "unsupported"
	}
	return fmt.Sprintf("Formation(%d)", int(f))
}

// Supported reports whether f carries a canonical slot ordering.
func (f Formation) Supported() bool {
	_, ok := slotOrders[f]
	return ok
}

// SlotOrder returns a copy of the canonical slot ordering, or nil for
// FormationUnsupported.
func (f Formation) SlotOrder() []string {
	order, ok := slotOrders[f]
	if !ok {
		return nil
	}
	return append([]string(nil), order...)
}

// Formations lists the supported formations in a fixed order, so grouped
// collections iterate deterministically.
func Formations() []Formation {
	return []Formation{Formation4231, Formation442, Formation433}
}

// SlotAssignment maps slot names to shirt numbers: the primary occupant
// first, then substitutes in chronological entry order.
type SlotAssignment map[string][]int

// Validate checks the assignment against a formation's canonical slot
// ordering: every referenced slot must exist in the ordering, every slot
// must list at least one shirt, and no shirt may occupy two slots.
func (a SlotAssignment) Validate(f Formation) error {
	order := f.SlotOrder()
	if order == nil {
		return fmt.Errorf("%w: formation %s has no canonical slot ordering", ErrConfiguration, f)
	}
	known := make(map[string]bool, len(order))
	for _, slot := range order {
		known[slot] = true
	}
	owner := make(map[int]string)
	for slot, shirts := range a {
		if !known[slot] {
			return fmt.Errorf("%w: slot %q is not in the %s slot ordering", ErrConfiguration, slot, f)
		}
		if len(shirts) == 0 {
			return fmt.Errorf("%w: slot %q lists no shirt numbers", ErrConfiguration, slot)
		}
		for _, shirt := range shirts {
			if prev, dup := owner[shirt]; dup {
				return fmt.Errorf("%w: shirt %d assigned to both %q and %q", ErrConfiguration, shirt, prev, slot)
			}
			owner[shirt] = slot
		}
	}
	return nil
}

package physics

import "github.com/jakecoffman/cp"

// trackContacts merges the solver's touching pairs with a manual overlap scan
// of same-group bodies, then rolls every body's contact sets.
func (w *World) trackContacts() {
	for _, p := range w.touching {
		w.addNative(p.a, p.b)
	}
	for _, b := range w.bodies {
		if !b.body.IsSleeping() {
			continue
		}
		// Sleeping pairs skip the solver but keep their arbiters.
		b.body.EachArbiter(func(arb *cp.Arbiter) {
			if bodyA, bodyB := arb.Bodies(); bodyA != nil && bodyB != nil {
				a, okA := bodyA.UserData.(*Body)
				other, okB := bodyB.UserData.(*Body)
				if okA && okB {
					w.addNative(a, other)
				}
			}
		})
	}

	w.scanFilterGroups()

	for _, b := range w.bodies {
		b.rollContacts()
	}
}

// addNative records a solver pair on each side whose id belongs to an entity.
func (w *World) addNative(a, b *Body) {
	if !a.tracked || !b.tracked {
		return
	}
	if a.id >= 1 {
		a.pending.add(b.id)
	}
	if b.id >= 1 {
		b.pending.add(a.id)
	}
}

// scanFilterGroups tests first fixtures of bodies sharing a negative filter
// group, which the solver never pairs up.
func (w *World) scanFilterGroups() {
	for _, a := range w.bodies {
		if a.filterGroup >= 0 || !a.tracked {
			continue
		}
		for _, b := range w.bodies {
			if !b.tracked || a.id == b.id || b.filterGroup != a.filterGroup {
				continue
			}
			if overlaps(a.fixtures[0], b.fixtures[0]) {
				a.pending.add(b.id)
				b.pending.add(a.id)
			}
		}
	}
}

func overlaps(a, b *cp.Shape) bool {
	if !a.BB().Intersects(b.BB()) {
		return false
	}
	return cp.ShapesCollide(a, b).Count > 0
}

// Package resolver computes the final middleware chain for a procedure and
// maps unit identities to constructed instances.
package resolver

// Resolve merges router level and procedure level unit identities into the
// execution order for one procedure: router units first, then procedure
// units, relative order preserved. A duplicate identity is dropped, not
// reordered; it keeps the position of its first occurrence in the
// router-then-procedure concatenation. Resolution cannot fail; empty inputs
// yield an empty chain and the terminal handler runs directly.
func Resolve(routerUnits, procedureUnits []string) []string {
	total := len(routerUnits) + len(procedureUnits)
	if total == 0 {
		return nil
	}

	seen := make(map[string]struct{}, total)
	out := make([]string, 0, total)

	emit := func(names []string) {
		for _, name := range names {
			if name == "" {
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}

	emit(routerUnits)
	emit(procedureUnits)

	return out
}

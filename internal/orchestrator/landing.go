package orchestrator

import "sort"

// LandingResult records the outcome of landing one subsystem.
type LandingResult struct {
	Name    string
	ID      SubsystemID
	Skipped bool // unknown name or Registry
}

// PlanLanding selects every subsystem currently not Inactive as a
// landing candidate, visited in reverse dependency order. Unlike
// PlanLaunch it does not consult a readiness batch: landing proceeds
// whenever the process is shutting down.
func (e *Executor) PlanLanding() []SubsystemID {
	var plan []SubsystemID
	for _, id := range e.registry.RegistrationOrder() {
		name, _ := e.registry.Name(id)
		if name == RegistrySubsystemName {
			continue
		}
		state, err := e.registry.LookupState(id)
		if err != nil || state == Inactive {
			continue
		}
		plan = append(plan, id)
	}
	return plan
}

// RunLandingCycle lands every subsystem in plan in reverse topological
// order — a subsystem is landed only after every subsystem that depends
// on it is already Inactive. Unknown names and
// "Registry" are skipped without error. land() is treated as
// best-effort: the registry state always ends Inactive regardless of
// the reported outcome.
func (e *Executor) RunLandingCycle(plan []SubsystemID) []LandingResult {
	inPlan := make(map[SubsystemID]bool, len(plan))
	for _, id := range plan {
		inPlan[id] = true
	}

	ordered := e.reverseTopoOrder(plan)
	results := make([]LandingResult, 0, len(ordered))

	for _, id := range ordered {
		name, ok := e.registry.Name(id)
		if !ok || name == RegistrySubsystemName {
			results = append(results, LandingResult{ID: id, Skipped: true})
			continue
		}
		e.landOne(id, name)
		results = append(results, LandingResult{Name: name, ID: id})
	}

	return results
}

func (e *Executor) landOne(id SubsystemID, name string) {
	_ = e.registry.SetState(id, Stopping)

	sub := e.subsystems[name]
	if sub != nil && sub.Land != nil {
		runLandGuarded(sub.Land)
	}

	// land() is best-effort success: the registry lands the subsystem
	// to Inactive regardless of what the land function itself reported,
	// or of an Error state recorded earlier in its life.
	_ = e.registry.ForceLanded(id)
}

func runLandGuarded(land func() bool) {
	defer func() { recover() }()
	land()
}

// reverseTopoOrder returns ids restricted to plan, ordered so that every
// dependent is landed before its prerequisite, tie-broken by reverse
// registration order for determinism.
func (e *Executor) reverseTopoOrder(plan []SubsystemID) []SubsystemID {
	inPlan := make(map[SubsystemID]bool, len(plan))
	for _, id := range plan {
		inPlan[id] = true
	}

	visited := make(map[SubsystemID]bool)
	var order []SubsystemID

	regOrder := e.registry.RegistrationOrder()
	sortedPlan := append([]SubsystemID(nil), plan...)
	sort.Slice(sortedPlan, func(i, j int) bool {
		return indexOf(regOrder, sortedPlan[i]) > indexOf(regOrder, sortedPlan[j])
	})

	var visit func(id SubsystemID)
	visit = func(id SubsystemID) {
		if visited[id] {
			return
		}
		visited[id] = true
		for _, dependent := range e.registry.Dependents(id) {
			if inPlan[dependent] {
				visit(dependent)
			}
		}
		order = append(order, id)
	}

	for _, id := range sortedPlan {
		visit(id)
	}
	return order
}

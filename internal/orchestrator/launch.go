package orchestrator

import "sort"

// PlanLaunch converts a ReadinessBatch into the subset of subsystems to
// admit this cycle. If batch is nil the plan is empty
// and ok is false. Verdicts are visited in batch order; the Registry
// subsystem is always excluded.
func PlanLaunch(batch *ReadinessBatch) (plan []SubsystemID, ok bool) {
	if batch == nil {
		return nil, false
	}
	if !batch.AnyReady {
		return nil, true
	}
	for _, v := range batch.Verdicts {
		if v.Ready && v.Name != RegistrySubsystemName {
			plan = append(plan, v.Subsystem)
		}
	}
	return plan, true
}

// LaunchResult records the outcome of attempting to launch one
// subsystem.
type LaunchResult struct {
	Name    string
	ID      SubsystemID
	Success bool
	Skipped bool // dependency failed to launch this cycle
}

// Executor drives the Launch Executor and Landing
// Planner/Executor against a Registry and a name-indexed set of
// Subsystem plug-ins.
type Executor struct {
	registry   *Registry
	subsystems map[string]*Subsystem
}

// NewExecutor builds an executor bound to registry. subsystems is keyed
// by subsystem name.
func NewExecutor(registry *Registry, subsystems map[string]*Subsystem) *Executor {
	return &Executor{registry: registry, subsystems: subsystems}
}

// RunLaunchCycle launches every admitted subsystem in topological order,
// breaking ties by registration order, skipping any whose dependency
// failed to launch this cycle.
func (e *Executor) RunLaunchCycle(plan []SubsystemID) []LaunchResult {
	admitted := make(map[SubsystemID]bool, len(plan))
	for _, id := range plan {
		admitted[id] = true
	}

	ordered := e.topoOrder(plan)

	failedThisCycle := make(map[SubsystemID]bool)
	results := make([]LaunchResult, 0, len(ordered))

	for _, id := range ordered {
		name, _ := e.registry.Name(id)
		if name == RegistrySubsystemName {
			continue
		}

		if e.dependencyFailedThisCycle(id, failedThisCycle) {
			failedThisCycle[id] = true
			results = append(results, LaunchResult{Name: name, ID: id, Skipped: true})
			continue
		}

		if !e.registry.IsLaunchable(id) {
			// Dependency not yet Running (e.g. not in this batch at all);
			// leave Inactive for re-evaluation next cycle.
			continue
		}

		result := e.launchOne(id, name)
		if !result.Success {
			failedThisCycle[id] = true
		}
		results = append(results, result)
	}

	return results
}

func (e *Executor) dependencyFailedThisCycle(id SubsystemID, failed map[SubsystemID]bool) bool {
	for _, dep := range e.registry.Dependencies(id) {
		if failed[dep] {
			return true
		}
	}
	return false
}

func (e *Executor) launchOne(id SubsystemID, name string) LaunchResult {
	sub := e.subsystems[name]

	_ = e.registry.SetState(id, Starting)

	success := true
	if sub != nil && sub.Launch != nil {
		success = runLaunchGuarded(sub.Launch)
	}

	if success {
		if err := e.registry.SetState(id, Running); err != nil {
			_ = e.registry.SetState(id, Error)
			return LaunchResult{Name: name, ID: id, Success: false}
		}
	} else {
		_ = e.registry.SetState(id, Inactive)
	}

	return LaunchResult{Name: name, ID: id, Success: success}
}

func runLaunchGuarded(launch func() bool) (success bool) {
	defer func() {
		if recover() != nil {
			success = false
		}
	}()
	return launch()
}

// topoOrder returns ids restricted to the plan set, ordered so that
// every dependency precedes its dependents, with registration order as
// the deterministic tie-break. Dependencies outside the plan are not
// included in the output but do not block ordering of in-plan nodes
// (their readiness, or lack thereof, is handled by IsLaunchable).
func (e *Executor) topoOrder(plan []SubsystemID) []SubsystemID {
	inPlan := make(map[SubsystemID]bool, len(plan))
	for _, id := range plan {
		inPlan[id] = true
	}

	visited := make(map[SubsystemID]bool)
	var order []SubsystemID

	regOrder := e.registry.RegistrationOrder()
	sortedPlan := append([]SubsystemID(nil), plan...)
	sort.Slice(sortedPlan, func(i, j int) bool {
		return indexOf(regOrder, sortedPlan[i]) < indexOf(regOrder, sortedPlan[j])
	})

	var visit func(id SubsystemID)
	visit = func(id SubsystemID) {
		if visited[id] {
			return
		}
		visited[id] = true
		for _, dep := range e.registry.Dependencies(id) {
			if inPlan[dep] {
				visit(dep)
			}
		}
		order = append(order, id)
	}

	for _, id := range sortedPlan {
		visit(id)
	}
	return order
}

func indexOf(ids []SubsystemID, target SubsystemID) int {
	for i, id := range ids {
		if id == target {
			return i
		}
	}
	return len(ids)
}

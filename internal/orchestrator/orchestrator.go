package orchestrator

import (
	"fmt"
	"sync"
)

// Orchestrator owns a Registry and the set of registered Subsystem
// plug-ins, and drives launch/land cycles against them. The Registry
// subsystem itself is registered implicitly — it bootstraps the engine
// and is never passed through the executor.
type Orchestrator struct {
	mu         sync.Mutex
	registry   *Registry
	evaluator  *Evaluator
	executor   *Executor
	subsystems map[string]*Subsystem
	order      []string // registration order of plug-ins, for deterministic evaluation
}

// New builds an orchestrator with an empty registry and registers the
// synthetic Registry subsystem (id 0), which has no dependencies and is
// always considered Running.
func New() *Orchestrator {
	registry := NewRegistry()
	o := &Orchestrator{
		registry:   registry,
		subsystems: make(map[string]*Subsystem),
	}
	o.evaluator = NewEvaluator(registry)
	o.executor = NewExecutor(registry, o.subsystems)

	if id, err := registry.Register(RegistrySubsystemName, nil); err == nil {
		_ = registry.SetState(id, Starting)
		_ = registry.SetState(id, Running)
	}

	return o
}

// Registry exposes the underlying subsystem registry for introspection.
func (o *Orchestrator) Registry() *Registry { return o.registry }

// AddSubsystem registers a plug-in's identity and dependency edges with
// the registry and records the plug-in for later launch/land cycles.
// Dependencies must already be registered (including "Registry" if
// declared, which is always present).
func (o *Orchestrator) AddSubsystem(sub *Subsystem) error {
	if sub == nil || sub.Name == "" {
		return fmt.Errorf("%w: subsystem", ErrNullArgument)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if _, err := o.registry.Register(sub.Name, sub.Dependencies); err != nil {
		return err
	}
	o.subsystems[sub.Name] = sub
	o.order = append(o.order, sub.Name)
	return nil
}

// RunLaunchCycle evaluates readiness for every registered subsystem and
// runs one admission + launch pass (C2 through C4 composed). It returns
// the readiness batch and the per-subsystem launch outcomes.
func (o *Orchestrator) RunLaunchCycle() (*ReadinessBatch, []LaunchResult) {
	o.mu.Lock()
	plugins := make([]*Subsystem, 0, len(o.order))
	for _, name := range o.order {
		plugins = append(plugins, o.subsystems[name])
	}
	o.mu.Unlock()

	batch := o.evaluator.Evaluate(plugins)
	plan, ok := PlanLaunch(batch)
	if !ok {
		return batch, nil
	}
	return batch, o.executor.RunLaunchCycle(plan)
}

// RunLandingCycle lands every non-Inactive subsystem in reverse
// dependency order.
func (o *Orchestrator) RunLandingCycle() []LandingResult {
	plan := o.executor.PlanLanding()
	return o.executor.RunLandingCycle(plan)
}

// LandAll is a convenience wrapper used at process shutdown.
func (o *Orchestrator) LandAll() []LandingResult {
	return o.RunLandingCycle()
}

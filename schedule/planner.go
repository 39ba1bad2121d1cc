package schedule

import (
	"errors"
	"fmt"
	"slices"
)

// Planner errors.
var (
	// ErrEmptyName is returned when a unit is added without a name.
	ErrEmptyName = errors.New("schedule: unit name is empty")

	// ErrDuplicateName is returned when two units share a name.
	ErrDuplicateName = errors.New("schedule: duplicate unit name")

	// ErrUnknownDependency is returned when a unit depends on a name that
	// was never added.
	ErrUnknownDependency = errors.New("schedule: unknown dependency")

	// ErrCycle is returned when dependencies form a cycle.
	ErrCycle = errors.New("schedule: dependency cycle")

	// ErrNilSystem is returned when a nil system is added.
	ErrNilSystem = errors.New("schedule: system is nil")
)

// System is one unit of work run once per dispatch against the shared
// world value.
type System[W any] interface {
	Run(w W)
}

// SystemFunc adapts a function to the System interface.
type SystemFunc[W any] func(w W)

// Run calls f(w).
func (f SystemFunc[W]) Run(w W) { f(w) }

// Access declares the named data a unit reads and writes.
// Names are opaque to the scheduler; they only need to agree between units.
type Access struct {
	Reads  []string
	Writes []string
}

// conflicts reports whether a and b cannot run at the same time.
func (a Access) conflicts(b Access) bool {
	for _, w := range a.Writes {
		if slices.Contains(b.Writes, w) || slices.Contains(b.Reads, w) {
			return true
		}
	}
	for _, w := range b.Writes {
		if slices.Contains(a.Reads, w) {
			return true
		}
	}
	return false
}

// Accessor is implemented by systems that declare their own data access.
// Access passed to AddWithAccess takes precedence.
type Accessor interface {
	Access() Access
}

type unit[W any] struct {
	name   string
	sys    System[W]
	deps   []string
	access Access
}

// Planner builds a Dispatcher. Methods return the planner so calls can be
// chained; validation errors are reported by Build.
//
// A Planner is not safe for concurrent use.
type Planner[W any] struct {
	units []unit[W]
	index map[string]int
	err   error
}

// NewPlanner creates an empty planner.
func NewPlanner[W any]() *Planner[W] {
	return &Planner[W]{index: make(map[string]int)}
}

// Add registers sys under name, to run after every unit named in deps.
// If sys implements Accessor its declared access is recorded.
func (p *Planner[W]) Add(sys System[W], name string, deps ...string) *Planner[W] {
	var access Access
	if a, ok := sys.(Accessor); ok {
		access = a.Access()
	}
	return p.add(sys, name, access, deps)
}

// AddWithAccess is like Add with an explicit data access declaration.
func (p *Planner[W]) AddWithAccess(sys System[W], name string, access Access, deps ...string) *Planner[W] {
	return p.add(sys, name, access, deps)
}

func (p *Planner[W]) add(sys System[W], name string, access Access, deps []string) *Planner[W] {
	if p.err != nil {
		return p
	}
	switch {
	case name == "":
		p.err = ErrEmptyName
		return p
	case sys == nil:
		p.err = fmt.Errorf("%w: %q", ErrNilSystem, name)
		return p
	}
	if _, dup := p.index[name]; dup {
		p.err = fmt.Errorf("%w: %q", ErrDuplicateName, name)
		return p
	}
	p.index[name] = len(p.units)
	p.units = append(p.units, unit[W]{
		name:   name,
		sys:    sys,
		deps:   slices.Clone(deps),
		access: access,
	})
	return p
}

// Has reports whether a unit with the given name was added.
func (p *Planner[W]) Has(name string) bool {
	_, ok := p.index[name]
	return ok
}

// Len returns the number of units added so far.
func (p *Planner[W]) Len() int {
	return len(p.units)
}

// Build validates the plan and computes its stages.
func (p *Planner[W]) Build(opts ...BuildOption) (*Dispatcher[W], error) {
	if p.err != nil {
		return nil, p.err
	}
	for _, u := range p.units {
		for _, d := range u.deps {
			if _, ok := p.index[d]; !ok {
				return nil, fmt.Errorf("%w: %q needs %q", ErrUnknownDependency, u.name, d)
			}
		}
	}

	stages, err := p.stages()
	if err != nil {
		return nil, err
	}

	o := defaultBuildOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return newDispatcher(stages, o), nil
}

// stages assigns units to stages in insertion order. A unit joins the
// current stage when all of its dependencies sit in earlier stages and it
// conflicts with nothing already placed in the current stage.
func (p *Planner[W]) stages() ([][]unit[W], error) {
	placed := make([]bool, len(p.units))
	remaining := len(p.units)
	var stages [][]unit[W]

	for remaining > 0 {
		var stage []unit[W]
		var picked []int
		for i, u := range p.units {
			if placed[i] || !p.depsPlaced(u, placed) {
				continue
			}
			if slices.ContainsFunc(stage, func(o unit[W]) bool { return o.access.conflicts(u.access) }) {
				continue
			}
			stage = append(stage, u)
			picked = append(picked, i)
		}
		if len(stage) == 0 {
			return nil, fmt.Errorf("%w among %v", ErrCycle, p.unplacedNames(placed))
		}
		// Mark after the scan so units of this stage never satisfy each
		// other's dependencies.
		for _, i := range picked {
			placed[i] = true
		}
		remaining -= len(stage)
		stages = append(stages, stage)
	}
	return stages, nil
}

func (p *Planner[W]) depsPlaced(u unit[W], placed []bool) bool {
	for _, d := range u.deps {
		if !placed[p.index[d]] {
			return false
		}
	}
	return true
}

func (p *Planner[W]) unplacedNames(placed []bool) []string {
	var names []string
	for i, u := range p.units {
		if !placed[i] {
			names = append(names, u.name)
		}
	}
	return names
}

package configurator

import (
	"github.com/velocraft/velocraft-backend/internal/app/model"
)

// unselected marks a part deliberately left without an option. Only
// non-required parts may carry it in a complete assignment.
const unselected uint = 0

type compatConstraint struct {
	subjectOption uint
	subjectPart   uint
	objectOption  uint
	objectPart    uint
	exclude       bool
}

// Engine is a finite-domain constraint solver over one product: one variable
// per part, domain = that part's in-stock options, and every compatibility
// rule as a directional implication. Committed choices accumulate in the
// engine; hypothesis probes never leave state behind.
//
// The engine is not internally synchronized. A session owns its engine and
// callers must serialize access (one writer per session).
type Engine struct {
	partOrder []uint
	domains   map[uint][]uint
	required  map[uint]bool
	partOf    map[uint]uint
	rules     []compatConstraint
	pinned    map[uint]uint
}

// NewEngine builds a solver from a validated snapshot. Only in-stock options
// enter the domains; an out-of-stock option simply does not exist as far as
// the solver is concerned.
func NewEngine(snap *Snapshot) *Engine {
	e := &Engine{
		partOrder: make([]uint, 0, len(snap.Parts)),
		domains:   make(map[uint][]uint, len(snap.Parts)),
		required:  make(map[uint]bool, len(snap.Parts)),
		partOf:    make(map[uint]uint),
		pinned:    make(map[uint]uint),
	}

	for _, part := range snap.Parts {
		e.partOrder = append(e.partOrder, part.ID)
		e.domains[part.ID] = snap.InStockOptions(part.ID)
		e.required[part.ID] = part.Required
		for _, optionID := range snap.InStockOptions(part.ID) {
			e.partOf[optionID] = part.ID
		}
	}

	for _, rule := range snap.CompatRules {
		subject, sok := snap.Option(rule.SubjectOptionID)
		object, ook := snap.Option(rule.ObjectOptionID)
		if !sok || !ook {
			continue // NewSnapshot already rejected these
		}
		e.rules = append(e.rules, compatConstraint{
			subjectOption: subject.ID,
			subjectPart:   subject.PartID,
			objectOption:  object.ID,
			objectPart:    object.PartID,
			exclude:       rule.Polarity == model.PolarityExclude,
		})
	}
	return e
}

// PartOf returns the part a (known, in-stock) option belongs to.
func (e *Engine) PartOf(optionID uint) (uint, bool) {
	partID, ok := e.partOf[optionID]
	return partID, ok
}

// Pinned returns a copy of the committed part -> option choices.
func (e *Engine) Pinned() map[uint]uint {
	pinned := make(map[uint]uint, len(e.pinned))
	for partID, optionID := range e.pinned {
		pinned[partID] = optionID
	}
	return pinned
}

// Satisfiable reports whether some complete assignment exists that honors
// every domain and compatibility constraint, the committed choices, and the
// extra hypothesis. The hypothesis overlays (and for a shared part replaces)
// the committed choice; it is discarded on every exit path.
func (e *Engine) Satisfiable(hypothesis map[uint]uint) bool {
	fixed := e.Pinned()
	for partID, optionID := range hypothesis {
		fixed[partID] = optionID
	}
	return e.solve(fixed)
}

// AvailableOptions returns the in-stock options of a part that can still be
// chosen without making the configuration unsatisfiable. For a part that
// already carries a committed choice the probe replaces that choice, so the
// part's viable alternatives stay visible for swaps.
func (e *Engine) AvailableOptions(partID uint) []uint {
	available := make([]uint, 0, len(e.domains[partID]))
	for _, optionID := range e.domains[partID] {
		if e.Satisfiable(map[uint]uint{partID: optionID}) {
			available = append(available, optionID)
		}
	}
	return available
}

// AvailableByPart runs AvailableOptions for every part. One feasibility probe
// per candidate option: O(parts x options) worst case, fine at catalog scale,
// and exact by construction (a false positive would let a buyer walk into a
// dead-end configuration).
func (e *Engine) AvailableByPart() map[uint][]uint {
	available := make(map[uint][]uint, len(e.partOrder))
	for _, partID := range e.partOrder {
		available[partID] = e.AvailableOptions(partID)
	}
	return available
}

// Commit permanently narrows the option's part to that option, replacing any
// earlier commit for the same part. On failure the engine is untouched and
// the error names the conflicting pair.
func (e *Engine) Commit(optionID uint) error {
	partID, ok := e.partOf[optionID]
	if !ok {
		return ErrUnknownOption
	}
	if !e.Satisfiable(map[uint]uint{partID: optionID}) {
		return &IncompatibleSelectionError{
			OptionID:      optionID,
			ConflictsWith: e.findConflict(partID, optionID),
		}
	}
	e.pinned[partID] = optionID
	return nil
}

// findConflict looks for a single committed option that clashes pairwise with
// the rejected one. Returns 0 when the infeasibility needs the whole
// committed set.
func (e *Engine) findConflict(partID, optionID uint) uint {
	for _, otherPart := range e.partOrder {
		otherOption, ok := e.pinned[otherPart]
		if !ok || otherPart == partID {
			continue
		}
		if !e.solve(map[uint]uint{partID: optionID, otherPart: otherOption}) {
			return otherOption
		}
	}
	return 0
}

// solve runs a depth-first search for a complete assignment extending the
// fixed choices. Domains hold tens of options at most, so plain backtracking
// with partial-assignment pruning is exact and fast; rule chains (A excludes
// B, B excludes C) fall out of the search rather than being special-cased.
func (e *Engine) solve(fixed map[uint]uint) bool {
	assignment := make(map[uint]uint, len(e.partOrder))
	for partID, optionID := range fixed {
		if optionID != unselected && !e.inDomain(partID, optionID) {
			return false
		}
		assignment[partID] = optionID
	}
	if !e.consistent(assignment) {
		return false
	}
	return e.search(0, assignment)
}

func (e *Engine) search(index int, assignment map[uint]uint) bool {
	if index == len(e.partOrder) {
		return true
	}
	partID := e.partOrder[index]
	if _, done := assignment[partID]; done {
		return e.search(index+1, assignment)
	}

	for _, optionID := range e.domains[partID] {
		assignment[partID] = optionID
		if e.consistent(assignment) && e.search(index+1, assignment) {
			return true
		}
		delete(assignment, partID)
	}
	if !e.required[partID] {
		assignment[partID] = unselected
		if e.consistent(assignment) && e.search(index+1, assignment) {
			return true
		}
		delete(assignment, partID)
	}
	return false
}

// consistent checks every rule whose subject is decided against the partial
// assignment. Rules whose object part is still open stay undecided and are
// re-checked as the search assigns it.
func (e *Engine) consistent(assignment map[uint]uint) bool {
	for _, rule := range e.rules {
		subjectChoice, decided := assignment[rule.subjectPart]
		if !decided || subjectChoice != rule.subjectOption {
			continue
		}
		objectChoice, decided := assignment[rule.objectPart]
		if !decided {
			continue
		}
		if rule.exclude {
			if objectChoice == rule.objectOption {
				return false
			}
		} else if objectChoice != rule.objectOption {
			return false
		}
	}
	// a required part fixed to unselected can never complete
	for partID, optionID := range assignment {
		if optionID == unselected && e.required[partID] {
			return false
		}
	}
	return true
}

func (e *Engine) inDomain(partID, optionID uint) bool {
	for _, candidate := range e.domains[partID] {
		if candidate == optionID {
			return true
		}
	}
	return false
}

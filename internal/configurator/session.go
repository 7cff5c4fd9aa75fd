package configurator

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type State string

const (
	StateEmpty               State = "empty"
	StatePartiallyConfigured State = "partially_configured"
	StateFullyConfigured     State = "fully_configured"
	StateFinalized           State = "finalized"
)

// Result is returned from every session operation so callers never need a
// separate query: the price, the per-part selectable options and the state
// after the operation.
type Result struct {
	TotalPrice       decimal.Decimal `json:"total_price"`
	AvailableOptions map[uint][]uint `json:"available_options"`
	State            State           `json:"state"`
}

// Session drives one in-progress configuration over a shared snapshot. It
// owns the only mutable state (the selection and the engine's committed
// constraints); the snapshot itself is never written.
//
// Sessions are single-writer: the hosting layer must serialize mutations on
// one session, the session does not lock internally.
type Session struct {
	snapshot  *Snapshot
	engine    *Engine
	selection map[uint]uint // part id -> option id
	state     State
}

// NewSession starts an empty session. It fails with ErrProductNotConfigurable
// when no complete assignment exists at all, e.g. a required part whose
// options are all out of stock.
func NewSession(snap *Snapshot) (*Session, error) {
	engine := NewEngine(snap)
	if !engine.Satisfiable(nil) {
		return nil, ErrProductNotConfigurable
	}
	return &Session{
		snapshot:  snap,
		engine:    engine,
		selection: make(map[uint]uint),
		state:     StateEmpty,
	}, nil
}

// AddOption validates and commits one option, replacing any earlier choice
// for the same part. Either everything advances (selection, engine, derived
// price and availability) or the session is exactly as it was.
func (s *Session) AddOption(optionID uint) (Result, error) {
	if s.state == StateFinalized {
		return Result{}, ErrSessionClosed
	}

	option, ok := s.snapshot.Option(optionID)
	if !ok {
		return Result{}, fmt.Errorf("option %d: %w", optionID, ErrUnknownOption)
	}
	if !option.InStock {
		return Result{}, fmt.Errorf("option %d: %w", optionID, ErrOutOfStock)
	}
	if s.selection[option.PartID] == optionID {
		// re-adding the current choice changes nothing
		return s.Current(), nil
	}

	if err := s.engine.Commit(optionID); err != nil {
		return Result{}, err
	}
	s.selection[option.PartID] = optionID
	s.advance()
	return s.Current(), nil
}

// RemoveOption clears the choice for a part. The engine is rebuilt from the
// remaining selection: constraints only ever narrow, so replaying the
// survivors is the simplest correct way to widen again.
func (s *Session) RemoveOption(partID uint) (Result, error) {
	if s.state == StateFinalized {
		return Result{}, ErrSessionClosed
	}
	if _, ok := s.snapshot.Part(partID); !ok {
		return Result{}, fmt.Errorf("part %d: %w", partID, ErrUnknownPart)
	}
	if _, selected := s.selection[partID]; !selected {
		return s.Current(), nil
	}

	delete(s.selection, partID)
	engine := NewEngine(s.snapshot)
	for _, optionID := range s.selection {
		if err := engine.Commit(optionID); err != nil {
			// the remaining selection was feasible before the removal and
			// removal only relaxes constraints
			return Result{}, fmt.Errorf("rebuilding constraints: %w", err)
		}
	}
	s.engine = engine
	s.advance()
	return s.Current(), nil
}

// Finalize closes the session. Only a fully configured session (every
// required part filled) may finalize; afterwards every mutation fails with
// ErrSessionClosed.
func (s *Session) Finalize() (Result, error) {
	if s.state == StateFinalized {
		return Result{}, ErrSessionClosed
	}
	if s.state != StateFullyConfigured {
		return Result{}, ErrNotFullyConfigured
	}
	s.state = StateFinalized
	return s.Current(), nil
}

// Current recomputes the result triple from the session's state. The price
// is a pure function of the selection, so repeated calls are identical.
func (s *Session) Current() Result {
	return Result{
		TotalPrice:       Total(s.snapshot, s.selection),
		AvailableOptions: s.engine.AvailableByPart(),
		State:            s.state,
	}
}

// Selection returns a copy of the current part -> option mapping.
func (s *Session) Selection() map[uint]uint {
	selection := make(map[uint]uint, len(s.selection))
	for partID, optionID := range s.selection {
		selection[partID] = optionID
	}
	return selection
}

// State returns the session's lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Snapshot returns the catalog snapshot the session was started from.
func (s *Session) Snapshot() *Snapshot {
	return s.snapshot
}

func (s *Session) advance() {
	if s.requiredFilled() && len(s.selection) > 0 {
		s.state = StateFullyConfigured
		return
	}
	if len(s.selection) == 0 {
		s.state = StateEmpty
		return
	}
	s.state = StatePartiallyConfigured
}

func (s *Session) requiredFilled() bool {
	for _, part := range s.snapshot.Parts {
		if !part.Required {
			continue
		}
		if _, ok := s.selection[part.ID]; !ok {
			return false
		}
	}
	return true
}

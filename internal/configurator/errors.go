package configurator

import (
	"errors"
	"fmt"
)

var (
	ErrProductNotConfigurable = errors.New("product has no satisfiable configuration")
	ErrUnknownOption          = errors.New("option does not belong to the loaded product")
	ErrUnknownPart            = errors.New("part does not belong to the loaded product")
	ErrOutOfStock             = errors.New("option is out of stock")
	ErrNotFullyConfigured     = errors.New("every required part needs a selection before finalizing")
	ErrSessionClosed          = errors.New("session is finalized and no longer accepts changes")
)

// IncompatibleSelectionError reports a commit that would make the
// configuration unsatisfiable. ConflictsWith names the already-committed
// option the new one clashes with, or 0 when the conflict only arises from
// the committed set as a whole.
type IncompatibleSelectionError struct {
	OptionID      uint
	ConflictsWith uint
}

func (e *IncompatibleSelectionError) Error() string {
	if e.ConflictsWith == 0 {
		return fmt.Sprintf("option %d is incompatible with the current selection", e.OptionID)
	}
	return fmt.Sprintf("option %d is incompatible with selected option %d", e.OptionID, e.ConflictsWith)
}

// InvalidRuleError reports a malformed compatibility or price rule. It is
// raised while building a snapshot, never during a session: a silently
// dropped rule would change pricing or compatibility semantics.
type InvalidRuleError struct {
	RuleID uint
	Kind   string // "compatibility" or "price"
	Reason string
}

func (e *InvalidRuleError) Error() string {
	return fmt.Sprintf("invalid %s rule %d: %s", e.Kind, e.RuleID, e.Reason)
}

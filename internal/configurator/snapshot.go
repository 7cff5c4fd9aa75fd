package configurator

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/velocraft/velocraft-backend/internal/app/model"
)

// Snapshot is a read-only view of one product's catalog: parts, options and
// both rule sets, validated once at load time. A snapshot never changes after
// construction and may be shared between any number of sessions.
type Snapshot struct {
	Product     model.Product
	Parts       []model.Part
	CompatRules []model.CompatibilityRule
	PriceRules  []model.PriceRule

	options map[uint]model.Option
	parts   map[uint]model.Part
	inStock map[uint][]uint // part id -> in-stock option ids, catalog order
}

// NewSnapshot validates the loaded catalog and builds the lookup structures
// the engines work from. Any rule referencing an unknown or foreign entity
// fails the whole load with an InvalidRuleError.
func NewSnapshot(
	product model.Product,
	parts []model.Part,
	options []model.Option,
	compatRules []model.CompatibilityRule,
	priceRules []model.PriceRule,
) (*Snapshot, error) {
	snap := &Snapshot{
		Product:     product,
		Parts:       parts,
		CompatRules: compatRules,
		PriceRules:  priceRules,
		options:     make(map[uint]model.Option, len(options)),
		parts:       make(map[uint]model.Part, len(parts)),
		inStock:     make(map[uint][]uint, len(parts)),
	}

	for _, part := range parts {
		if part.ProductID != product.ID {
			return nil, fmt.Errorf("part %d belongs to product %d, not %d", part.ID, part.ProductID, product.ID)
		}
		snap.parts[part.ID] = part
	}

	for _, option := range options {
		if _, ok := snap.parts[option.PartID]; !ok {
			return nil, fmt.Errorf("option %d references unknown part %d", option.ID, option.PartID)
		}
		if option.Price.IsNegative() {
			return nil, fmt.Errorf("option %d has negative price %s", option.ID, option.Price)
		}
		snap.options[option.ID] = option
	}
	// in-stock domains keep the caller's catalog order
	for _, option := range options {
		if option.InStock {
			snap.inStock[option.PartID] = append(snap.inStock[option.PartID], option.ID)
		}
	}

	if err := snap.validateCompatRules(); err != nil {
		return nil, err
	}
	if err := snap.validatePriceRules(); err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *Snapshot) validateCompatRules() error {
	for _, rule := range s.CompatRules {
		if rule.Polarity != model.PolarityInclude && rule.Polarity != model.PolarityExclude {
			return &InvalidRuleError{RuleID: rule.ID, Kind: "compatibility", Reason: fmt.Sprintf("unknown polarity %q", rule.Polarity)}
		}
		subject, ok := s.options[rule.SubjectOptionID]
		if !ok {
			return &InvalidRuleError{RuleID: rule.ID, Kind: "compatibility", Reason: fmt.Sprintf("subject option %d does not exist", rule.SubjectOptionID)}
		}
		object, ok := s.options[rule.ObjectOptionID]
		if !ok {
			return &InvalidRuleError{RuleID: rule.ID, Kind: "compatibility", Reason: fmt.Sprintf("object option %d does not exist", rule.ObjectOptionID)}
		}
		if rule.SubjectOptionID == rule.ObjectOptionID {
			return &InvalidRuleError{RuleID: rule.ID, Kind: "compatibility", Reason: "subject and object are the same option"}
		}
		if subject.PartID == object.PartID {
			// one option per part makes such a rule unsatisfiable
			return &InvalidRuleError{RuleID: rule.ID, Kind: "compatibility", Reason: "subject and object belong to the same part"}
		}
	}
	return nil
}

func (s *Snapshot) validatePriceRules() error {
	for _, rule := range s.PriceRules {
		if len(rule.Conditions) == 0 {
			return &InvalidRuleError{RuleID: rule.ID, Kind: "price", Reason: "empty condition set"}
		}
		for _, cond := range rule.Conditions {
			if _, ok := s.options[cond.OptionID]; !ok {
				return &InvalidRuleError{RuleID: rule.ID, Kind: "price", Reason: fmt.Sprintf("condition option %d does not exist", cond.OptionID)}
			}
		}
		if rule.OptionID != nil {
			if _, ok := s.options[*rule.OptionID]; !ok {
				return &InvalidRuleError{RuleID: rule.ID, Kind: "price", Reason: fmt.Sprintf("target option %d does not exist", *rule.OptionID)}
			}
			if rule.Amount.IsNegative() {
				return &InvalidRuleError{RuleID: rule.ID, Kind: "price", Reason: "negative replacement price"}
			}
		}
	}
	return nil
}

// Option returns the option with the given id, if it belongs to the product.
func (s *Snapshot) Option(optionID uint) (model.Option, bool) {
	option, ok := s.options[optionID]
	return option, ok
}

// Part returns the part with the given id, if it belongs to the product.
func (s *Snapshot) Part(partID uint) (model.Part, bool) {
	part, ok := s.parts[partID]
	return part, ok
}

// InStockOptions returns the in-stock option ids of a part in catalog order.
func (s *Snapshot) InStockOptions(partID uint) []uint {
	return s.inStock[partID]
}

// OptionPrice returns the base price of an option, zero for unknown ids.
func (s *Snapshot) OptionPrice(optionID uint) decimal.Decimal {
	if option, ok := s.options[optionID]; ok {
		return option.Price
	}
	return decimal.Zero
}

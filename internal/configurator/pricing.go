package configurator

import (
	"github.com/shopspring/decimal"
	"github.com/velocraft/velocraft-backend/internal/app/model"
)

// Total computes the price of a selection (part id -> option id) under the
// snapshot's price rules.
//
// The total starts from the product base price plus every selected option's
// base price. Then every rule whose full condition set is selected applies:
// a product-scoped rule adds its amount, an option-scoped rule swaps its
// target option's base price for its amount (and only fires while the target
// is selected). All matching rules apply and the adjustments sum, so the
// result is independent of rule order and of the order options were picked.
func Total(snap *Snapshot, selection map[uint]uint) decimal.Decimal {
	selected := make(map[uint]bool, len(selection))
	for _, optionID := range selection {
		selected[optionID] = true
	}

	total := snap.Product.BasePrice
	for _, optionID := range selection {
		total = total.Add(snap.OptionPrice(optionID))
	}

	for _, rule := range snap.PriceRules {
		if !ruleMatches(rule, selected) {
			continue
		}
		if rule.OptionID != nil {
			if !selected[*rule.OptionID] {
				continue
			}
			total = total.Add(rule.Amount.Sub(snap.OptionPrice(*rule.OptionID)))
		} else {
			total = total.Add(rule.Amount)
		}
	}
	return total
}

func ruleMatches(rule model.PriceRule, selected map[uint]bool) bool {
	for _, cond := range rule.Conditions {
		if !selected[cond.OptionID] {
			return false
		}
	}
	return true
}

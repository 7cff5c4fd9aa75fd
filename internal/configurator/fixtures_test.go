package configurator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/velocraft/velocraft-backend/internal/app/model"
)

// Canonical bicycle catalog used across the engine tests.
const (
	partFrame    uint = 1
	partWheels   uint = 2
	partRimColor uint = 3
	partChain    uint = 4

	optFullSuspension uint = 1
	optDiamond        uint = 2
	optRoadWheels     uint = 3
	optMountainWheels uint = 4
	optFatWheels      uint = 5
	optRed            uint = 6
	optBlack          uint = 7
	optSingleSpeed    uint = 8
	optEightSpeed     uint = 9
)

func bikeProduct() model.Product {
	return model.Product{ID: 1, Name: "Custom Bike", BasePrice: decimal.Zero}
}

func bikeParts() []model.Part {
	return []model.Part{
		{ID: partFrame, ProductID: 1, Name: "Frame", Required: true},
		{ID: partWheels, ProductID: 1, Name: "Wheels", Required: true},
		{ID: partRimColor, ProductID: 1, Name: "Rim color", Required: true},
		{ID: partChain, ProductID: 1, Name: "Chain", Required: true},
	}
}

func bikeOptions() []model.Option {
	price := func(v int64) decimal.Decimal { return decimal.NewFromInt(v) }
	return []model.Option{
		{ID: optFullSuspension, PartID: partFrame, Name: "Full-suspension", Price: price(130), InStock: true},
		{ID: optDiamond, PartID: partFrame, Name: "Diamond", Price: price(100), InStock: true},
		{ID: optRoadWheels, PartID: partWheels, Name: "Road wheels", Price: price(80), InStock: true},
		{ID: optMountainWheels, PartID: partWheels, Name: "Mountain wheels", Price: price(100), InStock: true},
		{ID: optFatWheels, PartID: partWheels, Name: "Fat bike wheels", Price: price(120), InStock: true},
		{ID: optRed, PartID: partRimColor, Name: "Red", Price: price(20), InStock: true},
		{ID: optBlack, PartID: partRimColor, Name: "Black", Price: price(20), InStock: true},
		{ID: optSingleSpeed, PartID: partChain, Name: "Single-speed chain", Price: price(43), InStock: true},
		{ID: optEightSpeed, PartID: partChain, Name: "8-speed chain", Price: price(55), InStock: true},
	}
}

func bikeCompatRules() []model.CompatibilityRule {
	return []model.CompatibilityRule{
		{ID: 1, ProductID: 1, SubjectOptionID: optFullSuspension, ObjectOptionID: optMountainWheels, Polarity: model.PolarityInclude},
		{ID: 2, ProductID: 1, SubjectOptionID: optDiamond, ObjectOptionID: optRoadWheels, Polarity: model.PolarityExclude},
		{ID: 3, ProductID: 1, SubjectOptionID: optFatWheels, ObjectOptionID: optBlack, Polarity: model.PolarityInclude},
	}
}

func bikePriceRules() []model.PriceRule {
	black := optBlack
	return []model.PriceRule{
		{
			ID:        1,
			ProductID: 1,
			OptionID:  &black,
			Amount:    decimal.NewFromInt(30),
			Conditions: []model.PriceRuleCondition{
				{ID: 1, PriceRuleID: 1, OptionID: optFullSuspension},
				{ID: 2, PriceRuleID: 1, OptionID: optMountainWheels},
			},
		},
	}
}

// bikeSnapshot builds the canonical catalog. withRules=false gives the open
// variant: same parts and options, no compatibility constraints at all.
func bikeSnapshot(t *testing.T, withRules bool) *Snapshot {
	t.Helper()
	compat := []model.CompatibilityRule{}
	if withRules {
		compat = bikeCompatRules()
	}
	snap, err := NewSnapshot(bikeProduct(), bikeParts(), bikeOptions(), compat, bikePriceRules())
	require.NoError(t, err)
	return snap
}

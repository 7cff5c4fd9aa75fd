package configurator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/velocraft/velocraft-backend/internal/app/model"
)

func TestEngine_OpenCatalogEverythingAvailable(t *testing.T) {
	engine := NewEngine(bikeSnapshot(t, false))

	available := engine.AvailableByPart()
	assert.Equal(t, []uint{optFullSuspension, optDiamond}, available[partFrame])
	assert.Equal(t, []uint{optRoadWheels, optMountainWheels, optFatWheels}, available[partWheels])
	assert.Equal(t, []uint{optRed, optBlack}, available[partRimColor])
	assert.Equal(t, []uint{optSingleSpeed, optEightSpeed}, available[partChain])
}

func TestEngine_PartWithoutRulesUnaffected(t *testing.T) {
	engine := NewEngine(bikeSnapshot(t, true))
	require.NoError(t, engine.Commit(optFullSuspension))

	// no rule touches the chain, both options stay selectable
	assert.Equal(t, []uint{optSingleSpeed, optEightSpeed}, engine.AvailableOptions(partChain))
}

func TestEngine_IncludeRuleNarrowsObjectPart(t *testing.T) {
	engine := NewEngine(bikeSnapshot(t, true))
	require.NoError(t, engine.Commit(optFullSuspension))

	// full-suspension forces mountain wheels
	assert.Equal(t, []uint{optMountainWheels}, engine.AvailableOptions(partWheels))
}

func TestEngine_ExcludeRuleRemovesObjectOption(t *testing.T) {
	engine := NewEngine(bikeSnapshot(t, true))
	require.NoError(t, engine.Commit(optDiamond))

	assert.Equal(t, []uint{optMountainWheels, optFatWheels}, engine.AvailableOptions(partWheels))
}

func TestEngine_RulesAreDirectional(t *testing.T) {
	engine := NewEngine(bikeSnapshot(t, true))
	require.NoError(t, engine.Commit(optMountainWheels))

	// FS include Mountain does not force the frame once wheels are picked
	assert.Equal(t, []uint{optFullSuspension, optDiamond}, engine.AvailableOptions(partFrame))
}

func TestEngine_OwnPartKeepsAlternativesAfterCommit(t *testing.T) {
	engine := NewEngine(bikeSnapshot(t, true))
	require.NoError(t, engine.Commit(optFullSuspension))

	// the committed part still shows viable swaps, not just the pinned option
	assert.Equal(t, []uint{optFullSuspension, optDiamond}, engine.AvailableOptions(partFrame))
}

func TestEngine_CommitIncompatibleNamesConflict(t *testing.T) {
	engine := NewEngine(bikeSnapshot(t, true))
	require.NoError(t, engine.Commit(optFullSuspension))
	require.NoError(t, engine.Commit(optMountainWheels))

	err := engine.Commit(optRoadWheels)
	var incompatible *IncompatibleSelectionError
	require.ErrorAs(t, err, &incompatible)
	assert.Equal(t, optRoadWheels, incompatible.OptionID)
	assert.Equal(t, optFullSuspension, incompatible.ConflictsWith)

	// the failed commit must not leak into engine state
	assert.Equal(t, map[uint]uint{partFrame: optFullSuspension, partWheels: optMountainWheels}, engine.Pinned())
}

func TestEngine_CommitReplacesSamePart(t *testing.T) {
	engine := NewEngine(bikeSnapshot(t, true))
	require.NoError(t, engine.Commit(optDiamond))
	require.NoError(t, engine.Commit(optFullSuspension))

	assert.Equal(t, map[uint]uint{partFrame: optFullSuspension}, engine.Pinned())
}

func TestEngine_CommitUnknownOption(t *testing.T) {
	engine := NewEngine(bikeSnapshot(t, true))
	assert.ErrorIs(t, engine.Commit(999), ErrUnknownOption)
}

func TestEngine_TransitiveIncludeChain(t *testing.T) {
	// A include B, B include C: selecting A must force C two hops away
	rules := []model.CompatibilityRule{
		{ID: 1, ProductID: 1, SubjectOptionID: optFullSuspension, ObjectOptionID: optMountainWheels, Polarity: model.PolarityInclude},
		{ID: 2, ProductID: 1, SubjectOptionID: optMountainWheels, ObjectOptionID: optBlack, Polarity: model.PolarityInclude},
	}
	snap, err := NewSnapshot(bikeProduct(), bikeParts(), bikeOptions(), rules, nil)
	require.NoError(t, err)

	engine := NewEngine(snap)
	require.NoError(t, engine.Commit(optFullSuspension))

	assert.Equal(t, []uint{optMountainWheels}, engine.AvailableOptions(partWheels))
	assert.Equal(t, []uint{optBlack}, engine.AvailableOptions(partRimColor))
}

func TestEngine_TransitiveExcludeChain(t *testing.T) {
	// exclusion does not chain: A excludes B, B excludes C says nothing
	// about C once B is ruled out
	rules := []model.CompatibilityRule{
		{ID: 1, ProductID: 1, SubjectOptionID: optFullSuspension, ObjectOptionID: optMountainWheels, Polarity: model.PolarityExclude},
		{ID: 2, ProductID: 1, SubjectOptionID: optMountainWheels, ObjectOptionID: optBlack, Polarity: model.PolarityExclude},
	}
	snap, err := NewSnapshot(bikeProduct(), bikeParts(), bikeOptions(), rules, nil)
	require.NoError(t, err)

	engine := NewEngine(snap)
	require.NoError(t, engine.Commit(optFullSuspension))

	assert.Equal(t, []uint{optRoadWheels, optFatWheels}, engine.AvailableOptions(partWheels))
	assert.Equal(t, []uint{optRed, optBlack}, engine.AvailableOptions(partRimColor))
}

func TestEngine_SatisfiableProbeDoesNotMutate(t *testing.T) {
	engine := NewEngine(bikeSnapshot(t, true))
	require.NoError(t, engine.Commit(optFullSuspension))

	before := engine.AvailableByPart()
	assert.False(t, engine.Satisfiable(map[uint]uint{partWheels: optRoadWheels}))
	assert.True(t, engine.Satisfiable(map[uint]uint{partWheels: optMountainWheels}))
	after := engine.AvailableByPart()

	assert.Equal(t, before, after)
	assert.Equal(t, map[uint]uint{partFrame: optFullSuspension}, engine.Pinned())
}

func TestEngine_MonotoneInfeasibility(t *testing.T) {
	engine := NewEngine(bikeSnapshot(t, true))

	infeasible := map[uint]uint{partFrame: optFullSuspension, partWheels: optRoadWheels}
	require.False(t, engine.Satisfiable(infeasible))

	// every superset of an infeasible selection stays infeasible
	for _, extra := range []map[uint]uint{
		{partRimColor: optRed},
		{partRimColor: optBlack},
		{partChain: optSingleSpeed},
		{partChain: optEightSpeed},
	} {
		superset := map[uint]uint{partFrame: optFullSuspension, partWheels: optRoadWheels}
		for partID, optionID := range extra {
			superset[partID] = optionID
		}
		assert.False(t, engine.Satisfiable(superset))
	}
}

func TestEngine_AvailabilitySoundness(t *testing.T) {
	// anything reported available must commit without error
	engine := NewEngine(bikeSnapshot(t, true))
	require.NoError(t, engine.Commit(optFatWheels))

	for partID, optionIDs := range engine.AvailableByPart() {
		for _, optionID := range optionIDs {
			probe := NewEngine(bikeSnapshot(t, true))
			require.NoError(t, probe.Commit(optFatWheels))
			assert.NoErrorf(t, probe.Commit(optionID), "part %d option %d reported available", partID, optionID)
		}
	}
}

func TestEngine_RequiredPartWithEmptyDomain(t *testing.T) {
	options := bikeOptions()
	for i := range options {
		if options[i].PartID == partChain {
			options[i].InStock = false
		}
	}
	snap, err := NewSnapshot(bikeProduct(), bikeParts(), options, nil, nil)
	require.NoError(t, err)

	engine := NewEngine(snap)
	assert.False(t, engine.Satisfiable(nil))
}

func TestEngine_OptionalPartWithEmptyDomain(t *testing.T) {
	parts := bikeParts()
	for i := range parts {
		if parts[i].ID == partChain {
			parts[i].Required = false
		}
	}
	options := bikeOptions()
	for i := range options {
		if options[i].PartID == partChain {
			options[i].InStock = false
		}
	}
	snap, err := NewSnapshot(bikeProduct(), parts, options, nil, nil)
	require.NoError(t, err)

	engine := NewEngine(snap)
	assert.True(t, engine.Satisfiable(nil))
	assert.Empty(t, engine.AvailableOptions(partChain))
}

func TestEngine_IncludeTargetOutOfStock(t *testing.T) {
	// FS forces mountain wheels; with those out of stock FS itself becomes
	// unavailable
	options := bikeOptions()
	for i := range options {
		if options[i].ID == optMountainWheels {
			options[i].InStock = false
		}
	}
	snap, err := NewSnapshot(bikeProduct(), bikeParts(), options, bikeCompatRules(), nil)
	require.NoError(t, err)

	engine := NewEngine(snap)
	assert.Equal(t, []uint{optDiamond}, engine.AvailableOptions(partFrame))

	var incompatible *IncompatibleSelectionError
	require.ErrorAs(t, engine.Commit(optFullSuspension), &incompatible)
}

func TestEngine_PriceRulesDoNotConstrain(t *testing.T) {
	// price rules adjust money, never feasibility
	priceRules := []model.PriceRule{
		{
			ID:        1,
			ProductID: 1,
			Amount:    decimal.NewFromInt(1000),
			Conditions: []model.PriceRuleCondition{
				{PriceRuleID: 1, OptionID: optFullSuspension},
				{PriceRuleID: 1, OptionID: optRed},
			},
		},
	}
	snap, err := NewSnapshot(bikeProduct(), bikeParts(), bikeOptions(), nil, priceRules)
	require.NoError(t, err)

	engine := NewEngine(snap)
	require.NoError(t, engine.Commit(optFullSuspension))
	assert.Equal(t, []uint{optRed, optBlack}, engine.AvailableOptions(partRimColor))
}

package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/velocraft/velocraft-backend/internal/app/model"
	"github.com/velocraft/velocraft-backend/internal/app/repository"
	"github.com/velocraft/velocraft-backend/internal/configurator"
	"github.com/velocraft/velocraft-backend/internal/db"
	"gorm.io/gorm"
)

func setupConfiguratorServiceTest(t *testing.T) (ConfiguratorService, *bikeCatalog, repository.OrderRepository, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	catalog := seedBikeCatalog(t, testDB)
	catalogService := NewCatalogService(repository.NewCatalogRepository(testDB), 0)
	orderRepo := repository.NewOrderRepository(testDB)
	configuratorService := NewConfiguratorService(catalogService, orderRepo, nil)

	return configuratorService, catalog, orderRepo, testDB
}

func TestConfiguratorService_StartOrder(t *testing.T) {
	svc, catalog, orderRepo, _ := setupConfiguratorServiceTest(t)

	response, err := svc.StartOrder(catalog.product.ID)
	require.NoError(t, err)

	assert.NotZero(t, response.OrderID)
	assert.Equal(t, catalog.product.ID, response.ProductID)
	assert.Equal(t, configurator.StateEmpty, response.State)
	assert.True(t, response.TotalPrice.IsZero())
	assert.Empty(t, response.Selections)

	_, err = uuid.Parse(response.SessionToken)
	assert.NoError(t, err)

	order, err := orderRepo.FindByID(response.OrderID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Equal(t, response.SessionToken, order.SessionToken)
}

func TestConfiguratorService_StartOrder_ProductNotFound(t *testing.T) {
	svc, _, _, _ := setupConfiguratorServiceTest(t)

	_, err := svc.StartOrder(999)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestConfiguratorService_AddOption_PersistsSelection(t *testing.T) {
	svc, catalog, orderRepo, _ := setupConfiguratorServiceTest(t)

	started, err := svc.StartOrder(catalog.product.ID)
	require.NoError(t, err)

	response, err := svc.AddOption(started.OrderID, catalog.fullSuspension.ID)
	require.NoError(t, err)
	assert.Equal(t, configurator.StatePartiallyConfigured, response.State)
	assert.True(t, response.TotalPrice.Equal(decimal.NewFromInt(130)))
	assert.Equal(t, catalog.fullSuspension.ID, response.Selections[catalog.frame.ID])

	order, err := orderRepo.FindByID(started.OrderID)
	require.NoError(t, err)
	require.Len(t, order.Selections, 1)
	assert.Equal(t, catalog.fullSuspension.ID, order.Selections[0].OptionID)
	assert.True(t, order.TotalPrice.Equal(decimal.NewFromInt(130)))
}

func TestConfiguratorService_FullFlow(t *testing.T) {
	svc, catalog, orderRepo, _ := setupConfiguratorServiceTest(t)

	started, err := svc.StartOrder(catalog.product.ID)
	require.NoError(t, err)
	orderID := started.OrderID

	for _, optionID := range []uint{
		catalog.fullSuspension.ID,
		catalog.mountainWheels.ID,
		catalog.black.ID,
	} {
		_, err = svc.AddOption(orderID, optionID)
		require.NoError(t, err)
	}

	response, err := svc.AddOption(orderID, catalog.eightSpeed.ID)
	require.NoError(t, err)
	assert.Equal(t, configurator.StateFullyConfigured, response.State)
	// 130 + 100 + 55, black rims at 30 under the full-suspension rule
	assert.True(t, response.TotalPrice.Equal(decimal.NewFromInt(315)),
		"got total %s", response.TotalPrice)

	finalized, err := svc.Finalize(orderID)
	require.NoError(t, err)
	assert.Equal(t, configurator.StateFinalized, finalized.State)

	order, err := orderRepo.FindByID(orderID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusFinalized, order.Status)
	assert.Len(t, order.Selections, 4)
	assert.True(t, order.TotalPrice.Equal(decimal.NewFromInt(315)))

	// finalized orders accept no further changes
	_, err = svc.AddOption(orderID, catalog.red.ID)
	assert.ErrorIs(t, err, configurator.ErrSessionClosed)

	// but remain readable
	fetched, err := svc.Get(orderID)
	require.NoError(t, err)
	assert.Equal(t, configurator.StateFinalized, fetched.State)
	assert.True(t, fetched.TotalPrice.Equal(decimal.NewFromInt(315)))
	assert.Len(t, fetched.Selections, 4)
}

func TestConfiguratorService_Finalize_RequiresFullConfiguration(t *testing.T) {
	svc, catalog, _, _ := setupConfiguratorServiceTest(t)

	started, err := svc.StartOrder(catalog.product.ID)
	require.NoError(t, err)

	_, err = svc.AddOption(started.OrderID, catalog.diamond.ID)
	require.NoError(t, err)

	_, err = svc.Finalize(started.OrderID)
	assert.ErrorIs(t, err, configurator.ErrNotFullyConfigured)
}

func TestConfiguratorService_AddOption_IncompatibleLeavesOrderUntouched(t *testing.T) {
	svc, catalog, orderRepo, _ := setupConfiguratorServiceTest(t)

	started, err := svc.StartOrder(catalog.product.ID)
	require.NoError(t, err)

	_, err = svc.AddOption(started.OrderID, catalog.fullSuspension.ID)
	require.NoError(t, err)

	_, err = svc.AddOption(started.OrderID, catalog.roadWheels.ID)
	var incompatible *configurator.IncompatibleSelectionError
	require.ErrorAs(t, err, &incompatible)
	assert.Equal(t, catalog.roadWheels.ID, incompatible.OptionID)

	order, err := orderRepo.FindByID(started.OrderID)
	require.NoError(t, err)
	require.Len(t, order.Selections, 1)
	assert.Equal(t, catalog.fullSuspension.ID, order.Selections[0].OptionID)
}

func TestConfiguratorService_RemoveOption(t *testing.T) {
	svc, catalog, orderRepo, _ := setupConfiguratorServiceTest(t)

	started, err := svc.StartOrder(catalog.product.ID)
	require.NoError(t, err)

	_, err = svc.AddOption(started.OrderID, catalog.fullSuspension.ID)
	require.NoError(t, err)

	response, err := svc.RemoveOption(started.OrderID, catalog.frame.ID)
	require.NoError(t, err)
	assert.Equal(t, configurator.StateEmpty, response.State)
	assert.Empty(t, response.Selections)

	order, err := orderRepo.FindByID(started.OrderID)
	require.NoError(t, err)
	assert.Empty(t, order.Selections)
	assert.True(t, order.TotalPrice.IsZero())
}

func TestConfiguratorService_Get_FinalizedOrder(t *testing.T) {
	svc, catalog, _, _ := setupConfiguratorServiceTest(t)

	started, err := svc.StartOrder(catalog.product.ID)
	require.NoError(t, err)

	for _, optionID := range []uint{
		catalog.diamond.ID,
		catalog.mountainWheels.ID,
		catalog.red.ID,
		catalog.singleSpeed.ID,
	} {
		_, err = svc.AddOption(started.OrderID, optionID)
		require.NoError(t, err)
	}
	_, err = svc.Finalize(started.OrderID)
	require.NoError(t, err)

	// finalize retires the live session; reads answer from the order row
	fetched, err := svc.Get(started.OrderID)
	require.NoError(t, err)
	assert.Equal(t, configurator.StateFinalized, fetched.State)
	assert.Equal(t, started.SessionToken, fetched.SessionToken)
	assert.Len(t, fetched.Selections, 4)
	// 100 + 100 + 20 + 43
	assert.True(t, fetched.TotalPrice.Equal(decimal.NewFromInt(263)))
}

func TestConfiguratorService_Get_OrderNotFound(t *testing.T) {
	svc, _, _, _ := setupConfiguratorServiceTest(t)

	_, err := svc.Get(999)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestConfiguratorService_SessionToken(t *testing.T) {
	svc, catalog, _, _ := setupConfiguratorServiceTest(t)

	started, err := svc.StartOrder(catalog.product.ID)
	require.NoError(t, err)

	token, err := svc.SessionToken(started.OrderID)
	require.NoError(t, err)
	assert.Equal(t, started.SessionToken, token)
}

func TestConfiguratorService_ResumeAfterSweep(t *testing.T) {
	svc, catalog, _, _ := setupConfiguratorServiceTest(t)

	started, err := svc.StartOrder(catalog.product.ID)
	require.NoError(t, err)

	_, err = svc.AddOption(started.OrderID, catalog.fullSuspension.ID)
	require.NoError(t, err)

	// maxIdle 0 sweeps everything that isn't being touched right now
	swept := svc.SweepIdleSessions(0)
	assert.Equal(t, 1, swept)

	// the next mutation resumes the session from the persisted selection
	response, err := svc.AddOption(started.OrderID, catalog.mountainWheels.ID)
	require.NoError(t, err)
	assert.Equal(t, started.SessionToken, response.SessionToken)
	assert.Equal(t, catalog.fullSuspension.ID, response.Selections[catalog.frame.ID])
	assert.Equal(t, catalog.mountainWheels.ID, response.Selections[catalog.wheels.ID])
	assert.True(t, response.TotalPrice.Equal(decimal.NewFromInt(230)))
}

func TestConfiguratorService_SweepKeepsFreshSessions(t *testing.T) {
	svc, catalog, _, _ := setupConfiguratorServiceTest(t)

	_, err := svc.StartOrder(catalog.product.ID)
	require.NoError(t, err)

	swept := svc.SweepIdleSessions(time.Hour)
	assert.Zero(t, swept)
}

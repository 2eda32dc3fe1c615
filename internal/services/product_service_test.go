package services_test

import (
	"testing"

	"fuel-backend/internal/apperr"
	"fuel-backend/internal/cache"
	"fuel-backend/internal/models"
	"fuel-backend/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductService_CachesAndInvalidates(t *testing.T) {
	f := newFixture(t)
	mc := newMemCache()
	svc := services.NewProductService(f.st, mc, f.clock)

	p, err := svc.Add(ctx, &models.ProductRequest{Name: "AGO", PPrice: "11", SPrice: "13.5"})
	require.NoError(t, err)
	assert.Equal(t, []string{cache.ProductPattern}, mc.invalidated)
	require.Len(t, p.PriceHistory, 1)

	got, err := svc.Price(ctx, " ago ")
	require.NoError(t, err)
	assert.Equal(t, 13.5, got.SPrice.Float())
	assert.Contains(t, mc.data, cache.ProductPriceKey("AGO"))

	_, err = svc.Price(ctx, "AGO")
	require.NoError(t, err)
	assert.Equal(t, 1, mc.hits)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Contains(t, mc.data, cache.ProductListKey)

	updated, err := svc.Update(ctx, p.ID, &models.ProductRequest{Name: "AGO", PPrice: "12", SPrice: "14"})
	require.NoError(t, err)
	assert.Len(t, updated.PriceHistory, 2)
	assert.Empty(t, mc.data, "update clears cached prices")

	got, err = svc.Price(ctx, "AGO")
	require.NoError(t, err)
	assert.Equal(t, 14.0, got.SPrice.Float())
}

func TestProductService_Errors(t *testing.T) {
	f := newFixture(t)
	svc := services.NewProductService(f.st, nil, f.clock)
	_, err := svc.Add(ctx, &models.ProductRequest{Name: "PMS", PPrice: "10", SPrice: "12"})
	require.NoError(t, err)

	_, err = svc.Add(ctx, &models.ProductRequest{Name: "pms", PPrice: "10", SPrice: "12"})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	_, err = svc.Add(ctx, &models.ProductRequest{Name: "LPG", PPrice: "abc", SPrice: "12"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = svc.Price(ctx, "Kerosene")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = svc.Price(ctx, "")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	assert.True(t, apperr.Is(svc.Delete(ctx, "missing"), apperr.KindNotFound))
}

package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByID(t *testing.T) {
	p, err := ByID("standard-maintenance")
	require.NoError(t, err)
	assert.Equal(t, "Mantenimiento Estándar", p.Name)
	assert.Equal(t, int64(9900), p.PriceMonthlyCents)

	_, err = ByID("enterprise-maintenance")
	require.ErrorIs(t, err, ErrPlanNotFound)
}

func TestByIDReturnsCopy(t *testing.T) {
	p, err := ByID("basic-maintenance")
	require.NoError(t, err)

	p.PriceMonthlyCents = 1

	again, err := ByID("basic-maintenance")
	require.NoError(t, err)
	assert.Equal(t, int64(4900), again.PriceMonthlyCents)
}

func TestCatalogOrdering(t *testing.T) {
	require.Len(t, AllPlans, 3)
	assert.Equal(t, "basic-maintenance", AllPlans[0].ID)
	assert.Equal(t, "standard-maintenance", AllPlans[1].ID)
	assert.Equal(t, "premium-maintenance", AllPlans[2].ID)
}

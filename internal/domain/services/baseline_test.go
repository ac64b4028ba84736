package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"vendorguard/internal/domain/models"
)

func TestBaselineMeanStd(t *testing.T) {
	mean, std := meanStd([]float64{10, 20, 30})
	assert.InDelta(t, 20.0, mean, 1e-9)
	assert.InDelta(t, 10.0, std, 1e-9)

	mean, std = meanStd([]float64{42})
	assert.InDelta(t, 42.0, mean, 1e-9)
	assert.Zero(t, std)

	mean, std = meanStd(nil)
	assert.Zero(t, mean)
	assert.Zero(t, std)
}

func TestBaselineStoreSnapshot(t *testing.T) {
	store := NewBaselineStore(10)
	assert.Zero(t, store.Snapshot().SampleSize)

	store.Seed([]int{10, 20, 30}, []int{100, 200, 300})

	snap := store.Snapshot()
	assert.Equal(t, 3, snap.SampleSize)
	assert.InDelta(t, 20.0, snap.MeanName, 1e-9)
	assert.InDelta(t, 10.0, snap.StdName, 1e-9)
	assert.InDelta(t, 200.0, snap.MeanDesc, 1e-9)
}

func TestBaselineStoreRingEviction(t *testing.T) {
	store := NewBaselineStore(3)

	for i := 0; i < 5; i++ {
		store.Add(&models.Submission{
			VendorName:          "Acme",
			BusinessDescription: "consulting services",
		})
	}

	snap := store.Snapshot()
	assert.Equal(t, 3, snap.SampleSize)
	assert.InDelta(t, 4.0, snap.MeanName, 1e-9)
}

func TestBaselineStoreDefaultCapacity(t *testing.T) {
	store := NewBaselineStore(0)
	assert.Equal(t, 500, store.capacity)
}

package ranking_test

import (
	"testing"

	"mandi/internal/errs"
	"mandi/internal/models"
	"mandi/internal/ranking"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var delhi = ranking.Coordinates{Lat: 28.6139, Lng: 77.2090}

func ptr(f float64) *float64 { return &f }

func supplier(id, name string, rating float64, loc *ranking.Coordinates) models.Profile {
	p := models.Profile{ID: id, BusinessName: name, Rating: rating, Role: models.RoleSupplier}
	if loc != nil {
		p.Latitude = ptr(loc.Lat)
		p.Longitude = ptr(loc.Lng)
	}
	return p
}

func ids(rs []ranking.Ranked) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Supplier.ID
	}
	return out
}

func TestHaversineSymmetric(t *testing.T) {
	points := []ranking.Coordinates{
		delhi,
		{Lat: 28.7041, Lng: 77.1025},
		{Lat: 19.0760, Lng: 72.8777},
		{Lat: -33.8688, Lng: 151.2093},
		{Lat: 0, Lng: 179.9},
		{Lat: 0, Lng: -179.9},
	}
	for _, a := range points {
		for _, b := range points {
			assert.InDelta(t, ranking.Haversine(a, b), ranking.Haversine(b, a), 1e-9)
		}
	}
}

func TestHaversineSamePointIsZero(t *testing.T) {
	assert.Equal(t, 0.0, ranking.Haversine(delhi, delhi))
}

func TestHaversineKnownDistance(t *testing.T) {
	km := ranking.Haversine(delhi, ranking.Coordinates{Lat: 28.7041, Lng: 77.1025})
	assert.InDelta(t, 14.44, km, 0.01)
	assert.Equal(t, 14.4, ranking.RoundKm(km))
}

func TestRankRadiusFilter(t *testing.T) {
	suppliers := []models.Profile{
		supplier("north", "North Delhi Traders", 4, &ranking.Coordinates{Lat: 28.7041, Lng: 77.1025}),
	}

	got, err := ranking.Rank(&delhi, suppliers, ranking.Options{RadiusKm: 10, Sort: ranking.ByDistance})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = ranking.Rank(&delhi, suppliers, ranking.Options{RadiusKm: 20, Sort: ranking.ByDistance})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.True(t, got[0].DistanceKnown())
	assert.Equal(t, 14.4, *got[0].DistanceKm)
}

func TestRankByDistance(t *testing.T) {
	suppliers := []models.Profile{
		supplier("far", "Gurgaon Grains", 5, &ranking.Coordinates{Lat: 28.4595, Lng: 77.0266}),
		supplier("near", "Connaught Spices", 3, &ranking.Coordinates{Lat: 28.6304, Lng: 77.2177}),
		supplier("mid", "Noida Oils", 4, &ranking.Coordinates{Lat: 28.5355, Lng: 77.3910}),
	}

	got, err := ranking.Rank(&delhi, suppliers, ranking.Options{Sort: ranking.ByDistance})
	require.NoError(t, err)
	assert.Equal(t, []string{"near", "mid", "far"}, ids(got))
	assert.Equal(t, 2.0, *got[0].DistanceKm)
	assert.Equal(t, 19.8, *got[1].DistanceKm)
	assert.Equal(t, 24.7, *got[2].DistanceKm)
}

func TestRankDistanceTieBreaks(t *testing.T) {
	spot := &ranking.Coordinates{Lat: 28.6304, Lng: 77.2177}
	suppliers := []models.Profile{
		supplier("low", "Alpha Mart", 3.5, spot),
		supplier("beta", "beta Foods", 4.5, spot),
		supplier("alpha", "Alpha Foods", 4.5, spot),
	}

	got, err := ranking.Rank(&delhi, suppliers, ranking.Options{Sort: ranking.ByDistance})
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta", "low"}, ids(got))
}

func TestRankUnknownDistance(t *testing.T) {
	suppliers := []models.Profile{
		supplier("nowhere", "Aaa Unknown", 5, nil),
		supplier("near", "Connaught Spices", 3, &ranking.Coordinates{Lat: 28.6304, Lng: 77.2177}),
	}

	t.Run("sorted last without radius", func(t *testing.T) {
		got, err := ranking.Rank(&delhi, suppliers, ranking.Options{Sort: ranking.ByDistance})
		require.NoError(t, err)
		assert.Equal(t, []string{"near", "nowhere"}, ids(got))
		assert.False(t, got[1].DistanceKnown())
		assert.Nil(t, got[1].DistanceKm)
	})

	t.Run("excluded with radius", func(t *testing.T) {
		got, err := ranking.Rank(&delhi, suppliers, ranking.Options{RadiusKm: 50, Sort: ranking.ByDistance})
		require.NoError(t, err)
		assert.Equal(t, []string{"near"}, ids(got))
	})

	t.Run("deterministic", func(t *testing.T) {
		first, err := ranking.Rank(&delhi, suppliers, ranking.Options{Sort: ranking.ByDistance})
		require.NoError(t, err)
		second, err := ranking.Rank(&delhi, suppliers, ranking.Options{Sort: ranking.ByDistance})
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}

func TestRankByName(t *testing.T) {
	suppliers := []models.Profile{
		supplier("z", "Zee Mart", 1, nil),
		supplier("a", "Apex Foods", 1, nil),
	}

	got, err := ranking.Order(suppliers, ranking.ByName)
	require.NoError(t, err)
	assert.Equal(t, "Apex Foods", got[0].Supplier.BusinessName)
	assert.Equal(t, "Zee Mart", got[1].Supplier.BusinessName)

	got, err = ranking.Rank(&delhi, suppliers, ranking.Options{Sort: ranking.ByName})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "z"}, ids(got))
}

func TestRankByNameIgnoresCase(t *testing.T) {
	suppliers := []models.Profile{
		supplier("upper", "MANDI Fresh", 0, nil),
		supplier("lower", "apna bazaar", 0, nil),
	}
	got, err := ranking.Order(suppliers, ranking.ByName)
	require.NoError(t, err)
	assert.Equal(t, []string{"lower", "upper"}, ids(got))
}

func TestRankIsStable(t *testing.T) {
	suppliers := []models.Profile{
		supplier("first", "Same Name", 4, nil),
		supplier("second", "same name", 4, nil),
		supplier("third", "Same Name", 4, nil),
	}
	for _, key := range []ranking.SortKey{ranking.ByName, ranking.ByRating} {
		got, err := ranking.Order(suppliers, key)
		require.NoError(t, err)
		assert.Equal(t, []string{"first", "second", "third"}, ids(got), key)
	}
}

func TestRankByRating(t *testing.T) {
	suppliers := []models.Profile{
		supplier("mid", "Mid", 3.2, nil),
		supplier("top", "Top", 4.9, nil),
		supplier("low", "Low", 1.0, nil),
	}
	got, err := ranking.Rank(&delhi, suppliers, ranking.Options{Sort: ranking.ByRating})
	require.NoError(t, err)
	assert.Equal(t, []string{"top", "mid", "low"}, ids(got))
}

func TestRankRequiresOrigin(t *testing.T) {
	_, err := ranking.Rank(nil, nil, ranking.Options{})
	assert.ErrorIs(t, err, ranking.ErrOriginRequired)

	_, err = ranking.Order(nil, ranking.ByDistance)
	assert.ErrorIs(t, err, ranking.ErrOriginRequired)
}

func TestRankRejectsInvalidInput(t *testing.T) {
	_, err := ranking.Rank(&delhi, nil, ranking.Options{RadiusKm: -1})
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = ranking.Rank(&delhi, nil, ranking.Options{Sort: "price"})
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = ranking.Rank(&ranking.Coordinates{Lat: 91}, nil, ranking.Options{})
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestParseSortKey(t *testing.T) {
	k, err := ranking.ParseSortKey("")
	require.NoError(t, err)
	assert.Equal(t, ranking.ByDistance, k)

	k, err = ranking.ParseSortKey(" Rating ")
	require.NoError(t, err)
	assert.Equal(t, ranking.ByRating, k)

	_, err = ranking.ParseSortKey("newest")
	assert.Error(t, err)
}

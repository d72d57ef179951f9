// Package ranking orders candidate suppliers by great-circle distance from a requester,
// by rating, or by name.
//
// A supplier without coordinates has an unknown distance. Unknown distances are never
// estimated: such suppliers are dropped when a radius filter is active and sorted after
// every known distance otherwise.
package ranking

import (
	"cmp"
	"errors"
	"math"
	"slices"
	"strings"

	"mandi/internal/errs"
	"mandi/internal/models"

	"golang.org/x/text/cases"
)

// EarthRadiusKm is the mean Earth radius used by Haversine.
const EarthRadiusKm = 6371.0

// ErrOriginRequired is returned when distances are requested without requester coordinates.
var ErrOriginRequired = errors.New("ranking: requester coordinates required")

// SortKey selects the primary ordering of a ranking.
type SortKey string

const (
	ByDistance SortKey = "distance"
	ByRating   SortKey = "rating"
	ByName     SortKey = "name"
)

// ParseSortKey accepts the wire names of the sort keys. An empty string means ByDistance.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return ByDistance, nil
	case ByDistance, ByRating, ByName:
		return k, nil
	default:
		return "", errs.Validation("unknown sort key %q", s)
	}
}

// Coordinates is a point in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (c Coordinates) Validate() error {
	if math.IsNaN(c.Lat) || c.Lat < -90 || c.Lat > 90 {
		return errs.Validation("latitude %v out of range", c.Lat)
	}
	if math.IsNaN(c.Lng) || c.Lng < -180 || c.Lng > 180 {
		return errs.Validation("longitude %v out of range", c.Lng)
	}
	return nil
}

// LocationOf returns the profile coordinates, or nil when either is missing.
func LocationOf(p *models.Profile) *Coordinates {
	if !p.HasLocation() {
		return nil
	}
	return &Coordinates{Lat: *p.Latitude, Lng: *p.Longitude}
}

// Options controls filtering and ordering. RadiusKm of zero disables the radius filter.
type Options struct {
	RadiusKm float64
	Sort     SortKey
}

func (o Options) validate() error {
	if math.IsNaN(o.RadiusKm) || o.RadiusKm < 0 {
		return errs.Validation("radius must be zero or positive")
	}
	if _, err := ParseSortKey(string(o.Sort)); err != nil {
		return err
	}
	return nil
}

// Ranked is a supplier annotated with its distance. DistanceKm is nil when unknown.
type Ranked struct {
	Supplier   models.Profile `json:"supplier"`
	DistanceKm *float64       `json:"distance_km"`
}

func (r Ranked) DistanceKnown() bool { return r.DistanceKm != nil }

// Haversine returns the great-circle distance between a and b in kilometres.
func Haversine(a, b Coordinates) float64 {
	lat1 := degreesToRadians(a.Lat)
	lat2 := degreesToRadians(b.Lat)
	dLat := degreesToRadians(b.Lat - a.Lat)
	dLng := degreesToRadians(b.Lng - a.Lng)

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)

	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLng*sinLng
	return 2 * EarthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// RoundKm rounds a distance to one decimal place.
func RoundKm(km float64) float64 {
	return math.Round(km*10) / 10
}

// Rank annotates suppliers with their rounded distance from origin, drops those outside
// the radius and orders the rest. The input slice is not modified.
func Rank(origin *Coordinates, suppliers []models.Profile, opts Options) ([]Ranked, error) {
	if origin == nil {
		return nil, ErrOriginRequired
	}
	if err := origin.Validate(); err != nil {
		return nil, err
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	out := make([]Ranked, 0, len(suppliers))
	for _, s := range suppliers {
		loc := LocationOf(&s)
		if loc == nil {
			if opts.RadiusKm > 0 {
				continue
			}
			out = append(out, Ranked{Supplier: s})
			continue
		}
		km := RoundKm(Haversine(*origin, *loc))
		if opts.RadiusKm > 0 && km > opts.RadiusKm {
			continue
		}
		out = append(out, Ranked{Supplier: s, DistanceKm: &km})
	}

	sortRanked(out, opts.Sort)
	return out, nil
}

// Order sorts suppliers by rating or name without computing any distance.
// ByDistance is refused since it needs an origin.
func Order(suppliers []models.Profile, key SortKey) ([]Ranked, error) {
	key, err := ParseSortKey(string(key))
	if err != nil {
		return nil, err
	}
	if key == ByDistance {
		return nil, ErrOriginRequired
	}
	out := make([]Ranked, len(suppliers))
	for i, s := range suppliers {
		out[i] = Ranked{Supplier: s}
	}
	sortRanked(out, key)
	return out, nil
}

type entry struct {
	Ranked
	folded string
}

func sortRanked(rs []Ranked, key SortKey) {
	if key == "" {
		key = ByDistance
	}
	fold := cases.Fold()
	entries := make([]entry, len(rs))
	for i, r := range rs {
		entries[i] = entry{Ranked: r, folded: fold.String(r.Supplier.BusinessName)}
	}

	var less func(a, b entry) int
	switch key {
	case ByRating:
		less = func(a, b entry) int {
			return cmp.Or(cmp.Compare(b.Supplier.Rating, a.Supplier.Rating), strings.Compare(a.folded, b.folded))
		}
	case ByName:
		less = func(a, b entry) int {
			return strings.Compare(a.folded, b.folded)
		}
	default:
		less = func(a, b entry) int {
			return cmp.Or(
				compareDistance(a.DistanceKm, b.DistanceKm),
				cmp.Compare(b.Supplier.Rating, a.Supplier.Rating),
				strings.Compare(a.folded, b.folded),
			)
		}
	}

	slices.SortStableFunc(entries, less)
	for i := range entries {
		rs[i] = entries[i].Ranked
	}
}

// compareDistance orders known distances ascending, then unknown ones.
func compareDistance(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return cmp.Compare(*a, *b)
	}
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

package geo

import (
	"math"

	"github.com/mmcloughlin/geohash"
	"github.com/shopspring/decimal"
)

// EarthRadiusKm is the mean Earth radius used by the haversine formula.
const EarthRadiusKm = 6371.0

type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (p Point) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

func (p Point) DistanceTo(o Point) float64 {
	return DistanceKm(p.Lat, p.Lng, o.Lat, o.Lng)
}

// DistanceKm returns the great-circle distance between two coordinates in kilometres.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	// rounding can push a a hair outside [0,1] for antipodal points
	a = math.Min(1, math.Max(0, a))
	return EarthRadiusKm * 2 * math.Asin(math.Sqrt(a))
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

// Geohash returns the geohash cell of p truncated to precision characters.
func Geohash(p Point, precision uint) string {
	if precision == 0 {
		precision = 7
	}
	return geohash.EncodeWithPrecision(p.Lat, p.Lng, precision)
}

// Eligibility is the hard delivery cutoff. A zero CutoffKm disables the cutoff.
type Eligibility struct {
	CutoffKm float64
}

func (e Eligibility) Allowed(distanceKm float64) bool {
	if e.CutoffKm <= 0 {
		return true
	}
	return distanceKm <= e.CutoffKm
}

// Surcharge is free inside FreeRadiusKm, then RatePerKm for every started
// kilometre beyond it.
type Surcharge struct {
	FreeRadiusKm float64
	RatePerKm    decimal.Decimal
}

func (s Surcharge) Charge(distanceKm float64) decimal.Decimal {
	if distanceKm <= s.FreeRadiusKm {
		return decimal.Zero
	}
	excess := decimal.NewFromFloat(distanceKm - s.FreeRadiusKm).Ceil()
	return excess.Mul(s.RatePerKm)
}

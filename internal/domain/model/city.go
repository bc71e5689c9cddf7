// Package model contains domain models passed between layers.
package model

import "github.com/okian/getaway/internal/domain/geo"

// City is one row of the destination table: a point of interest in a city.
// A city may appear on several rows, one per attraction.
type City struct {
	City      string  // display name, matched after title-casing
	Name      string  // attraction or listing name
	Latitude  float64 // degrees
	Longitude float64 // degrees
	Type      string  // category label, e.g. "Fort", "Beach"
	Rating    float64 // Google review rating, nominally 0-5
}

// Point returns the row's coordinate.
func (c City) Point() geo.Point {
	return geo.Point{Lat: c.Latitude, Lon: c.Longitude}
}

// Recommendation is a candidate destination with its per-query derived values.
type Recommendation struct {
	City       string  `json:"city"`
	Name       string  `json:"name"`
	DistanceKm float64 `json:"distance_km"`
	Type       string  `json:"type"`
	Rating     float64 `json:"google_review_rating"`
	FinalRank  float64 `json:"final_rank"`
}

package model

import (
	"time"
)

// Listing is a car in the dealership catalog.
type Listing struct {
	ID           string    `json:"id"`
	Slug         string    `json:"slug"`
	Make         string    `json:"make" validate:"required"`
	Model        string    `json:"model" validate:"required"`
	Year         int       `json:"year" validate:"gt=0"`
	Price        float64   `json:"price" validate:"gte=0"`
	Mileage      float64   `json:"mileage" validate:"gte=0"`
	FuelType     string    `json:"fuelType" validate:"required"`
	Transmission string    `json:"transmission" validate:"required"`
	ImageURL     string    `json:"imageUrl" validate:"required,uri"`
	Description  string    `json:"description" validate:"required"`
	Features     []string  `json:"features"`
	IsAvailable  bool      `json:"isAvailable"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ListingPatch carries a partial update. Nil fields are left unchanged.
type ListingPatch struct {
	Make         *string   `json:"make,omitempty"`
	Model        *string   `json:"model,omitempty"`
	Year         *int      `json:"year,omitempty"`
	Price        *float64  `json:"price,omitempty"`
	Mileage      *float64  `json:"mileage,omitempty"`
	FuelType     *string   `json:"fuelType,omitempty"`
	Transmission *string   `json:"transmission,omitempty"`
	ImageURL     *string   `json:"imageUrl,omitempty"`
	Description  *string   `json:"description,omitempty"`
	Features     *[]string `json:"features,omitempty"`
	IsAvailable  *bool     `json:"isAvailable,omitempty"`

	// Slug is derived by the catalog, never read from clients.
	Slug *string `json:"-"`
}

// IsEmpty reports whether the patch changes nothing.
func (p ListingPatch) IsEmpty() bool {
	return p.Make == nil && p.Model == nil && p.Year == nil && p.Price == nil &&
		p.Mileage == nil && p.FuelType == nil && p.Transmission == nil &&
		p.ImageURL == nil && p.Description == nil && p.Features == nil &&
		p.IsAvailable == nil && p.Slug == nil
}

// TouchesTitle reports whether the patch changes any field the slug is built from.
func (p ListingPatch) TouchesTitle() bool {
	return p.Make != nil || p.Model != nil || p.Year != nil
}

// ApplyTo returns a copy of l with the patch's present fields replaced.
func (p ListingPatch) ApplyTo(l Listing) Listing {
	if p.Make != nil {
		l.Make = *p.Make
	}
	if p.Model != nil {
		l.Model = *p.Model
	}
	if p.Year != nil {
		l.Year = *p.Year
	}
	if p.Price != nil {
		l.Price = *p.Price
	}
	if p.Mileage != nil {
		l.Mileage = *p.Mileage
	}
	if p.FuelType != nil {
		l.FuelType = *p.FuelType
	}
	if p.Transmission != nil {
		l.Transmission = *p.Transmission
	}
	if p.ImageURL != nil {
		l.ImageURL = *p.ImageURL
	}
	if p.Description != nil {
		l.Description = *p.Description
	}
	if p.Features != nil {
		l.Features = append([]string{}, (*p.Features)...)
	}
	if p.IsAvailable != nil {
		l.IsAvailable = *p.IsAvailable
	}
	if p.Slug != nil {
		l.Slug = *p.Slug
	}
	return l
}

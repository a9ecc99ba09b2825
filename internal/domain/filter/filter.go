// Package filter narrows a listing set by make, price range and year range.
// The same predicates back the SQL pushdown in the postgres store, the
// in-memory store, and the client-side re-filter of a fetched page.
package filter

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"autohaven/internal/common"
	"autohaven/internal/domain/model"
)

// Query keys shared by the search form, the API and the client.
const (
	KeyMake     = "make"
	KeyPriceMin = "priceMin"
	KeyPriceMax = "priceMax"
	KeyYearMin  = "yearMin"
	KeyYearMax  = "yearMax"
)

// Criteria is a set of optional constraints. Nil bounds and an empty Make
// are unconstrained.
type Criteria struct {
	Make     string
	PriceMin *float64
	PriceMax *float64
	YearMin  *int
	YearMax  *int
}

// IsEmpty reports whether no constraint is set.
func (c Criteria) IsEmpty() bool {
	return c.Make == "" && c.PriceMin == nil && c.PriceMax == nil && c.YearMin == nil && c.YearMax == nil
}

// Matches evaluates the predicates in order make, priceMin, priceMax,
// yearMin, yearMax and stops at the first that fails.
func (c Criteria) Matches(l model.Listing) bool {
	if c.Make != "" && !strings.Contains(strings.ToLower(l.Make), strings.ToLower(c.Make)) {
		return false
	}
	if c.PriceMin != nil && l.Price < *c.PriceMin {
		return false
	}
	if c.PriceMax != nil && l.Price > *c.PriceMax {
		return false
	}
	if c.YearMin != nil && l.Year < *c.YearMin {
		return false
	}
	if c.YearMax != nil && l.Year > *c.YearMax {
		return false
	}
	return true
}

// Apply returns the listings that satisfy c, in input order.
func Apply(listings []model.Listing, c Criteria) []model.Listing {
	if c.IsEmpty() {
		return listings
	}
	out := make([]model.Listing, 0, len(listings))
	for _, l := range listings {
		if c.Matches(l) {
			out = append(out, l)
		}
	}
	return out
}

// ParseQuery reads criteria from URL query values. Make is taken verbatim so
// the server and Apply see the same substring. Blank bounds are absent;
// bounds that are not finite numbers yield a validation error naming each key.
func ParseQuery(q url.Values) (Criteria, error) {
	var (
		c    Criteria
		errs []common.FieldError
	)
	c.Make = q.Get(KeyMake)

	parseFloat := func(key string) *float64 {
		raw := strings.TrimSpace(q.Get(key))
		if raw == "" {
			return nil
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			errs = append(errs, common.FieldError{Field: key, Message: "must be a number"})
			return nil
		}
		return &v
	}
	parseInt := func(key string) *int {
		raw := strings.TrimSpace(q.Get(key))
		if raw == "" {
			return nil
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, common.FieldError{Field: key, Message: "must be an integer"})
			return nil
		}
		return &v
	}

	c.PriceMin = parseFloat(KeyPriceMin)
	c.PriceMax = parseFloat(KeyPriceMax)
	c.YearMin = parseInt(KeyYearMin)
	c.YearMax = parseInt(KeyYearMax)

	if len(errs) > 0 {
		return Criteria{}, &common.ValidationError{Fields: errs}
	}
	return c, nil
}

// Values encodes c with the keys ParseQuery reads.
func (c Criteria) Values() url.Values {
	v := url.Values{}
	if c.Make != "" {
		v.Set(KeyMake, c.Make)
	}
	if c.PriceMin != nil {
		v.Set(KeyPriceMin, strconv.FormatFloat(*c.PriceMin, 'f', -1, 64))
	}
	if c.PriceMax != nil {
		v.Set(KeyPriceMax, strconv.FormatFloat(*c.PriceMax, 'f', -1, 64))
	}
	if c.YearMin != nil {
		v.Set(KeyYearMin, strconv.Itoa(*c.YearMin))
	}
	if c.YearMax != nil {
		v.Set(KeyYearMax, strconv.Itoa(*c.YearMax))
	}
	return v
}

func (c Criteria) String() string {
	return fmt.Sprintf("filter(%s)", c.Values().Encode())
}

// Float and Int build optional bounds.
func Float(v float64) *float64 { return &v }
func Int(v int) *int           { return &v }

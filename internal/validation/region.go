package validation

import "fmt"

// Region names a part of the request that can carry a sub-schema.
type Region string

const (
	RegionBody    Region = "body"
	RegionQuery   Region = "query"
	RegionParams  Region = "params"
	RegionHeaders Region = "headers"
)

// Regions lists every region in validation order. Violations of the
// aggregate error follow this order.
var Regions = [...]Region{RegionBody, RegionQuery, RegionParams, RegionHeaders}

// Valid reports whether r is one of the four known regions.
func (r Region) Valid() bool {
	return r.index() >= 0
}

func (r Region) index() int {
	for i, known := range Regions {
		if r == known {
			return i
		}
	}
	return -1
}

// ParseRegion converts a region name into a Region.
func ParseRegion(name string) (Region, error) {
	r := Region(name)
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRegion, name)
	}
	return r, nil
}

// UnknownPolicy tells, per region, whether fields not declared by the
// sub-schema are accepted.
type UnknownPolicy map[Region]bool

// DefaultAllowUnknown returns the default policy table. Every call returns a
// new map so callers can never change the defaults of other validators.
func DefaultAllowUnknown() UnknownPolicy {
	return UnknownPolicy{
		RegionBody:    true,
		RegionQuery:   true,
		RegionParams:  true,
		RegionHeaders: true,
	}
}

func (p UnknownPolicy) clone() UnknownPolicy {
	out := make(UnknownPolicy, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

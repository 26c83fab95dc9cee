package validation

// Request gives the validator access to the data of each region.
//
// RegionData is only called for regions that have a sub-schema, so adapters
// can read expensive regions (the body) lazily.
type Request interface {
	RegionData(r Region) (any, error)
}

// RequestFunc adapts a function to the Request interface.
type RequestFunc func(r Region) (any, error)

// RegionData calls f.
func (f RequestFunc) RegionData(r Region) (any, error) {
	return f(r)
}

// Data is an in-memory Request, handy for tests and offline checks.
type Data map[Region]any

// RegionData returns the stored value for r, or nil.
func (d Data) RegionData(r Region) (any, error) {
	return d[r], nil
}

package types

// City is a catalog-resolved locality. Two cities are the same locality when
// their IDs match; the remaining fields are display data.
type City struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Region    string  `json:"region,omitempty"`
}

// Equal reports whether c and other refer to the same locality.
func (c City) Equal(other City) bool {
	return c.ID == other.ID
}

// IsZero reports whether c carries no identifier.
func (c City) IsZero() bool {
	return c.ID == ""
}

// Coordinates is a device or network reported position in decimal degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

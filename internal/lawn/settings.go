package lawn

// Settings is the single lawn profile.
type Settings struct {
	GrassType      GrassType `json:"grassType"`
	ZipCode        string    `json:"zipCode" validate:"omitempty,max=16"`
	CountryCode    string    `json:"countryCode,omitempty" validate:"omitempty,len=2"`
	SquareFootage  float64   `json:"squareFootage" validate:"gte=0"`
	UseGeolocation bool      `json:"useGeolocation"`
}

// Country returns the configured country code, defaulting to US.
func (s Settings) Country() string {
	if s.CountryCode == "" {
		return "US"
	}
	return s.CountryCode
}

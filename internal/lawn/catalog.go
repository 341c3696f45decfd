package lawn

// ProductCatalogEntry describes a commercial product and how often it is
// normally reapplied.
type ProductCatalogEntry struct {
	Name               string `json:"name"`
	BaseIntervalMonths int    `json:"baseIntervalMonths"`

	// Fertilizer metadata.
	NPK         string `json:"npk,omitempty"`
	SlowRelease bool   `json:"slowRelease,omitempty"`
	Organic     bool   `json:"organic,omitempty"`

	// Iron metadata. IronContentPct is zero for custom blends.
	IronContentPct float64 `json:"ironContentPct,omitempty"`
	Liquid         bool    `json:"liquid,omitempty"`
	Granular       bool    `json:"granular,omitempty"`
}

// Catalog maps product names to catalog entries.
type Catalog map[string]ProductCatalogEntry

// Lookup returns the entry for name.
func (c Catalog) Lookup(name string) (ProductCatalogEntry, bool) {
	e, ok := c[name]
	return e, ok
}

var fertilizerCatalog = Catalog{
	"Scotts Turf Builder":   {Name: "Scotts Turf Builder", BaseIntervalMonths: 6, NPK: "32-0-4", SlowRelease: true},
	"Milorganite":           {Name: "Milorganite", BaseIntervalMonths: 8, NPK: "6-4-0", Organic: true},
	"Lesco Professional":    {Name: "Lesco Professional", BaseIntervalMonths: 6, NPK: "18-0-6", SlowRelease: true},
	"Pennington UltraGreen": {Name: "Pennington UltraGreen", BaseIntervalMonths: 6, NPK: "30-0-4", SlowRelease: true},
	"Custom Mix":            {Name: "Custom Mix", BaseIntervalMonths: 6, NPK: "custom"},
}

var ironCatalog = Catalog{
	"Ferrous Sulfate": {Name: "Ferrous Sulfate", BaseIntervalMonths: 4, IronContentPct: 20},
	"Chelated Iron":   {Name: "Chelated Iron", BaseIntervalMonths: 4, IronContentPct: 6, Liquid: true},
	"Ironite":         {Name: "Ironite", BaseIntervalMonths: 6, IronContentPct: 1.5, Granular: true},
	"Custom Iron":     {Name: "Custom Iron", BaseIntervalMonths: 4},
}

// FertilizerCatalog returns a copy of the fertilizer product catalog.
func FertilizerCatalog() Catalog { return fertilizerCatalog.clone() }

// IronCatalog returns a copy of the iron product catalog.
func IronCatalog() Catalog { return ironCatalog.clone() }

func (c Catalog) clone() Catalog {
	out := make(Catalog, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

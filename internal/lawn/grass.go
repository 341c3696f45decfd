package lawn

// GrassType is a turfgrass species name as stored in settings.
type GrassType string

// Season is the physiological class of a grass type.
type Season string

const (
	SeasonCool         Season = "cool"
	SeasonWarm         Season = "warm"
	SeasonUnclassified Season = "unclassified"
)

const (
	KentuckyBluegrass GrassType = "Kentucky Bluegrass"
	PerennialRyegrass GrassType = "Perennial Ryegrass"
	TallFescue        GrassType = "Tall Fescue"
	FineFescue        GrassType = "Fine Fescue"
	Bermudagrass      GrassType = "Bermudagrass"
	Zoysiagrass       GrassType = "Zoysiagrass"
	StAugustinegrass  GrassType = "St. Augustinegrass"
	Centipedegrass    GrassType = "Centipedegrass"
	Buffalograss      GrassType = "Buffalograss"
	OtherGrass        GrassType = "Other"
	UnspecifiedGrass  GrassType = ""
)

var grassSeasons = map[GrassType]Season{
	KentuckyBluegrass: SeasonCool,
	PerennialRyegrass: SeasonCool,
	TallFescue:        SeasonCool,
	FineFescue:        SeasonCool,
	Bermudagrass:      SeasonWarm,
	Zoysiagrass:       SeasonWarm,
	StAugustinegrass:  SeasonWarm,
	Centipedegrass:    SeasonWarm,
	Buffalograss:      SeasonWarm,
}

// Season classifies the grass type. Anything outside the known species,
// including "Other" and the empty value, is unclassified.
func (g GrassType) Season() Season {
	if s, ok := grassSeasons[g]; ok {
		return s
	}
	return SeasonUnclassified
}

// GrassTypes lists the selectable grass types in display order.
func GrassTypes() []GrassType {
	return []GrassType{
		KentuckyBluegrass, PerennialRyegrass, TallFescue, FineFescue,
		Bermudagrass, Zoysiagrass, StAugustinegrass, Centipedegrass, Buffalograss,
		OtherGrass,
	}
}

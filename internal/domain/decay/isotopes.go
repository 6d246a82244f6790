package decay

// Half-lives in minutes for the isotopes the site produces. Values follow
// the nuclide charts used by the planning defaults.
const (
	HalfLifeF18   = 109.8   // Fluorine-18 (FDG and analogues)
	HalfLifeGa68  = 67.7    // Gallium-68 (DOTATATE, PSMA)
	HalfLifeTc99m = 360.6   // Technetium-99m
	HalfLifeI131  = 11556.0 // Iodine-131, ~8.02 days
	HalfLifeLu177 = 9568.8  // Lutetium-177, ~6.65 days
)

// Isotope pairs a display symbol with its half-life.
type Isotope struct {
	Symbol          string  `json:"symbol"`
	HalfLifeMinutes float64 `json:"half_life_minutes"`
}

// Catalog lists the supported isotopes, shortest-lived first.
func Catalog() []Isotope {
	return []Isotope{
		{Symbol: "Ga-68", HalfLifeMinutes: HalfLifeGa68},
		{Symbol: "F-18", HalfLifeMinutes: HalfLifeF18},
		{Symbol: "Tc-99m", HalfLifeMinutes: HalfLifeTc99m},
		{Symbol: "Lu-177", HalfLifeMinutes: HalfLifeLu177},
		{Symbol: "I-131", HalfLifeMinutes: HalfLifeI131},
	}
}

// BySymbol returns the catalog entry for a symbol, or false when the symbol
// is not a supported isotope.
func BySymbol(symbol string) (Isotope, bool) {
	for _, iso := range Catalog() {
		if iso.Symbol == symbol {
			return iso, true
		}
	}
	return Isotope{}, false
}

package assessment

// Category is the canonical property category key.
type Category string

// Property categories.
const (
	CategoryResidential Category = "residential"
	CategoryCommercial  Category = "commercial"
	CategoryIndustrial  Category = "industrial"
	CategoryAgriculture Category = "agriculture"
)

// UsageMode is the canonical usage key.
type UsageMode string

// Usage modes. Mixed and commercial are valid stored values but have no
// entry in the usage multiplier table.
const (
	UsageSelf       UsageMode = "self"
	UsageRented     UsageMode = "rented"
	UsageMixed      UsageMode = "mixed"
	UsageCommercial UsageMode = "commercial"
)

// fallbackMultiplier is applied for any key missing from a table.
const fallbackMultiplier = 1.0

var baseRates = map[Category]float64{
	CategoryResidential: 2.5,
	CategoryCommercial:  5.0,
	CategoryIndustrial:  3.5,
	CategoryAgriculture: 1.5,
}

var zoneMultipliers = map[string]float64{
	"A": 1.3,
	"B": 1.1,
	"C": 1.0,
}

var usageMultipliers = map[UsageMode]float64{
	UsageSelf:   1.0,
	UsageRented: 1.2,
}

// BaseRate returns the per-square-foot rate for a category.
// The second value is false when the category is unknown and the fallback was used.
func BaseRate(c Category) (float64, bool) {
	if rate, ok := baseRates[c]; ok {
		return rate, true
	}
	return fallbackMultiplier, false
}

// ZoneMultiplier returns the multiplier for an already normalized zone letter.
func ZoneMultiplier(zone string) (float64, bool) {
	if m, ok := zoneMultipliers[zone]; ok {
		return m, true
	}
	return fallbackMultiplier, false
}

// UsageMultiplier returns the multiplier for a usage mode.
func UsageMultiplier(u UsageMode) (float64, bool) {
	if m, ok := usageMultipliers[u]; ok {
		return m, true
	}
	return fallbackMultiplier, false
}

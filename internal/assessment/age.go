package assessment

// Age factor steps. Bounds are inclusive whole years.
const (
	ageFactorNew      = 1.0
	ageFactorModerate = 0.9 // 11-20 years
	ageFactorOld      = 0.8 // 21-30 years
	ageFactorVeryOld  = 0.7 // over 30 years
)

// BuildingAge returns currentYear minus the construction year.
// A missing year or a year in the future yields 0.
func BuildingAge(currentYear int, constructionYear Outcome[int]) int {
	if constructionYear.Defaulted {
		return 0
	}
	age := currentYear - constructionYear.Value
	if age < 0 {
		return 0
	}
	return age
}

// AgeFactor maps a building age in years to its depreciation step.
func AgeFactor(age int) float64 {
	switch {
	case age >= 11 && age <= 20:
		return ageFactorModerate
	case age >= 21 && age <= 30:
		return ageFactorOld
	case age > 30:
		return ageFactorVeryOld
	default:
		return ageFactorNew
	}
}

// Package assessment computes property tax from property attributes.
//
// The calculator is the single source of the tax formula. The HTTP create
// and update paths, the preview endpoint and the CLI all call it, so a
// previewed amount always equals the amount persisted for the same input
// and year.
package assessment

import (
	"fmt"
	"math"
	"time"
)

// FormulaVersion identifies the rate tables and age policy in this package.
// It is stored with every assessed record.
const FormulaVersion = "2024.1"

// Breakdown lists every factor that went into an assessment.
type Breakdown struct {
	Area            float64 `json:"area"`
	BaseRate        float64 `json:"baseRate"`
	ZoneMultiplier  float64 `json:"zoneMultiplier"`
	UsageMultiplier float64 `json:"usageMultiplier"`
	AgeFactor       float64 `json:"ageFactor"`
	Age             int     `json:"age"`
}

// Assessment is the result of a computation.
type Assessment struct {
	Fields         Normalized `json:"normalizedFields"`
	Breakdown      Breakdown  `json:"breakdown"`
	FinalTaxAmount int64      `json:"finalTaxAmount"`
	FormulaVersion string     `json:"formulaVersion"`
	CurrentYear    int        `json:"currentYear"`
	Warnings       []string   `json:"warnings,omitempty"`
}

// Calculator computes assessments against a clock used only to derive
// the current calendar year.
type Calculator struct {
	now func() time.Time
}

// NewCalculator returns a Calculator. A nil clock means time.Now.
func NewCalculator(now func() time.Time) *Calculator {
	if now == nil {
		now = time.Now
	}
	return &Calculator{now: now}
}

// Compute assesses raw input using the calculator's current year.
func (c *Calculator) Compute(in RawInput) Assessment {
	return ComputeAt(in, c.now().Year())
}

// ComputeAt assesses raw input as of the given calendar year. It is pure:
// equal arguments always produce equal results.
func ComputeAt(in RawInput, currentYear int) Assessment {
	fields := Normalize(in)

	baseRate, baseKnown := BaseRate(fields.Category.Value)
	zoneMult, zoneKnown := ZoneMultiplier(fields.Zone.Value)
	usageMult, usageKnown := UsageMultiplier(fields.Usage.Value)
	age := BuildingAge(currentYear, fields.ConstructionYear)
	ageFactor := AgeFactor(age)
	area := fields.BuiltUpArea.Value

	// Multiplication order is fixed so results are bit-for-bit reproducible.
	raw := area * baseRate * zoneMult * usageMult * ageFactor

	return Assessment{
		Fields: fields,
		Breakdown: Breakdown{
			Area:            area,
			BaseRate:        baseRate,
			ZoneMultiplier:  zoneMult,
			UsageMultiplier: usageMult,
			AgeFactor:       ageFactor,
			Age:             age,
		},
		FinalTaxAmount: roundHalfUp(raw),
		FormulaVersion: FormulaVersion,
		CurrentYear:    currentYear,
		Warnings:       warnings(in, fields, baseKnown, zoneKnown, usageKnown),
	}
}

// roundHalfUp rounds to the nearest whole unit, saturating at zero and
// math.MaxInt64.
func roundHalfUp(x float64) int64 {
	r := math.Floor(x + 0.5)
	switch {
	case !(r > 0):
		return 0
	case r >= math.MaxInt64:
		return math.MaxInt64
	}
	return int64(r)
}

func warnings(in RawInput, n Normalized, baseKnown, zoneKnown, usageKnown bool) []string {
	var out []string
	if n.Category.Defaulted {
		out = append(out, fmt.Sprintf("propertyType %q not recognised, assessed as %s", toLabel(in.PropertyType), n.Category.Value))
	}
	if !baseKnown {
		out = append(out, fmt.Sprintf("no base rate for category %s, rate 1 applied", n.Category.Value))
	}
	if n.Usage.Defaulted {
		out = append(out, fmt.Sprintf("usageType %q not recognised, assessed as %s", toLabel(in.UsageType), n.Usage.Value))
	}
	if !usageKnown {
		out = append(out, fmt.Sprintf("no multiplier for usage %s, multiplier 1 applied", n.Usage.Value))
	}
	if !zoneKnown {
		out = append(out, fmt.Sprintf("zone %q not in rate table, multiplier 1 applied", n.Zone.Value))
	}
	if n.BuiltUpArea.Defaulted {
		out = append(out, "builtUpArea missing or invalid, assessed as 0")
	}
	if n.ConstructionYear.Defaulted {
		out = append(out, "constructionYear missing or invalid, building treated as new")
	}
	return out
}

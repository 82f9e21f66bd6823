package assessment

import (
	"math"
	"strings"

	"github.com/spf13/cast"
)

// Labels accepted from forms. Matching is case-sensitive.
const (
	LabelResidential  = "Residential"
	LabelCommercial   = "Commercial"
	LabelIndustrial   = "Industrial"
	LabelSelfOccupied = "Self-Occupied"
	LabelRented       = "Rented"
)

// RawInput is the assessment-relevant part of a property form as submitted.
// Fields are untyped so any JSON value decodes. Numeric fields accept
// numbers, numeric strings, booleans or null; label fields accept any
// scalar, which is compared in its string form.
type RawInput struct {
	PropertyType     interface{} `json:"propertyType"`
	UsageType        interface{} `json:"usageType"`
	Zone             interface{} `json:"zone"`
	BuiltUpArea      interface{} `json:"builtUpArea"`
	ConstructionYear interface{} `json:"constructionYear"`
}

// Outcome is a normalized value together with whether a default replaced the input.
type Outcome[T any] struct {
	Value     T    `json:"value"`
	Defaulted bool `json:"defaulted"`
}

// Normalized holds the canonical keys derived from a RawInput.
type Normalized struct {
	Category         Outcome[Category]  `json:"category"`
	Usage            Outcome[UsageMode] `json:"usage"`
	Zone             Outcome[string]    `json:"zone"`
	BuiltUpArea      Outcome[float64]   `json:"builtUpArea"`
	ConstructionYear Outcome[int]       `json:"constructionYear"`
}

// Normalize coerces raw input into canonical keys. It never fails: every
// malformed or missing field resolves to a default and is flagged.
//
// Only the exact labels Residential, Commercial and Industrial are
// recognised; anything else, Agriculture included, becomes residential.
func Normalize(in RawInput) Normalized {
	zone := toLabel(in.Zone)
	return Normalized{
		Category:         normalizeCategory(toLabel(in.PropertyType)),
		Usage:            normalizeUsage(toLabel(in.UsageType)),
		Zone:             Outcome[string]{Value: strings.ToUpper(zone), Defaulted: zone == ""},
		BuiltUpArea:      normalizeArea(in.BuiltUpArea),
		ConstructionYear: normalizeYear(in.ConstructionYear),
	}
}

func normalizeCategory(label string) Outcome[Category] {
	switch label {
	case LabelResidential:
		return Outcome[Category]{Value: CategoryResidential}
	case LabelCommercial:
		return Outcome[Category]{Value: CategoryCommercial}
	case LabelIndustrial:
		return Outcome[Category]{Value: CategoryIndustrial}
	default:
		return Outcome[Category]{Value: CategoryResidential, Defaulted: true}
	}
}

func normalizeUsage(label string) Outcome[UsageMode] {
	switch label {
	case LabelSelfOccupied:
		return Outcome[UsageMode]{Value: UsageSelf}
	case LabelRented:
		return Outcome[UsageMode]{Value: UsageRented}
	default:
		return Outcome[UsageMode]{Value: UsageSelf, Defaulted: true}
	}
}

// MaxBuiltUpArea is the largest area assessed. Larger values are treated
// as invalid so the final amount always fits in an int64.
const MaxBuiltUpArea = 1e9

func normalizeArea(v interface{}) Outcome[float64] {
	area, ok := toNumber(v)
	if !ok || area < 0 || area > MaxBuiltUpArea {
		return Outcome[float64]{Value: 0, Defaulted: true}
	}
	return Outcome[float64]{Value: area}
}

// maxYear bounds accepted years so the int conversion cannot overflow.
const maxYear = 9999

// normalizeYear truncates to a whole year. Zero counts as missing.
func normalizeYear(v interface{}) Outcome[int] {
	year, ok := toNumber(v)
	if !ok || math.Trunc(year) == 0 || math.Abs(year) > maxYear {
		return Outcome[int]{Value: 0, Defaulted: true}
	}
	return Outcome[int]{Value: int(math.Trunc(year))}
}

// toLabel returns the string form of a scalar label. Nil, objects and
// arrays yield the empty string.
func toLabel(v interface{}) string {
	s, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	return s
}

// toNumber reports false for nil, blank, non-numeric, NaN and infinite values.
func toNumber(v interface{}) (float64, bool) {
	if v == nil {
		return 0, false
	}
	if s, isString := v.(string); isString {
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, false
		}
		v = s
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// DefaultedFields names the input fields that were replaced by a default.
func (n Normalized) DefaultedFields() []string {
	var fields []string
	if n.Category.Defaulted {
		fields = append(fields, "propertyType")
	}
	if n.Usage.Defaulted {
		fields = append(fields, "usageType")
	}
	if n.Zone.Defaulted {
		fields = append(fields, "zone")
	}
	if n.BuiltUpArea.Defaulted {
		fields = append(fields, "builtUpArea")
	}
	if n.ConstructionYear.Defaulted {
		fields = append(fields, "constructionYear")
	}
	return fields
}

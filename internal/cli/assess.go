package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Vroy4298/land-tax-system/internal/assessment"
	"github.com/spf13/cobra"
)

type assessOptions struct {
	propertyType string
	usageType    string
	zone         string
	area         string
	year         string
	asOf         int
	inputFile    string
}

func newAssessCmd(root *RootOptions) *cobra.Command {
	opts := &assessOptions{}

	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Compute a property tax assessment",
		Long: "Compute a property tax assessment from flags or from a JSON file shaped like the\n" +
			"preview request body. Input is never rejected; unrecognised values fall back to\n" +
			"defaults and are reported as warnings.",
		Example: "  taxctl assess --type Residential --usage Self-Occupied --zone A --area 1000 --year 2001\n" +
			"  taxctl assess --input property.json -o json",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := opts.rawInput()
			if err != nil {
				return err
			}

			year := opts.asOf
			if year == 0 {
				year = time.Now().Year()
			}
			a := assessment.ComputeAt(raw, year)

			if root.Output == OutputJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(a)
			}
			return writeAssessmentText(cmd.OutOrStdout(), a)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.propertyType, "type", "", "property type label (Residential, Commercial, Industrial)")
	f.StringVar(&opts.usageType, "usage", "", "usage label (Self-Occupied, Rented)")
	f.StringVar(&opts.zone, "zone", "", "zone letter")
	f.StringVar(&opts.area, "area", "", "built-up area in square feet")
	f.StringVar(&opts.year, "year", "", "construction year")
	f.IntVar(&opts.asOf, "as-of", 0, "assess as of this calendar year (default: current year)")
	f.StringVarP(&opts.inputFile, "input", "i", "", "read the property from a JSON file, - for stdin")

	return cmd
}

// rawInput builds the input from --input or from the individual flags.
// Blank flags stay unset so they normalize exactly like missing JSON fields.
func (o *assessOptions) rawInput() (assessment.RawInput, error) {
	if o.inputFile != "" {
		return readRawInput(o.inputFile)
	}

	raw := assessment.RawInput{
		PropertyType: o.propertyType,
		UsageType:    o.usageType,
		Zone:         o.zone,
	}
	if o.area != "" {
		raw.BuiltUpArea = o.area
	}
	if o.year != "" {
		raw.ConstructionYear = o.year
	}
	return raw, nil
}

func readRawInput(path string) (assessment.RawInput, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return assessment.RawInput{}, fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	var raw assessment.RawInput
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return assessment.RawInput{}, fmt.Errorf("failed to parse input: %w", err)
	}
	return raw, nil
}

func writeAssessmentText(w io.Writer, a assessment.Assessment) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	b := a.Breakdown
	rows := [][2]string{
		{"Category", string(a.Fields.Category.Value)},
		{"Usage", string(a.Fields.Usage.Value)},
		{"Zone", a.Fields.Zone.Value},
		{"Built-up area", fmt.Sprintf("%g sq ft", b.Area)},
		{"Building age", fmt.Sprintf("%d years", b.Age)},
		{"Base rate", fmt.Sprintf("%g", b.BaseRate)},
		{"Zone multiplier", fmt.Sprintf("%g", b.ZoneMultiplier)},
		{"Usage multiplier", fmt.Sprintf("%g", b.UsageMultiplier)},
		{"Age factor", fmt.Sprintf("%g", b.AgeFactor)},
		{"Final tax", fmt.Sprintf("%d", a.FinalTaxAmount)},
		{"Formula", fmt.Sprintf("%s (year %d)", a.FormulaVersion, a.CurrentYear)},
	}
	for _, row := range rows {
		fmt.Fprintf(tw, "%s:\t%s\n", row[0], row[1])
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(a.Warnings) > 0 {
		fmt.Fprintf(w, "\nWarnings:\n  - %s\n", strings.Join(a.Warnings, "\n  - "))
	}
	return nil
}

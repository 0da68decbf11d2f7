package dataset

import (
	"strconv"

	"github.com/goliatone/go-laptopprice/pkg/feature"
)

var (
	ramOptions = []int{2, 4, 6, 8, 12, 16, 24, 32, 64}
	hddOptions = []int{0, 128, 256, 512, 1024, 2048}
	ssdOptions = []int{0, 8, 128, 256, 512, 1024}

	resolutionOptions = []string{
		"1920x1080", "1366x768", "1600x900", "3840x2160",
		"3200x1800", "2880x1800", "2560x1600", "2560x1440", "2304x1440",
	}
	yesNoOptions = []string{"No", "Yes"}
)

// Choices holds the option lists offered by the form, keyed by raw field
// name.
type Choices map[string][]string

// ChoicesFrom derives the categorical lists from ds and adds the fixed
// numeric, resolution and Yes/No lists.
func ChoicesFrom(ds *Dataset) Choices {
	choices := FixedChoices()
	if ds == nil {
		return choices
	}
	choices[feature.FieldCompany] = ds.Distinct(feature.ColumnCompany)
	choices[feature.FieldType] = ds.Distinct(feature.ColumnTypeName)
	choices[feature.FieldCPU] = ds.Distinct(feature.ColumnCPUBrand)
	choices[feature.FieldGPU] = ds.Distinct(feature.ColumnGPUBrand)
	choices[feature.FieldOS] = ds.Distinct(feature.ColumnOS)
	return choices
}

// FixedChoices returns the lists that do not depend on the dataset.
func FixedChoices() Choices {
	return Choices{
		feature.FieldRAM:         itoa(ramOptions),
		feature.FieldHDD:         itoa(hddOptions),
		feature.FieldSSD:         itoa(ssdOptions),
		feature.FieldResolution:  append([]string(nil), resolutionOptions...),
		feature.FieldTouchscreen: append([]string(nil), yesNoOptions...),
		feature.FieldIPS:         append([]string(nil), yesNoOptions...),
	}
}

// For returns the options for field, or nil for free-form fields.
func (c Choices) For(field string) []string {
	return c[field]
}

func itoa(values []int) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strconv.Itoa(v)
	}
	return out
}

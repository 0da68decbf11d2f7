package feature

import (
	"math"
	"strconv"
	"strings"
)

const flagYes = "Yes"

// Build validates raw and assembles the pipeline's feature vector. Missing
// fields are reported before parse failures, the first absent name in
// RequiredFields order. Failures are *MissingFieldError or
// *InvalidValueError values.
func Build(raw RawInputs) (Vector, error) {
	if missing := raw.Missing(); len(missing) > 0 {
		return Vector{}, &MissingFieldError{Field: missing[0]}
	}

	ram, err := parseInt(raw, FieldRAM)
	if err != nil {
		return Vector{}, err
	}
	weight, err := parseFloat(raw, FieldWeight)
	if err != nil {
		return Vector{}, err
	}
	screenSize, err := parseFloat(raw, FieldScreenSize)
	if err != nil {
		return Vector{}, err
	}
	hdd, err := parseInt(raw, FieldHDD)
	if err != nil {
		return Vector{}, err
	}
	ssd, err := parseInt(raw, FieldSSD)
	if err != nil {
		return Vector{}, err
	}
	width, height, err := parseResolution(raw[FieldResolution])
	if err != nil {
		return Vector{}, err
	}
	ppi, err := PixelDensity(width, height, screenSize)
	if err != nil {
		return Vector{}, &InvalidValueError{
			Field:  FieldScreenSize,
			Value:  raw[FieldScreenSize],
			Reason: err.Error(),
			Err:    err,
		}
	}

	return Vector{
		Company:     raw[FieldCompany],
		TypeName:    raw[FieldType],
		Ram:         ram,
		Weight:      weight,
		Touchscreen: flag(raw[FieldTouchscreen]),
		IPS:         flag(raw[FieldIPS]),
		PPI:         ppi,
		CPUBrand:    raw[FieldCPU],
		HDD:         hdd,
		SSD:         ssd,
		GPUBrand:    raw[FieldGPU],
		OS:          raw[FieldOS],
	}, nil
}

// PixelDensity returns sqrt(width^2 + height^2) / screenSize. screenSize must
// be strictly positive and the result finite.
func PixelDensity(width, height int, screenSize float64) (float64, error) {
	if math.IsNaN(screenSize) || screenSize <= 0 {
		return 0, errNonPositiveScreen
	}
	w := float64(width)
	h := float64(height)
	ppi := math.Sqrt(w*w+h*h) / screenSize
	if math.IsNaN(ppi) || math.IsInf(ppi, 0) {
		return 0, errNonFinitePPI
	}
	return ppi, nil
}

// flag maps the Yes/No form controls. Only the exact string "Yes" counts.
func flag(raw string) int {
	if raw == flagYes {
		return 1
	}
	return 0
}

func parseInt(raw RawInputs, field string) (int, error) {
	value := raw[field]
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, &InvalidValueError{
			Field:  field,
			Value:  value,
			Reason: "expected an integer",
			Err:    err,
		}
	}
	return parsed, nil
}

func parseFloat(raw RawInputs, field string) (float64, error) {
	value := raw[field]
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, &InvalidValueError{
			Field:  field,
			Value:  value,
			Reason: "expected a number",
			Err:    err,
		}
	}
	if math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return 0, &InvalidValueError{
			Field:  field,
			Value:  value,
			Reason: "expected a finite number",
		}
	}
	return parsed, nil
}

func parseResolution(value string) (int, int, error) {
	invalid := func(reason string, err error) error {
		return &InvalidValueError{
			Field:  FieldResolution,
			Value:  value,
			Reason: reason,
			Err:    err,
		}
	}

	parts := strings.Split(value, "x")
	if len(parts) != 2 {
		return 0, 0, invalid(`expected "<width>x<height>"`, nil)
	}
	width, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, invalid("width is not an integer", err)
	}
	height, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, invalid("height is not an integer", err)
	}
	if width <= 0 || height <= 0 {
		return 0, 0, invalid("width and height must be positive", nil)
	}
	return width, height, nil
}

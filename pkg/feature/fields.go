package feature

// Raw form field names accepted by Build.
const (
	FieldCompany     = "company"
	FieldType        = "type"
	FieldRAM         = "ram"
	FieldWeight      = "weight"
	FieldTouchscreen = "touchscreen"
	FieldIPS         = "ips"
	FieldScreenSize  = "screen_size"
	FieldResolution  = "resolution"
	FieldCPU         = "cpu"
	FieldHDD         = "hdd"
	FieldSSD         = "ssd"
	FieldGPU         = "gpu"
	FieldOS          = "os"
)

// RequiredFields lists every raw field in the order the form submits them.
// Missing fields are reported in this order.
var RequiredFields = []string{
	FieldCompany,
	FieldType,
	FieldRAM,
	FieldWeight,
	FieldTouchscreen,
	FieldIPS,
	FieldScreenSize,
	FieldResolution,
	FieldCPU,
	FieldHDD,
	FieldSSD,
	FieldGPU,
	FieldOS,
}

// Pipeline column names. The order of Columns is the order the pipeline was
// trained on and must never change.
const (
	ColumnCompany     = "Company"
	ColumnTypeName    = "TypeName"
	ColumnRAM         = "Ram"
	ColumnWeight      = "Weight"
	ColumnTouchscreen = "Touchscreen"
	ColumnIPS         = "IPS"
	ColumnPPI         = "ppi"
	ColumnCPUBrand    = "Cpu brand"
	ColumnHDD         = "HDD"
	ColumnSSD         = "SSD"
	ColumnGPUBrand    = "Gpu brand"
	ColumnOS          = "os"
)

// Columns returns a copy of the pipeline column order.
func Columns() []string {
	return []string{
		ColumnCompany,
		ColumnTypeName,
		ColumnRAM,
		ColumnWeight,
		ColumnTouchscreen,
		ColumnIPS,
		ColumnPPI,
		ColumnCPUBrand,
		ColumnHDD,
		ColumnSSD,
		ColumnGPUBrand,
		ColumnOS,
	}
}

// CategoricalColumns lists the string-valued columns handled by the
// pipeline's encoder, in column order.
func CategoricalColumns() []string {
	return []string{ColumnCompany, ColumnTypeName, ColumnCPUBrand, ColumnGPUBrand, ColumnOS}
}

// IsCategorical reports whether column carries a string value.
func IsCategorical(column string) bool {
	switch column {
	case ColumnCompany, ColumnTypeName, ColumnCPUBrand, ColumnGPUBrand, ColumnOS:
		return true
	default:
		return false
	}
}

// RawInputs maps raw form field names to submitted string values.
type RawInputs map[string]string

// Clone returns a shallow copy of the inputs.
func (r RawInputs) Clone() RawInputs {
	if r == nil {
		return nil
	}
	out := make(RawInputs, len(r))
	for key, value := range r {
		out[key] = value
	}
	return out
}

// Missing returns the required fields absent from r, in declared order.
func (r RawInputs) Missing() []string {
	var missing []string
	for _, name := range RequiredFields {
		if _, ok := r[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

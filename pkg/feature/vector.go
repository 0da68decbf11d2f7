package feature

import "fmt"

// Vector is the single row handed to the pipeline. Field order mirrors
// Columns().
type Vector struct {
	Company     string  `json:"Company"`
	TypeName    string  `json:"TypeName"`
	Ram         int     `json:"Ram"`
	Weight      float64 `json:"Weight"`
	Touchscreen int     `json:"Touchscreen"`
	IPS         int     `json:"IPS"`
	PPI         float64 `json:"ppi"`
	CPUBrand    string  `json:"Cpu brand"`
	HDD         int     `json:"HDD"`
	SSD         int     `json:"SSD"`
	GPUBrand    string  `json:"Gpu brand"`
	OS          string  `json:"os"`
}

// Values returns the vector's values in column order. Strings stay strings,
// integers are int and floats are float64.
func (v Vector) Values() []any {
	return []any{
		v.Company,
		v.TypeName,
		v.Ram,
		v.Weight,
		v.Touchscreen,
		v.IPS,
		v.PPI,
		v.CPUBrand,
		v.HDD,
		v.SSD,
		v.GPUBrand,
		v.OS,
	}
}

// Categorical returns the string value stored under a categorical column.
func (v Vector) Categorical(column string) (string, error) {
	switch column {
	case ColumnCompany:
		return v.Company, nil
	case ColumnTypeName:
		return v.TypeName, nil
	case ColumnCPUBrand:
		return v.CPUBrand, nil
	case ColumnGPUBrand:
		return v.GPUBrand, nil
	case ColumnOS:
		return v.OS, nil
	default:
		return "", fmt.Errorf("feature: column %q is not categorical", column)
	}
}

// Numeric returns the value stored under a numeric column as float64.
func (v Vector) Numeric(column string) (float64, error) {
	switch column {
	case ColumnRAM:
		return float64(v.Ram), nil
	case ColumnWeight:
		return v.Weight, nil
	case ColumnTouchscreen:
		return float64(v.Touchscreen), nil
	case ColumnIPS:
		return float64(v.IPS), nil
	case ColumnPPI:
		return v.PPI, nil
	case ColumnHDD:
		return float64(v.HDD), nil
	case ColumnSSD:
		return float64(v.SSD), nil
	default:
		return 0, fmt.Errorf("feature: column %q is not numeric", column)
	}
}

package pipeline_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-laptopprice/pkg/feature"
	"github.com/goliatone/go-laptopprice/pkg/pipeline"
	"github.com/goliatone/go-laptopprice/samples"
)

func dellVector() feature.Vector {
	return feature.Vector{
		Company:  "Dell",
		TypeName: "Notebook",
		Ram:      8,
		Weight:   2.1,
		IPS:      1,
		PPI:      141.21,
		CPUBrand: "Intel Core i5",
		SSD:      256,
		GPUBrand: "Intel",
		OS:       "Windows",
	}
}

func smallSpec() pipeline.LinearSpec {
	return pipeline.LinearSpec{
		Kind:      pipeline.KindLinear,
		Columns:   feature.Columns(),
		Intercept: 10,
		Numeric: map[string]float64{
			"Ram": 0.1,
			"ppi": 0.01,
		},
		Categorical: map[string]map[string]float64{
			"Company":   {"Dell": 0.5, "HP": 0.25},
			"TypeName":  {"Notebook": 0},
			"Cpu brand": {"Intel Core i5": 0.2},
			"Gpu brand": {"Intel": 0},
			"os":        {"Windows": 0.3},
		},
	}
}

func TestLinear_ScoresVector(t *testing.T) {
	model, err := pipeline.NewLinear(smallSpec())
	require.NoError(t, err)

	got, err := model.Predict(context.Background(), dellVector())
	require.NoError(t, err)

	want := 10 + 0.1*8 + 0.01*141.21 + 0.5 + 0.2 + 0.3
	assert.InDelta(t, want, got, 1e-9)
}

func TestLinear_UnknownCategoryNamesColumnAndValue(t *testing.T) {
	model, err := pipeline.NewLinear(smallSpec())
	require.NoError(t, err)

	vector := dellVector()
	vector.Company = "Framework"
	_, err = model.Predict(context.Background(), vector)

	var unknown *pipeline.UnknownCategoryError
	require.True(t, errors.As(err, &unknown), "got %v", err)
	assert.Equal(t, "Company", unknown.Column)
	assert.Equal(t, "Framework", unknown.Value)
	assert.Contains(t, err.Error(), "Framework")
}

func TestLinear_RejectsColumnLayoutMismatch(t *testing.T) {
	spec := smallSpec()
	spec.Columns = append([]string{"TypeName", "Company"}, feature.Columns()[2:]...)

	_, err := pipeline.NewLinear(spec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "columns")
}

func TestLinear_RejectsMisplacedWeights(t *testing.T) {
	spec := smallSpec()
	spec.Numeric["Company"] = 1
	_, err := pipeline.NewLinear(spec)
	require.Error(t, err)

	spec = smallSpec()
	spec.Categorical["Ram"] = map[string]float64{"8": 1}
	_, err = pipeline.NewLinear(spec)
	require.Error(t, err)

	spec = smallSpec()
	delete(spec.Categorical, "os")
	_, err = pipeline.NewLinear(spec)
	require.Error(t, err)
}

func TestLinear_HonoursCancelledContext(t *testing.T) {
	model, err := pipeline.NewLinear(smallSpec())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = model.Predict(ctx, dellVector())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLinear_Levels(t *testing.T) {
	model, err := pipeline.NewLinear(smallSpec())
	require.NoError(t, err)
	assert.Equal(t, []string{"Dell", "HP"}, model.Levels("Company"))
	assert.Empty(t, model.Levels("Ram"))
}

func TestDecode_SamplePipeline(t *testing.T) {
	decoded, err := pipeline.Decode(samples.Pipeline())
	require.NoError(t, err)

	linear, ok := decoded.(*pipeline.Linear)
	require.True(t, ok, "decoded %T", decoded)

	logPrice, err := linear.Predict(context.Background(), dellVector())
	require.NoError(t, err)
	price := math.Exp(logPrice)
	assert.Greater(t, price, 20000.0)
	assert.Less(t, price, 150000.0)
}

func TestDecode_JSONArtifact(t *testing.T) {
	data := []byte(`{
  "kind": "linear",
  "columns": ["Company","TypeName","Ram","Weight","Touchscreen","IPS","ppi","Cpu brand","HDD","SSD","Gpu brand","os"],
  "intercept": 1.5,
  "numeric": {"Ram": 0},
  "categorical": {
    "Company": {"Dell": 0},
    "TypeName": {"Notebook": 0},
    "Cpu brand": {"Intel Core i5": 0},
    "Gpu brand": {"Intel": 0},
    "os": {"Windows": 0}
  }
}`)
	decoded, err := pipeline.Decode(data)
	require.NoError(t, err)

	got, err := decoded.Predict(context.Background(), dellVector())
	require.NoError(t, err)
	assert.InDelta(t, 1.5, got, 1e-12)
}

func TestDecode_Errors(t *testing.T) {
	cases := map[string]string{
		"empty":       "   ",
		"no kind":     "intercept: 1\n",
		"bad kind":    "kind: forest\n",
		"bad yaml":    "kind: [linear\n",
		"remote nurl": "kind: remote\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			decoded, err := pipeline.Decode([]byte(data))
			require.Error(t, err)
			assert.Nil(t, decoded)
		})
	}
}

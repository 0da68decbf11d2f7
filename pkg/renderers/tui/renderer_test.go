package tui

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-laptopprice/pkg/feature"
	"github.com/goliatone/go-laptopprice/pkg/model"
	"github.com/goliatone/go-laptopprice/pkg/render"
	"github.com/goliatone/go-laptopprice/pkg/testsupport"
)

// stubDriver answers prompts by field label. Inputs are queues so a test can
// script an invalid answer followed by a valid one.
type stubDriver struct {
	inputs       map[string][]string
	selections   map[string]string
	defaults     map[string]string
	infoMessages []string
	err          error
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	queue := s.inputs[cfg.Message]
	if len(queue) == 0 {
		return "", errors.New("no input scripted for " + cfg.Message)
	}
	s.inputs[cfg.Message] = queue[1:]
	s.recordDefault(cfg.Message, cfg.Default)
	return queue[0], nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	if s.err != nil {
		return -1, s.err
	}
	answer, ok := s.selections[cfg.Message]
	if !ok {
		return -1, errors.New("no selection scripted for " + cfg.Message)
	}
	if cfg.DefaultIndex >= 0 {
		s.recordDefault(cfg.Message, cfg.Options[cfg.DefaultIndex])
	}
	return indexOf(cfg.Options, answer), nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func (s *stubDriver) recordDefault(label, value string) {
	if s.defaults == nil {
		s.defaults = make(map[string]string)
	}
	s.defaults[label] = value
}

func dellDriver() *stubDriver {
	return &stubDriver{
		inputs: map[string][]string{
			"Weight (kg)":          {"2.1"},
			"Screen Size (inches)": {"15.6"},
		},
		selections: map[string]string{
			"Brand":             "Dell",
			"Type":              "Notebook",
			"RAM (in GB)":       "8",
			"Touchscreen":       "No",
			"IPS":               "Yes",
			"Screen Resolution": "1920x1080",
			"CPU":               "Intel Core i5",
			"HDD (in GB)":       "0",
			"SSD (in GB)":       "256",
			"GPU":               "Intel",
			"OS":                "Windows",
		},
	}
}

func TestRender_CollectsRawInputs(t *testing.T) {
	r, err := New(WithPromptDriver(dellDriver()))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	out, err := r.Render(context.Background(), testsupport.PredictionForm(t), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	var got feature.RawInputs
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if diff := cmp.Diff(testsupport.DellInputs(), got); diff != "" {
		t.Fatalf("raw inputs mismatch (-want +got):\n%s", diff)
	}
	if r.ContentType() != "application/json" {
		t.Fatalf("unexpected content type %q", r.ContentType())
	}
}

func TestRender_RetriesInvalidNumber(t *testing.T) {
	driver := dellDriver()
	driver.inputs["Weight (kg)"] = []string{"heavy", "-1", "2.1"}

	r, err := New(WithPromptDriver(driver), WithTheme(Theme{InfoPrefix: "! "}))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	if _, err := r.Render(context.Background(), testsupport.PredictionForm(t), render.RenderOptions{}); err != nil {
		t.Fatalf("render: %v", err)
	}

	if len(driver.infoMessages) != 2 {
		t.Fatalf("expected two validation messages, got %v", driver.infoMessages)
	}
	if !strings.HasPrefix(driver.infoMessages[0], "! Invalid Weight (kg)") {
		t.Fatalf("unexpected message %q", driver.infoMessages[0])
	}
	if !strings.Contains(driver.infoMessages[1], "min 0") {
		t.Fatalf("expected minimum violation, got %q", driver.infoMessages[1])
	}
}

func TestRender_PatternValidation(t *testing.T) {
	driver := &stubDriver{inputs: map[string][]string{"Resolution": {"invalid", "1366x768"}}}
	r, err := New(WithPromptDriver(driver), WithOutputFormat(OutputFormatPrettyText))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	form := model.FormModel{Fields: []model.Field{{
		Name:     feature.FieldResolution,
		Type:     model.FieldTypeString,
		Label:    "Resolution",
		Required: true,
		Validations: []model.ValidationRule{
			{Kind: model.ValidationRulePattern, Params: map[string]string{"pattern": `^[0-9]+x[0-9]+$`}},
		},
	}}}
	out, err := r.Render(context.Background(), form, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if string(out) != "resolution=1366x768\n" {
		t.Fatalf("unexpected output %q", out)
	}
	if len(driver.infoMessages) != 1 {
		t.Fatalf("expected one validation message, got %v", driver.infoMessages)
	}
}

func TestRender_PrefillAndErrors(t *testing.T) {
	driver := dellDriver()
	inputs := testsupport.DellInputs()
	inputs[feature.FieldResolution] = "1366x768"

	r, err := New(WithPromptDriver(driver), WithOutputFormat(OutputFormatFormURLEncoded), WithTheme(Theme{ErrorPrefix: "error: "}))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	out, err := r.Render(context.Background(), testsupport.PredictionForm(t), render.RenderOptions{
		Values:     render.ValuesFrom(inputs),
		Errors:     map[string][]string{feature.FieldRAM: {"must be a number"}},
		FormErrors: []string{"prediction failed"},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if driver.defaults["Screen Resolution"] != "1366x768" {
		t.Fatalf("expected prefilled resolution default, got %q", driver.defaults["Screen Resolution"])
	}
	if driver.defaults["Weight (kg)"] != "2.1" {
		t.Fatalf("expected prefilled weight default, got %q", driver.defaults["Weight (kg)"])
	}
	want := []string{"error: prediction failed", "error: RAM (in GB): must be a number"}
	if diff := cmp.Diff(want, driver.infoMessages); diff != "" {
		t.Fatalf("info messages mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(string(out), "company=Dell") || !strings.Contains(string(out), "resolution=1920x1080") {
		t.Fatalf("unexpected form output %q", out)
	}
}

func TestRender_SubmitTransformer(t *testing.T) {
	r, err := New(
		WithPromptDriver(dellDriver()),
		WithSubmitTransformer(func(values map[string]string) (map[string]string, error) {
			values[feature.FieldCompany] = strings.ToUpper(values[feature.FieldCompany])
			return values, nil
		}),
	)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	out, err := r.Render(context.Background(), testsupport.PredictionForm(t), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(string(out), `"company":"DELL"`) {
		t.Fatalf("expected transformed company, got %s", out)
	}

	failing, err := New(
		WithPromptDriver(dellDriver()),
		WithSubmitTransformer(func(map[string]string) (map[string]string, error) {
			return nil, errors.New("boom")
		}),
	)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	if _, err := failing.Render(context.Background(), testsupport.PredictionForm(t), render.RenderOptions{}); err == nil {
		t.Fatalf("expected transformer error")
	}
}

func TestRender_Aborted(t *testing.T) {
	r, err := New(WithPromptDriver(&stubDriver{err: ErrAborted}))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	_, err = r.Render(context.Background(), testsupport.PredictionForm(t), render.RenderOptions{})
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
}

func TestNew_RejectsUnknownFormat(t *testing.T) {
	if _, err := New(WithOutputFormat("yaml")); err == nil {
		t.Fatalf("expected error for unknown output format")
	}
}

func TestDisplayHelpStripsMarkup(t *testing.T) {
	field := model.Field{UIHints: map[string]string{model.HintHelp: "Used to compute <em>pixels per inch</em>."}}
	if got := displayHelp(field); got != "Used to compute pixels per inch." {
		t.Fatalf("unexpected help %q", got)
	}
}

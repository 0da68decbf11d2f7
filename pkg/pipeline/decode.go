package pipeline

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-laptopprice/pkg/inference"
)

// remoteSpec is the artifact shape for kind: remote.
type remoteSpec struct {
	Kind    string            `yaml:"kind" json:"kind"`
	URL     string            `yaml:"url" json:"url"`
	Headers map[string]string `yaml:"headers" json:"headers"`
}

type header struct {
	Kind string `yaml:"kind" json:"kind"`
}

func unmarshal(data []byte, out any) error {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		return json.Unmarshal(trimmed, out)
	}
	return yaml.Unmarshal(data, out)
}

// Decode parses a pipeline artifact (YAML or JSON) and returns the pipeline
// named by its kind. Options apply to remote pipelines only.
func Decode(data []byte, options ...RemoteOption) (inference.Pipeline, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("pipeline: artifact is empty")
	}

	var head header
	if err := unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("pipeline: parse artifact: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(head.Kind)) {
	case KindLinear:
		var spec LinearSpec
		if err := unmarshal(data, &spec); err != nil {
			return nil, fmt.Errorf("pipeline: parse linear artifact: %w", err)
		}
		spec.Kind = KindLinear
		model, err := NewLinear(spec)
		if err != nil {
			return nil, err
		}
		return model, nil
	case KindRemote:
		var spec remoteSpec
		if err := unmarshal(data, &spec); err != nil {
			return nil, fmt.Errorf("pipeline: parse remote artifact: %w", err)
		}
		opts := make([]RemoteOption, 0, len(spec.Headers)+len(options))
		for key, value := range spec.Headers {
			opts = append(opts, WithHeader(key, value))
		}
		opts = append(opts, options...)
		remote, err := NewRemote(spec.URL, opts...)
		if err != nil {
			return nil, err
		}
		return remote, nil
	case "":
		return nil, errors.New("pipeline: artifact does not declare a kind")
	default:
		return nil, fmt.Errorf("pipeline: unsupported kind %q", head.Kind)
	}
}

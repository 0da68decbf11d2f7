package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/goliatone/go-laptopprice/pkg/feature"
	"github.com/goliatone/go-laptopprice/pkg/inference"
	"github.com/goliatone/go-laptopprice/pkg/orchestrator"
	"github.com/goliatone/go-laptopprice/pkg/renderers/jsonmodel"
)

// PredictResponse is the body of POST /api/predict.
type PredictResponse struct {
	Price *int64 `json:"price,omitempty"`
	Error string `json:"error,omitempty"`
	Field string `json:"field,omitempty"`
}

var errUnsupportedMediaType = errors.New("server: unsupported content type")

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, http.StatusOK, s.pageRequest(r))
}

func (s *Server) handlePredictPage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}

	raw := inputsFromValues(r.PostForm)
	result := s.service.Predict(r.Context(), raw)

	req := s.pageRequest(r)
	req.Inputs = raw
	req.Result = &result
	s.renderPage(w, r, statusFor(result), req)
}

func (s *Server) handlePredictAPI(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	raw, err := readInputs(r)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, errUnsupportedMediaType) {
			status = http.StatusUnsupportedMediaType
		}
		writeJSON(w, status, PredictResponse{Error: err.Error()})
		return
	}

	result := s.service.Predict(r.Context(), raw)
	if price, ok := result.Price(); ok {
		writeJSON(w, http.StatusOK, PredictResponse{Price: &price})
		return
	}

	resp := PredictResponse{Error: result.Message()}
	var fieldErr feature.FieldError
	if errors.As(result.Err(), &fieldErr) {
		resp.Field = fieldErr.FieldName()
	}
	writeJSON(w, statusFor(result), resp)
}

func (s *Server) handleFormModel(w http.ResponseWriter, r *http.Request) {
	req := s.pageRequest(r)
	req.Renderer = jsonmodel.Name
	s.renderPage(w, r, http.StatusOK, req)
}

func (s *Server) handleDocument(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(s.document)
}

func (s *Server) pageRequest(r *http.Request) orchestrator.Request {
	query := r.URL.Query()
	req := orchestrator.Request{
		Renderer:     s.service.Registry().Negotiate(r.Header.Get("Accept"), ""),
		ThemeName:    s.themeName,
		ThemeVariant: s.themeVariant,
	}
	if name := strings.TrimSpace(query.Get("theme")); name != "" {
		req.ThemeName = name
	}
	if variant := strings.TrimSpace(query.Get("variant")); variant != "" {
		req.ThemeVariant = variant
	}
	return req
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, req orchestrator.Request) {
	renderer, err := s.service.Renderer(req.Renderer)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "resolve renderer", "renderer", req.Renderer, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	req.Renderer = renderer.Name()

	output, err := s.service.Render(r.Context(), req)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "render page", "renderer", req.Renderer, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", renderer.ContentType())
	w.Header().Add("Vary", "Accept")
	w.WriteHeader(status)
	_, _ = w.Write(output)
}

func statusFor(result inference.Result) int {
	if result.OK() {
		return http.StatusOK
	}
	return http.StatusInternalServerError
}

func readInputs(r *http.Request) (feature.RawInputs, error) {
	mediaType := "application/x-www-form-urlencoded"
	if header := r.Header.Get("Content-Type"); header != "" {
		parsed, _, err := mime.ParseMediaType(header)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", errUnsupportedMediaType, header)
		}
		mediaType = parsed
	}

	switch mediaType {
	case "application/json":
		return decodeJSONInputs(r)
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("server: parse form: %w", err)
		}
		return inputsFromValues(r.PostForm), nil
	default:
		return nil, fmt.Errorf("%w: %s", errUnsupportedMediaType, mediaType)
	}
}

// decodeJSONInputs accepts a flat object of strings, numbers, booleans or
// nulls. Booleans map to the Yes/No flags and nulls count as absent.
func decodeJSONInputs(r *http.Request) (feature.RawInputs, error) {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	var body map[string]any
	if err := dec.Decode(&body); err != nil {
		return nil, fmt.Errorf("server: decode json body: %w", err)
	}

	raw := make(feature.RawInputs, len(body))
	for key, value := range body {
		switch v := value.(type) {
		case nil:
		case string:
			raw[key] = v
		case json.Number:
			raw[key] = v.String()
		case bool:
			if v {
				raw[key] = "Yes"
			} else {
				raw[key] = "No"
			}
		default:
			return nil, fmt.Errorf("server: field %q must be a string, number or boolean", key)
		}
	}
	return raw, nil
}

func inputsFromValues(values url.Values) feature.RawInputs {
	raw := make(feature.RawInputs, len(values))
	for key, vals := range values {
		if len(vals) > 0 {
			raw[key] = vals[0]
		}
	}
	return raw
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

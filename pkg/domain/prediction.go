package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// PredictionRequest carries the five field measurements sent to /predict.
type PredictionRequest struct {
	Temperature float64 `json:"temperature"` // °C
	SoilPH      float64 `json:"soil_ph"`
	Rainfall    float64 `json:"rainfall"`   // mm
	FieldArea   float64 `json:"field_area"` // hectares
	Humidity    float64 `json:"humidity"`   // percent
}

// Mapping is one keyed section of a prediction response. Values are the
// decoded JSON scalars (float64, string, bool). A nil Mapping means the
// section was absent from the response.
type Mapping map[string]any

// Lookup returns the value for key. ok is false when the key is missing or
// its value is JSON null; zero, false and "" are present values.
func (m Mapping) Lookup(key string) (any, bool) {
	v, found := m[key]
	if !found || v == nil {
		return nil, false
	}
	return v, true
}

// Present reports whether the section was part of the response.
func (m Mapping) Present() bool {
	return m != nil
}

// PredictionResult is the staged recommendation returned by /predict.
// No key is guaranteed; every read goes through Mapping.Lookup.
type PredictionResult struct {
	Numeric    Mapping `json:"numeric,omitempty"`
	Text       Mapping `json:"text,omitempty"`
	Fertilizer Mapping `json:"fertilizer,omitempty"`
}

// UnmarshalJSON decodes each section on its own so that a malformed section
// reads as absent instead of failing the whole result.
func (r *PredictionResult) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode prediction result: %w", err)
	}
	r.Numeric = decodeMapping(raw["numeric"])
	r.Text = decodeMapping(raw["text"])
	r.Fertilizer = decodeMapping(raw["fertilizer"])
	return nil
}

func decodeMapping(raw json.RawMessage) Mapping {
	if len(raw) == 0 {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}

// PredictionHistoryEntry is one past submission with its outcome.
type PredictionHistoryEntry struct {
	ID             int64    `json:"id"`
	Temperature    float64  `json:"temperature"`
	SoilPH         float64  `json:"soil_ph"`
	Rainfall       float64  `json:"rainfall"`
	FieldArea      float64  `json:"field_area"`
	Humidity       *float64 `json:"humidity,omitempty"`
	PredictedYield *float64 `json:"predicted_yield_kg_ha"`
	HarvestingDate string   `json:"harvesting_date,omitempty"`
	CreatedAt      string   `json:"created_at,omitempty"`
}

// FormatValue renders a response scalar for display. Whole numbers print
// without a fractional part.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

package predict

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/smartpaddy/advisor/pkg/domain"
)

// Field identifies one input of the prediction form.
type Field int

const (
	FieldTemperature Field = iota
	FieldSoilPH
	FieldRainfall
	FieldFieldArea
	FieldHumidity
	NumFields
)

var fieldNames = [NumFields]string{"temperature", "soil_ph", "rainfall", "field_area", "humidity"}

var fieldLabels = [NumFields]string{
	"Temperature (°C)",
	"Soil pH",
	"Rainfall (mm)",
	"Field area (ha)",
	"Humidity (%)",
}

// Name is the wire key of the field.
func (f Field) Name() string {
	if f < 0 || f >= NumFields {
		return ""
	}
	return fieldNames[f]
}

// Label is the human-readable field title.
func (f Field) Label() string {
	if f < 0 || f >= NumFields {
		return ""
	}
	return fieldLabels[f]
}

// Form holds the raw text of each input, indexed by Field.
type Form [NumFields]string

// ValidationError reports an input that blocks submission.
type ValidationError struct {
	Field  Field
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field.Label(), e.Reason)
}

// Parse converts the form to a request. Every field must be a finite decimal
// number.
func Parse(form Form) (domain.PredictionRequest, error) {
	var vals [NumFields]float64
	for f := Field(0); f < NumFields; f++ {
		raw := strings.TrimSpace(form[f])
		if raw == "" {
			return domain.PredictionRequest{}, &ValidationError{Field: f, Value: form[f], Reason: "is required"}
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || isHex(raw) || math.IsNaN(v) || math.IsInf(v, 0) {
			return domain.PredictionRequest{}, &ValidationError{Field: f, Value: form[f], Reason: "must be a number"}
		}
		vals[f] = v
	}
	return domain.PredictionRequest{
		Temperature: vals[FieldTemperature],
		SoilPH:      vals[FieldSoilPH],
		Rainfall:    vals[FieldRainfall],
		FieldArea:   vals[FieldFieldArea],
		Humidity:    vals[FieldHumidity],
	}, nil
}

// isHex reports whether s uses Go's hexadecimal float syntax, which
// ParseFloat accepts but the service does not.
func isHex(s string) bool {
	s = strings.TrimLeft(s, "+-")
	return len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

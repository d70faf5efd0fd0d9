package risk

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	apperrors "github.com/sepsiscan/sepsiscan/internal/errors"
)

// ParseVitals validates the raw form payload into typed inputs. Temperature
// and heart rate are required; optional vitals must parse if present. The
// analyzers downstream never see NaN.
func ParseVitals(raw RawInputs) (*Inputs, error) {
	temp, err := parseRequired("temperature", raw.Temperature)
	if err != nil {
		return nil, err
	}
	hr, err := parseRequired("heart_rate", raw.HeartRate)
	if err != nil {
		return nil, err
	}

	in := &Inputs{
		Temperature:        temp,
		HeartRate:          hr,
		Symptoms:           strings.TrimSpace(raw.Symptoms),
		SymptomDuration:    strings.TrimSpace(raw.SymptomDuration),
		ActivityLevel:      strings.TrimSpace(raw.ActivityLevel),
		Medications:        strings.TrimSpace(raw.Medications),
		SubjectiveFeedback: strings.TrimSpace(raw.SubjectiveFeedback),
	}
	if in.ActivityLevel == "" {
		in.ActivityLevel = ActivityResting
	}

	if in.SpO2, err = parseOptional("spo2", raw.SpO2); err != nil {
		return nil, err
	}
	if in.SystolicBP, err = parseOptional("systolic_bp", raw.SystolicBP); err != nil {
		return nil, err
	}
	if in.RespiratoryRate, err = parseOptional("respiratory_rate", raw.RespiratoryRate); err != nil {
		return nil, err
	}

	return in, nil
}

func parseRequired(field, value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, apperrors.Wrap(apperrors.ErrInvalidVitals, "INPUT_001", fmt.Sprintf("%s is required", field))
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, apperrors.Wrap(apperrors.ErrInvalidVitals, "INPUT_001", fmt.Sprintf("%s is not a valid number: %q", field, value))
	}
	return f, nil
}

func parseOptional(field, value string) (*float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, apperrors.Wrap(apperrors.ErrInvalidVitals, "INPUT_001", fmt.Sprintf("%s is not a valid number: %q", field, value))
	}
	return &f, nil
}

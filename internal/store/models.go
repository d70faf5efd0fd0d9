package store

import (
	"encoding/json"

	"github.com/sepsiscan/sepsiscan/internal/profile"
)

// Profiles persist nested records as JSON text columns; the typed fields are
// rebuilt on load. pack and unpack keep the two views in sync.

func packProfile(p *profile.Profile) error {
	var err error
	if p.ConditionsJSON, err = marshalColumn(p.KnownConditions); err != nil {
		return err
	}
	if p.BaselineJSON, err = marshalColumn(p.Baseline); err != nil {
		return err
	}
	if p.ThresholdsJSON, err = marshalColumn(p.AdaptiveThresholds); err != nil {
		return err
	}
	if p.PatternsJSON, err = marshalColumn(p.PersonalPatterns); err != nil {
		return err
	}
	if p.RecoveryJSON, err = marshalColumn(p.RecoveryMode); err != nil {
		return err
	}
	if p.PrivacyJSON, err = marshalColumn(p.PrivacySettings); err != nil {
		return err
	}
	if p.EmergencyJSON, err = marshalColumn(p.EmergencySettings); err != nil {
		return err
	}
	if p.CaregiversJSON, err = marshalColumn(p.CaregiverContacts); err != nil {
		return err
	}
	return nil
}

func unpackProfile(p *profile.Profile) error {
	if err := unmarshalColumn(p.ConditionsJSON, &p.KnownConditions); err != nil {
		return err
	}
	if err := unmarshalColumn(p.BaselineJSON, &p.Baseline); err != nil {
		return err
	}
	if err := unmarshalColumn(p.ThresholdsJSON, &p.AdaptiveThresholds); err != nil {
		return err
	}
	if err := unmarshalColumn(p.PatternsJSON, &p.PersonalPatterns); err != nil {
		return err
	}
	if err := unmarshalColumn(p.RecoveryJSON, &p.RecoveryMode); err != nil {
		return err
	}
	if err := unmarshalColumn(p.PrivacyJSON, &p.PrivacySettings); err != nil {
		return err
	}
	if err := unmarshalColumn(p.EmergencyJSON, &p.EmergencySettings); err != nil {
		return err
	}
	return unmarshalColumn(p.CaregiversJSON, &p.CaregiverContacts)
}

func packEntry(e *profile.Entry) error {
	var err error
	e.RecoverySymptomsJSON, err = marshalColumn(e.RecoverySymptoms)
	return err
}

func unpackEntry(e *profile.Entry) error {
	return unmarshalColumn(e.RecoverySymptomsJSON, &e.RecoverySymptoms)
}

func marshalColumn(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func unmarshalColumn(data string, v interface{}) error {
	if data == "" || data == "null" {
		return nil
	}
	return json.Unmarshal([]byte(data), v)
}

package profile

import (
	"time"
)

// BaselineVitals is a personal "normal" reference for a profile.
type BaselineVitals struct {
	Temperature    float64 `json:"temperature"`
	HeartRate      float64 `json:"heart_rate"`
	NormalSymptoms string  `json:"normal_symptoms,omitempty"`
}

// AdaptiveThresholds overrides the global default alert thresholds for one profile.
type AdaptiveThresholds struct {
	Temperature *float64  `json:"temperature,omitempty"`
	HeartRate   *float64  `json:"heart_rate,omitempty"`
	LastUpdated time.Time `json:"last_updated"`
}

// VitalAverages holds running per-time-of-day averages.
type VitalAverages struct {
	AvgHeartRate   float64 `json:"avg_heart_rate"`
	AvgTemperature float64 `json:"avg_temperature"`
	Samples        int     `json:"samples"`
}

// PersonalPatterns is derived state aggregated across a profile's check-ins.
type PersonalPatterns struct {
	// SymptomLanguage keeps the last 10 subjective-feedback samples.
	SymptomLanguage    []string                  `json:"symptom_language,omitempty"`
	TimeOfDayPatterns  map[string]*VitalAverages `json:"time_of_day_patterns,omitempty"`
	LastCheckinTime    *time.Time                `json:"last_checkin_time,omitempty"`
	MissedCheckinCount int                       `json:"missed_checkin_count"`
}

// SymptomLanguageCap bounds the subjective-feedback ring buffer.
const SymptomLanguageCap = 10

// RecordSymptomLanguage appends a feedback sample, dropping the oldest past the cap.
func (p *PersonalPatterns) RecordSymptomLanguage(feedback string) {
	if feedback == "" {
		return
	}
	p.SymptomLanguage = append(p.SymptomLanguage, feedback)
	if len(p.SymptomLanguage) > SymptomLanguageCap {
		p.SymptomLanguage = p.SymptomLanguage[len(p.SymptomLanguage)-SymptomLanguageCap:]
	}
}

// RecordVitals folds a check-in's vitals into the time-of-day running averages.
func (p *PersonalPatterns) RecordVitals(timeOfDay string, temperature, heartRate float64) {
	if p.TimeOfDayPatterns == nil {
		p.TimeOfDayPatterns = make(map[string]*VitalAverages)
	}
	avg := p.TimeOfDayPatterns[timeOfDay]
	if avg == nil {
		avg = &VitalAverages{}
		p.TimeOfDayPatterns[timeOfDay] = avg
	}
	n := float64(avg.Samples)
	avg.AvgTemperature = (avg.AvgTemperature*n + temperature) / (n + 1)
	avg.AvgHeartRate = (avg.AvgHeartRate*n + heartRate) / (n + 1)
	avg.Samples++
}

// EmergencySettings controls the unattended escalation path.
type EmergencySettings struct {
	AutoAlertBypassEnabled    bool `json:"auto_alert_bypass_enabled"`
	ConsecutiveMissedCheckins int  `json:"consecutive_missed_checkins"`
	EmergencyTimeoutSeconds   int  `json:"emergency_timeout_seconds,omitempty"`
}

// PrivacySettings controls data retention for one profile.
type PrivacySettings struct {
	ZeroKnowledgeMode  bool `json:"zero_knowledge_mode"`
	AutoDeleteDays     int  `json:"auto_delete_days"`
	CloudBackupEnabled bool `json:"cloud_backup_enabled"`
}

// CaregiverContact is a person notified on urgent alerts.
type CaregiverContact struct {
	Name         string `json:"name"`
	Phone        string `json:"phone,omitempty"`
	Relationship string `json:"relationship,omitempty"`
}

// MedicationReminders configures recovery-coach medication nudges.
type MedicationReminders struct {
	Enabled     bool     `json:"enabled"`
	Times       []string `json:"times,omitempty"`
	Medications []string `json:"medications,omitempty"`
}

// WeeklyMilestone tracks one recovery week's goals.
type WeeklyMilestone struct {
	Week      int      `json:"week"`
	Goals     []string `json:"goals"`
	Completed []string `json:"completed,omitempty"`
}

// ProgressTrends keeps the last 7 recovery check-in factor samples.
type ProgressTrends struct {
	Hydration []int     `json:"hydration,omitempty"`
	Nutrition []int     `json:"nutrition,omitempty"`
	Mood      []int     `json:"mood,omitempty"`
	Rest      []float64 `json:"rest,omitempty"`
}

// RecoveryCoachData is the nested coaching state under recovery mode.
type RecoveryCoachData struct {
	LastCheckIn         *time.Time          `json:"last_check_in,omitempty"`
	WeeklyMilestones    []WeeklyMilestone   `json:"weekly_milestones,omitempty"`
	RedFlagAlerts       []string            `json:"red_flag_alerts,omitempty"`
	MedicationReminders MedicationReminders `json:"medication_reminders"`
	ProgressTrends      ProgressTrends      `json:"progress_trends"`
}

// RecoveryMode controls whether post-illness coaching is active.
type RecoveryMode struct {
	IsEnabled         bool               `json:"is_enabled"`
	StartDate         *time.Time         `json:"start_date,omitempty"`
	CheckInFrequency  string             `json:"check_in_frequency,omitempty"` // daily, twice-daily, 2-3x-week
	LastRecoveryScore int                `json:"last_recovery_score"`
	CoachEnabled      bool               `json:"coach_enabled"`
	RecoveryWeek      int                `json:"recovery_week"`
	RecoveryBaseline  *BaselineVitals    `json:"recovery_baseline,omitempty"`
	CoachData         *RecoveryCoachData `json:"coach_data,omitempty"`
}

// Entry is one persisted check-in. RiskLevel is the classification frozen at
// save time; it is never recomputed for stored entries.
type Entry struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	ProfileID string    `gorm:"index:idx_profile_ts" json:"profile_id"`
	Date      string    `json:"date"`
	Timestamp time.Time `gorm:"index:idx_profile_ts" json:"timestamp"`

	Temperature        float64 `json:"temperature"`
	HeartRate          float64 `json:"heart_rate"`
	Symptoms           string  `json:"symptoms"`
	RiskLevel          string  `json:"risk_level"`
	SubjectiveFeedback string  `json:"subjective_feedback,omitempty"`
	IsExercising       bool    `json:"is_exercising"`
	TimeOfDay          string  `json:"time_of_day,omitempty"` // morning, afternoon, evening, night

	// Recovery-coach fields, unset for acute check-ins.
	OverallFeeling       string   `json:"overall_feeling,omitempty"`
	RecoverySymptoms     []string `json:"recovery_symptoms,omitempty" gorm:"-"`
	RecoverySymptomsJSON string   `json:"-" gorm:"type:text"`
	MedicationCompliance *bool    `json:"medication_compliance,omitempty"`
	HydrationCompliance  *bool    `json:"hydration_compliance,omitempty"`
	NutritionCompliance  *bool    `json:"nutrition_compliance,omitempty"`
	RestHours            float64  `json:"rest_hours,omitempty"`
	TookNaps             bool     `json:"took_naps,omitempty"`
	MoodRating           int      `json:"mood_rating,omitempty"`
	MealLogged           bool     `json:"meal_logged,omitempty"`
	WoundChecked         *bool    `json:"wound_checked,omitempty"`
	CognitiveIssues      *bool    `json:"cognitive_issues,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Profile is one tracked individual. HistoricalData is newest-first and
// append-only from the scoring engine's point of view; only the privacy
// pruning path removes entries.
type Profile struct {
	ID   string `gorm:"primaryKey" json:"id"`
	Name string `json:"name"`
	Age  int    `json:"age"`

	KnownConditions    []string `json:"known_conditions" gorm:"-"`
	ConditionsJSON     string   `json:"-" gorm:"type:text"`
	CurrentMedications string   `json:"current_medications,omitempty"`

	Baseline     *BaselineVitals `json:"baseline,omitempty" gorm:"-"`
	BaselineJSON string          `json:"-" gorm:"type:text"`

	AdaptiveThresholds *AdaptiveThresholds `json:"adaptive_thresholds,omitempty" gorm:"-"`
	ThresholdsJSON     string              `json:"-" gorm:"type:text"`

	PersonalPatterns PersonalPatterns `json:"personal_patterns" gorm:"-"`
	PatternsJSON     string           `json:"-" gorm:"type:text"`

	RecoveryMode *RecoveryMode `json:"recovery_mode,omitempty" gorm:"-"`
	RecoveryJSON string        `json:"-" gorm:"type:text"`

	PrivacySettings   PrivacySettings    `json:"privacy_settings" gorm:"-"`
	PrivacyJSON       string             `json:"-" gorm:"type:text"`
	EmergencySettings EmergencySettings  `json:"emergency_settings" gorm:"-"`
	EmergencyJSON     string             `json:"-" gorm:"type:text"`
	CaregiverContacts []CaregiverContact `json:"caregiver_contacts,omitempty" gorm:"-"`
	CaregiversJSON    string             `json:"-" gorm:"type:text"`

	// Newest-first. Loaded by the store, not a gorm relation.
	HistoricalData []Entry `json:"historical_data,omitempty" gorm:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RecentEntries returns up to n newest entries.
func (p *Profile) RecentEntries(n int) []Entry {
	if len(p.HistoricalData) <= n {
		return p.HistoricalData
	}
	return p.HistoricalData[:n]
}

// TimeOfDay buckets a wall-clock instant the way check-ins are tagged.
func TimeOfDay(t time.Time) string {
	hour := t.Hour()
	switch {
	case hour >= 6 && hour < 12:
		return "morning"
	case hour >= 12 && hour < 18:
		return "afternoon"
	case hour >= 18 && hour < 22:
		return "evening"
	default:
		return "night"
	}
}

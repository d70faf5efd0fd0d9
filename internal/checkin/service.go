package checkin

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sepsiscan/sepsiscan/internal/alerts"
	apperrors "github.com/sepsiscan/sepsiscan/internal/errors"
	"github.com/sepsiscan/sepsiscan/internal/metrics"
	"github.com/sepsiscan/sepsiscan/internal/profile"
	"github.com/sepsiscan/sepsiscan/internal/recovery"
	"github.com/sepsiscan/sepsiscan/internal/risk"
	"github.com/sepsiscan/sepsiscan/internal/store"
)

// Service runs the full check-in pipeline: validate, score against the
// persisted history snapshot, append the new entry, update personal patterns
// and hand urgent outcomes to the alert dispatcher. The engine itself stays
// pure; every side effect lives here.
type Service struct {
	store      *store.Store
	dispatcher *alerts.Dispatcher
	logger     *zap.Logger
}

// Result is what one processed check-in returns to the API layer.
type Result struct {
	Assessment *risk.Assessment `json:"assessment"`
	Entry      *profile.Entry   `json:"entry"`
}

func NewService(st *store.Store, dispatcher *alerts.Dispatcher, logger *zap.Logger) *Service {
	return &Service{store: st, dispatcher: dispatcher, logger: logger}
}

// Process scores one check-in for a profile. History is read before the new
// entry is appended, so the engine never sees the in-progress check-in.
func (s *Service) Process(ctx context.Context, profileID string, raw risk.RawInputs, now time.Time) (*Result, error) {
	start := time.Now()
	defer func() { metrics.CheckinDuration.Observe(time.Since(start).Seconds()) }()

	in, err := risk.ParseVitals(raw)
	if err != nil {
		return nil, err
	}

	p, err := s.store.GetProfile(profileID)
	if err != nil {
		return nil, err
	}

	assessment := risk.Analyze(*in, p, now)

	entry := &profile.Entry{
		ProfileID:          p.ID,
		Date:               now.Format("1/2/2006"),
		Timestamp:          now,
		Temperature:        in.Temperature,
		HeartRate:          in.HeartRate,
		Symptoms:           in.Symptoms,
		RiskLevel:          string(assessment.Level),
		SubjectiveFeedback: in.SubjectiveFeedback,
		IsExercising:       in.ActivityLevel == risk.ActivityExercising,
		TimeOfDay:          profile.TimeOfDay(now),
	}
	if err := s.store.AppendEntry(entry); err != nil {
		return nil, apperrors.Wrap(err, "GEN_003", "failed to persist check-in")
	}

	s.updatePatterns(p, in, now)
	if err := s.store.UpdateProfile(p); err != nil {
		return nil, apperrors.Wrap(err, "GEN_003", "failed to update profile")
	}

	metrics.CheckinsTotal.WithLabelValues(string(assessment.Level)).Inc()
	s.logger.Info("check-in scored",
		zap.String("profile_id", p.ID),
		zap.String("level", string(assessment.Level)),
		zap.String("alert_level", string(assessment.AlertLevel)),
		zap.Int("score", assessment.Score))

	if assessment.AlertLevel == risk.AlertUrgent || assessment.EmergencyBypassTriggered {
		s.dispatcher.Dispatch(ctx, alerts.Alert{
			ProfileID:   p.ID,
			ProfileName: p.Name,
			Level:       string(assessment.Level),
			AlertLevel:  string(assessment.AlertLevel),
			Message:     assessment.Recommendation,
			Bypass:      assessment.EmergencyBypassTriggered,
			Timestamp:   now,
		})
	}

	return &Result{Assessment: assessment, Entry: entry}, nil
}

// updatePatterns folds a scored check-in into the profile's derived state.
// A completed check-in always clears the missed counters.
func (s *Service) updatePatterns(p *profile.Profile, in *risk.Inputs, now time.Time) {
	p.PersonalPatterns.RecordSymptomLanguage(in.SubjectiveFeedback)
	p.PersonalPatterns.RecordVitals(profile.TimeOfDay(now), in.Temperature, in.HeartRate)
	checkinTime := now
	p.PersonalPatterns.LastCheckinTime = &checkinTime
	p.PersonalPatterns.MissedCheckinCount = 0
	p.EmergencySettings.ConsecutiveMissedCheckins = 0
	p.UpdatedAt = now
}

// queuedCheckin is the offline queue payload.
type queuedCheckin struct {
	ProfileID string         `json:"profile_id"`
	Inputs    risk.RawInputs `json:"inputs"`
	Submitted time.Time      `json:"submitted"`
}

// EnqueueOffline spools a check-in for later scoring, validating it first so
// malformed submissions fail at the boundary rather than in the drain.
func (s *Service) EnqueueOffline(profileID string, raw risk.RawInputs, now time.Time) error {
	if _, err := risk.ParseVitals(raw); err != nil {
		return err
	}
	payload, err := json.Marshal(queuedCheckin{ProfileID: profileID, Inputs: raw, Submitted: now})
	if err != nil {
		return err
	}
	if err := s.store.Enqueue(store.QueueOfflineCheckins, payload); err != nil {
		return err
	}
	if n, err := s.store.QueueLen(store.QueueOfflineCheckins); err == nil {
		metrics.OfflineQueueDepth.Set(float64(n))
	}
	return nil
}

// DrainOffline scores queued check-ins in FIFO order. Entries keep their
// original submission timestamp. A transient failure puts the check-in back
// on the queue and ends the pass; only submissions that can never succeed
// are dropped.
func (s *Service) DrainOffline(ctx context.Context) int {
	drained := 0
	for {
		payload, err := s.store.Dequeue(store.QueueOfflineCheckins)
		if err != nil {
			break
		}

		var queued queuedCheckin
		if err := json.Unmarshal(payload, &queued); err != nil {
			s.logger.Warn("dropping malformed queued check-in", zap.Error(err))
			continue
		}

		if _, err := s.Process(ctx, queued.ProfileID, queued.Inputs, queued.Submitted); err != nil {
			if !retryable(err) {
				s.logger.Warn("dropping queued check-in",
					zap.String("profile_id", queued.ProfileID),
					zap.Error(err))
				continue
			}
			if reqErr := s.store.Enqueue(store.QueueOfflineCheckins, payload); reqErr != nil {
				s.logger.Error("failed to requeue check-in",
					zap.String("profile_id", queued.ProfileID),
					zap.Error(reqErr))
			}
			s.logger.Warn("queued check-in deferred to next drain",
				zap.String("profile_id", queued.ProfileID),
				zap.Error(err))
			break
		}
		drained++
	}

	if n, err := s.store.QueueLen(store.QueueOfflineCheckins); err == nil {
		metrics.OfflineQueueDepth.Set(float64(n))
	}
	return drained
}

// retryable reports whether a queued check-in failure is worth another drain
// pass. Validation failures and deleted profiles never succeed on retry.
func retryable(err error) bool {
	switch apperrors.GetCode(err) {
	case "PROFILE_001", "INPUT_001", "INPUT_002", "INPUT_003":
		return false
	}
	return true
}

// SweepMissedCheckins advances missed counters for profiles gone quiet, one
// count per whole 24h period, and emits gentle or urgent reminders through
// the dispatcher.
func (s *Service) SweepMissedCheckins(ctx context.Context, now time.Time) {
	metrics.SweepRunsTotal.WithLabelValues("missed_checkins").Inc()

	profiles, err := s.store.ListProfiles()
	if err != nil {
		s.logger.Error("missed check-in sweep failed", zap.Error(err))
		return
	}

	for i := range profiles {
		p, err := s.store.GetProfile(profiles[i].ID)
		if err != nil {
			continue
		}
		if p.PersonalPatterns.LastCheckinTime == nil {
			continue
		}

		// The sweep runs more often than daily. Re-deriving the count from
		// elapsed time keeps repeat passes within the same 24h period from
		// inflating the counters or re-sending the reminder.
		missed := int(now.Sub(*p.PersonalPatterns.LastCheckinTime).Hours() / 24)
		if missed <= p.PersonalPatterns.MissedCheckinCount {
			continue
		}
		p.PersonalPatterns.MissedCheckinCount = missed
		p.EmergencySettings.ConsecutiveMissedCheckins = missed
		if err := s.store.UpdateProfile(p); err != nil {
			s.logger.Error("failed to update missed counters", zap.String("profile_id", p.ID), zap.Error(err))
			continue
		}

		msg := risk.CheckMissedCheckins(p, now)
		if msg == "" {
			continue
		}

		alertLevel := string(risk.AlertMonitor)
		if strings.Contains(msg, "emergency services") {
			alertLevel = string(risk.AlertUrgent)
		}
		s.dispatcher.Dispatch(ctx, alerts.Alert{
			ProfileID:   p.ID,
			ProfileName: p.Name,
			AlertLevel:  alertLevel,
			Message:     msg,
			Timestamp:   now,
		})
	}
}

// SweepPrivacy prunes history for zero-knowledge profiles past their
// retention window. This is the only deletion path for history entries.
func (s *Service) SweepPrivacy(now time.Time) {
	metrics.SweepRunsTotal.WithLabelValues("privacy").Inc()

	profiles, err := s.store.ListProfiles()
	if err != nil {
		s.logger.Error("privacy sweep failed", zap.Error(err))
		return
	}

	for i := range profiles {
		p := &profiles[i]
		if !p.PrivacySettings.ZeroKnowledgeMode || p.PrivacySettings.AutoDeleteDays <= 0 {
			continue
		}

		cutoff := now.AddDate(0, 0, -p.PrivacySettings.AutoDeleteDays)
		pruned, err := s.store.PruneEntriesBefore(p.ID, cutoff)
		if err != nil {
			s.logger.Error("failed to prune history", zap.String("profile_id", p.ID), zap.Error(err))
			continue
		}
		if pruned > 0 {
			metrics.EntriesPrunedTotal.Add(float64(pruned))
			s.logger.Info("pruned history entries",
				zap.String("profile_id", p.ID),
				zap.Int64("entries", pruned))
		}
	}
}

// ProcessRecovery handles a recovery-mode check-in: coach insights, score,
// frequency adjustment, baseline establishment and red-flag escalation.
func (s *Service) ProcessRecovery(ctx context.Context, profileID string, data recovery.CheckInData, now time.Time) (*recovery.CheckInResult, error) {
	p, err := s.store.GetProfile(profileID)
	if err != nil {
		return nil, err
	}
	if p.RecoveryMode == nil || !p.RecoveryMode.IsEnabled {
		return nil, apperrors.ErrRecoveryInactive
	}
	if p.RecoveryMode.CoachData == nil && p.RecoveryMode.CoachEnabled {
		recovery.InitializeCoach(p, now)
	}

	result := recovery.ProcessCheckIn(p, data, now)

	// Recovery check-ins carry no vitals reading; zero values mark the
	// absence so score and trend rules can tell them from real readings.
	entry := &profile.Entry{
		ProfileID:            p.ID,
		Date:                 now.Format("1/2/2006"),
		Timestamp:            now,
		Symptoms:             strings.Join(data.RecoverySymptoms, ", "),
		RiskLevel:            recovery.RiskLevelForCheckIn(data),
		TimeOfDay:            profile.TimeOfDay(now),
		OverallFeeling:       data.OverallFeeling,
		RecoverySymptoms:     data.RecoverySymptoms,
		MedicationCompliance: &data.MedicationCompliance,
		HydrationCompliance:  &data.HydrationCompliance,
		NutritionCompliance:  &data.NutritionCompliance,
		RestHours:            data.RestHours,
		TookNaps:             data.TookNaps,
		MoodRating:           data.MoodRating,
		MealLogged:           data.NutritionCompliance,
		WoundChecked:         data.WoundChecked,
		CognitiveIssues:      data.CognitiveIssues,
	}
	if err := s.store.AppendEntry(entry); err != nil {
		return nil, apperrors.Wrap(err, "GEN_003", "failed to persist recovery check-in")
	}
	p.HistoricalData = append([]profile.Entry{*entry}, p.HistoricalData...)

	p.RecoveryMode.LastRecoveryScore = result.Score
	p.RecoveryMode.CheckInFrequency = recovery.AdjustCheckInFrequency(result.Score)
	if p.RecoveryMode.StartDate != nil {
		days := int(now.Sub(*p.RecoveryMode.StartDate).Hours() / 24)
		p.RecoveryMode.RecoveryWeek = recovery.CalculateRecoveryWeek(days)
	}
	if p.RecoveryMode.RecoveryBaseline == nil {
		p.RecoveryMode.RecoveryBaseline = recovery.EstablishBaseline(p)
	}
	s.ensureWeeklyMilestones(p)

	checkinTime := now
	p.PersonalPatterns.LastCheckinTime = &checkinTime
	p.PersonalPatterns.MissedCheckinCount = 0
	p.EmergencySettings.ConsecutiveMissedCheckins = 0
	p.UpdatedAt = now

	if err := s.store.UpdateProfile(p); err != nil {
		return nil, apperrors.Wrap(err, "GEN_003", "failed to update profile")
	}

	metrics.RecoveryCheckinsTotal.Inc()

	if len(result.RedFlags) > 0 || recovery.ShouldEscalateToProvider(p) {
		message := "Recovery check-in needs provider attention."
		if len(result.RedFlags) > 0 {
			message = result.RedFlags[0]
		}
		s.dispatcher.Dispatch(ctx, alerts.Alert{
			ProfileID:   p.ID,
			ProfileName: p.Name,
			Level:       entry.RiskLevel,
			AlertLevel:  string(risk.AlertUrgent),
			Message:     message,
			Timestamp:   now,
		})
	}

	return &result, nil
}

func (s *Service) ensureWeeklyMilestones(p *profile.Profile) {
	if p.RecoveryMode.CoachData == nil {
		return
	}
	week := p.RecoveryMode.RecoveryWeek
	if week == 0 {
		week = 1
	}
	for _, m := range p.RecoveryMode.CoachData.WeeklyMilestones {
		if m.Week == week {
			return
		}
	}
	p.RecoveryMode.CoachData.WeeklyMilestones = append(p.RecoveryMode.CoachData.WeeklyMilestones, profile.WeeklyMilestone{
		Week:  week,
		Goals: recovery.WeeklyMilestones(week),
	})
}

// RecoverySummary assembles the dashboard view for a profile.
type RecoverySummary struct {
	Score            int                       `json:"score"`
	Week             int                       `json:"week"`
	CheckInFrequency string                    `json:"check_in_frequency"`
	Insights         []recovery.Insight        `json:"insights"`
	WeeklySummary    []string                  `json:"weekly_summary"`
	Milestones       []profile.WeeklyMilestone `json:"milestones"`
	ShouldEscalate   bool                      `json:"should_escalate"`
}

// Summary computes the recovery dashboard for a profile.
func (s *Service) Summary(profileID string, now time.Time) (*RecoverySummary, error) {
	p, err := s.store.GetProfile(profileID)
	if err != nil {
		return nil, err
	}
	if p.RecoveryMode == nil || !p.RecoveryMode.IsEnabled {
		return nil, apperrors.ErrRecoveryInactive
	}

	summary := &RecoverySummary{
		Score:            recovery.DashboardScore(p),
		Week:             p.RecoveryMode.RecoveryWeek,
		CheckInFrequency: p.RecoveryMode.CheckInFrequency,
		Insights:         recovery.GenerateInsights(p, now),
		WeeklySummary:    recovery.WeeklyProgressSummary(p),
		ShouldEscalate:   recovery.ShouldEscalateToProvider(p),
	}
	if p.RecoveryMode.CoachData != nil {
		summary.Milestones = p.RecoveryMode.CoachData.WeeklyMilestones
	}
	return summary, nil
}

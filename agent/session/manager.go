package session

import (
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/planwise/planwise/agent/extract"
	"github.com/planwise/planwise/agent/intent"
)

// Config tunes the manager. Zero values fall back to the documented
// defaults: 20 messages of history, 2-minute follow-ups, 5-minute
// frustration window.
type Config struct {
	HistoryLimit      int
	FollowUpTTL       time.Duration
	FrustrationWindow time.Duration
}

// Manager is the sole owner of ConversationContext instances.
type Manager struct {
	store Store
	cfg   Config

	// now is a test seam for TTL checks.
	now func() time.Time
}

// NewManager creates a manager over the given store.
func NewManager(store Store, cfg Config) *Manager {
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 20
	}
	if cfg.FollowUpTTL <= 0 {
		cfg.FollowUpTTL = 2 * time.Minute
	}
	if cfg.FrustrationWindow <= 0 {
		cfg.FrustrationWindow = 5 * time.Minute
	}
	return &Manager{store: store, cfg: cfg, now: time.Now}
}

// GetContext returns the session's context, creating it on first use.
// Never fails.
func (m *Manager) GetContext(sessionID string) *ConversationContext {
	if sctx, ok := m.store.Load(sessionID); ok {
		return sctx
	}
	sctx := newContext(sessionID)
	m.store.Save(sctx)
	slog.Debug("session context created", "session", sessionID)
	return sctx
}

// jargon terms push the expertise estimate up; beginner phrasings push it
// down. Both lists are fixed.
var (
	jargonTerms = []string{
		"incrementality", "attribution", "dma", "cpm", "roas", "frequency cap",
		"reach curve", "programmatic", "dayparting", "viewability", "brand lift",
	}
	beginnerPhrases = []string{
		"how do i", "what is", "what does", "can you explain", "i'm new",
		"im new", "not sure how",
	}
)

// AddMessage appends a turn and trims history to the bound. Only user turns
// move the interaction count, expertise estimate, and accumulated entities.
func (m *Manager) AddMessage(sessionID string, role Role, content string, detected *intent.DetectedIntent, entities *extract.Entities) {
	sctx := m.GetContext(sessionID)

	sctx.History = append(sctx.History, Message{
		Role:      role,
		Content:   content,
		Timestamp: m.now(),
		Intent:    detected,
		Entities:  entities,
	})
	if len(sctx.History) > m.cfg.HistoryLimit {
		sctx.History = sctx.History[len(sctx.History)-m.cfg.HistoryLimit:]
	}

	if role == RoleUser {
		sctx.UserProfile.InteractionCount++
		m.updateExpertise(&sctx.UserProfile, content)
		if entities != nil {
			MergeEntities(&sctx.AccumulatedEntities, *entities)
		}
	}
	m.store.Save(sctx)
}

// updateExpertise recomputes the expertise level from running jargon and
// beginner hit counts. "expert" is gated behind a minimum interaction count
// so one buzzword doesn't flip the level.
func (m *Manager) updateExpertise(profile *UserProfile, content string) {
	lower := strings.ToLower(content)
	for _, term := range jargonTerms {
		if strings.Contains(lower, term) {
			profile.jargonHits++
		}
	}
	for _, phrase := range beginnerPhrases {
		if strings.Contains(lower, phrase) {
			profile.beginnerHits++
		}
	}

	switch {
	case profile.jargonHits >= 2 && profile.jargonHits > profile.beginnerHits && profile.InteractionCount >= 3:
		profile.ExpertiseLevel = ExpertiseExpert
	case profile.jargonHits > 0 && profile.jargonHits >= profile.beginnerHits:
		profile.ExpertiseLevel = ExpertiseIntermediate
	case profile.beginnerHits > profile.jargonHits:
		profile.ExpertiseLevel = ExpertiseBeginner
	}
}

// MergeEntities folds src into dst: scalars overwrite, slices set-union,
// the nested placement spec merges per sub-field.
func MergeEntities(dst *extract.Entities, src extract.Entities) {
	if src.Budget != nil {
		dst.Budget = src.Budget
	}
	dst.Channels = unionStrings(dst.Channels, src.Channels)
	dst.Metrics = unionStrings(dst.Metrics, src.Metrics)
	if src.StartDate != nil {
		dst.StartDate = src.StartDate
	}
	if src.EndDate != nil {
		dst.EndDate = src.EndDate
	}
	if src.Audience != "" {
		dst.Audience = src.Audience
	}
	if src.CampaignName != "" {
		dst.CampaignName = src.CampaignName
	}
	if src.PlacementSpec != nil {
		if dst.PlacementSpec == nil {
			spec := *src.PlacementSpec
			dst.PlacementSpec = &spec
		} else {
			if src.PlacementSpec.Channel != "" {
				dst.PlacementSpec.Channel = src.PlacementSpec.Channel
			}
			if src.PlacementSpec.Count != 0 {
				dst.PlacementSpec.Count = src.PlacementSpec.Count
			}
			if src.PlacementSpec.Budget != nil {
				dst.PlacementSpec.Budget = src.PlacementSpec.Budget
			}
		}
	}
}

func unionStrings(a, b []string) []string {
	if len(b) == 0 {
		return a
	}
	seen := make(map[string]bool, len(a))
	for _, s := range a {
		seen[s] = true
	}
	for _, s := range b {
		if !seen[s] {
			seen[s] = true
			a = append(a, s)
		}
	}
	return a
}

// SetFollowUp stores the session's single follow-up slot, overwriting any
// previous one.
func (m *Manager) SetFollowUp(sessionID, question, yesAction, noAction string) {
	sctx := m.GetContext(sessionID)
	sctx.LastFollowUp = &FollowUp{
		Question:  question,
		YesAction: yesAction,
		NoAction:  noAction,
		Timestamp: m.now(),
	}
	m.store.Save(sctx)
}

// GetFollowUp returns the live follow-up, if any. Expiry is lazy: reading a
// slot older than the TTL clears it and returns nil.
func (m *Manager) GetFollowUp(sessionID string) *FollowUp {
	sctx := m.GetContext(sessionID)
	if sctx.LastFollowUp == nil {
		return nil
	}
	if m.now().Sub(sctx.LastFollowUp.Timestamp) > m.cfg.FollowUpTTL {
		slog.Debug("follow-up expired", "session", sessionID, "question", sctx.LastFollowUp.Question)
		sctx.LastFollowUp = nil
		m.store.Save(sctx)
		return nil
	}
	return sctx.LastFollowUp
}

// ClearFollowUp drops the slot.
func (m *Manager) ClearFollowUp(sessionID string) {
	sctx := m.GetContext(sessionID)
	sctx.LastFollowUp = nil
	m.store.Save(sctx)
}

// PushPendingAction queues a mutation awaiting explicit confirmation.
func (m *Manager) PushPendingAction(sessionID string, action PendingAction) {
	sctx := m.GetContext(sessionID)
	sctx.PendingActions = append(sctx.PendingActions, action)
	m.store.Save(sctx)
}

// PopPendingAction removes and returns the oldest pending action.
func (m *Manager) PopPendingAction(sessionID string) (PendingAction, bool) {
	sctx := m.GetContext(sessionID)
	if len(sctx.PendingActions) == 0 {
		return PendingAction{}, false
	}
	action := sctx.PendingActions[0]
	sctx.PendingActions = sctx.PendingActions[1:]
	m.store.Save(sctx)
	return action, true
}

// correctionPatterns are the fixed phrasings that count as the user
// correcting the assistant.
var correctionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^no,`),
	regexp.MustCompile(`(?i)\bthat('s| is) not\b`),
	regexp.MustCompile(`(?i)\byou misunderstood\b`),
	regexp.MustCompile(`(?i)\bi (said|meant)\b`),
	regexp.MustCompile(`(?i)\b(wrong|not what i)\b`),
	regexp.MustCompile(`(?i)^actually[, ]`),
}

func isCorrection(message string) bool {
	trimmed := strings.TrimSpace(message)
	for _, p := range correctionPatterns {
		if p.MatchString(trimmed) {
			return true
		}
	}
	return false
}

// TrackFrustration updates the consecutive-correction counter. A correction
// within the window increments; a correction outside it restarts at 1; a
// non-correction resets to 0 once the window has elapsed.
func (m *Manager) TrackFrustration(sessionID, message string) {
	sctx := m.GetContext(sessionID)
	now := m.now()
	withinWindow := !sctx.Frustration.LastCorrectionTime.IsZero() &&
		now.Sub(sctx.Frustration.LastCorrectionTime) <= m.cfg.FrustrationWindow

	if isCorrection(message) {
		if withinWindow {
			sctx.Frustration.ConsecutiveCorrections++
		} else {
			sctx.Frustration.ConsecutiveCorrections = 1
		}
		sctx.Frustration.LastCorrectionTime = now
		slog.Debug("correction tracked",
			"session", sessionID,
			"consecutive", sctx.Frustration.ConsecutiveCorrections,
		)
	} else if !withinWindow {
		sctx.Frustration.ConsecutiveCorrections = 0
	}
	m.store.Save(sctx)
}

// ShouldOfferHumanEscalation is true once the correction counter reaches 2
// and escalation has not already been offered this session. Calling it trips
// the one-shot latch.
func (m *Manager) ShouldOfferHumanEscalation(sessionID string) bool {
	sctx := m.GetContext(sessionID)
	if sctx.Frustration.EscalatedToHuman {
		return false
	}
	if sctx.Frustration.ConsecutiveCorrections >= 2 {
		sctx.Frustration.EscalatedToHuman = true
		m.store.Save(sctx)
		return true
	}
	return false
}

// SetFocus records which plan objects the conversation is about.
func (m *Manager) SetFocus(sessionID string, focus Focus) {
	sctx := m.GetContext(sessionID)
	sctx.CurrentFocus = focus
	m.store.Save(sctx)
}

// Reset drops the session entirely; the next GetContext starts fresh.
func (m *Manager) Reset(sessionID string) {
	m.store.Delete(sessionID)
	slog.Debug("session reset", "session", sessionID)
}

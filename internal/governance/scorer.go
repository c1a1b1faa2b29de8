// Package governance scores DLP violation events and derives the enforcement
// actions a violation requires.
package governance

import (
	"sort"
	"strings"
	"time"

	"github.com/vaultshq/vaults-governance/internal/model"
)

// Risk level thresholds over the clamped score.
const (
	thresholdHigh   = 50
	thresholdMedium = 25
	thresholdLow    = 10
)

// Scorer computes additive risk assessments. The clock is injectable so the
// off-hours factor is testable.
type Scorer struct {
	now func() time.Time
}

// NewScorer returns a Scorer using the real clock.
func NewScorer() *Scorer { return &Scorer{now: time.Now} }

// NewScorerAt returns a Scorer with a fixed clock, for tests.
func NewScorerAt(now func() time.Time) *Scorer { return &Scorer{now: now} }

// Assess computes the additive risk score for one violation, clamps it to
// [0,100], and maps it to a level plus the union of triggered actions.
func (s *Scorer) Assess(v model.DlpViolationEvent) model.GovernanceAssessment {
	now := s.now().UTC()
	score := 15 // every violation starts here
	actions := make(map[string]struct{})

	// off-hours activity, [6,20) UTC is business hours
	if h := now.Hour(); h < 6 || h >= 20 {
		score += 10
	}

	// repeat offenders beyond three prior violations
	if v.UserViolationCount > 3 {
		score += 5 * (v.UserViolationCount - 3)
	}

	if v.IsExternalSharing {
		score += 20
	}

	for _, infoType := range v.SensitiveInfoTypes {
		t := strings.ToLower(infoType)
		switch {
		case strings.Contains(t, "credit card"), strings.Contains(t, "social security"), strings.Contains(t, "ssn"):
			score += 30
			actions[model.ActionBlockCopilotAccess] = struct{}{}
			actions[model.ActionNotifySecurityTeam] = struct{}{}
		case strings.Contains(t, "email"), strings.Contains(t, "phone"):
			score += 10
			actions[model.ActionRequireApproval] = struct{}{}
		}
	}

	switch label := strings.ToLower(v.SensitivityLabel); {
	case strings.Contains(label, "confidential"):
		// covers both "confidential" and "highly confidential"
		score += 25
		actions[model.ActionRestrictCopilotResponse] = struct{}{}
		actions[model.ActionLogAccessAttempt] = struct{}{}
	case strings.Contains(label, "internal"):
		score += 10
		actions[model.ActionLogAccessAttempt] = struct{}{}
	}

	if isCollaborationLocation(v.Location) {
		score += 5
		actions[model.ActionValidateUserPermissions] = struct{}{}
	}

	if v.IsHighRiskUser {
		score += 20
		actions[model.ActionEnhancedMonitoring] = struct{}{}
		actions[model.ActionRequireApproval] = struct{}{}
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	return model.GovernanceAssessment{
		ViolationID:     v.ViolationID,
		RiskScore:       score,
		RiskLevel:       levelFor(score),
		ActionsRequired: sortedActions(actions),
		ProcessedAt:     now,
	}
}

func levelFor(score int) model.RiskLevel {
	switch {
	case score >= thresholdHigh:
		return model.RiskHigh
	case score >= thresholdMedium:
		return model.RiskMedium
	case score >= thresholdLow:
		return model.RiskLow
	default:
		return model.RiskMinimal
	}
}

// isCollaborationLocation matches document-sharing and collaboration platform
// markers in the violation's resource location.
func isCollaborationLocation(location string) bool {
	l := strings.ToLower(location)
	for _, marker := range []string{"sharepoint", "onedrive", "teams"} {
		if strings.Contains(l, marker) {
			return true
		}
	}
	return false
}

func sortedActions(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for a := range set {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

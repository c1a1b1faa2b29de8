package governance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaultshq/vaults-governance/internal/model"
)

func clockAtHour(h int) func() time.Time {
	return func() time.Time { return time.Date(2026, 3, 2, h, 30, 0, 0, time.UTC) }
}

func TestAssess_CompositeScenario(t *testing.T) {
	// base 15 + off-hours 10 + frequency 5x1 + external 20 + label 25 = 75
	s := NewScorerAt(clockAtHour(2))
	got := s.Assess(model.DlpViolationEvent{
		ViolationID:        "v-1",
		UserViolationCount: 4,
		IsExternalSharing:  true,
		SensitivityLabel:   "confidential",
	})

	assert.Equal(t, 75, got.RiskScore)
	assert.Equal(t, model.RiskHigh, got.RiskLevel)
	assert.Contains(t, got.ActionsRequired, model.ActionRestrictCopilotResponse)
	assert.Contains(t, got.ActionsRequired, model.ActionLogAccessAttempt)
	assert.Equal(t, "v-1", got.ViolationID)
}

func TestAssess_BaseOnly(t *testing.T) {
	s := NewScorerAt(clockAtHour(12))
	got := s.Assess(model.DlpViolationEvent{ViolationID: "v-2"})
	assert.Equal(t, 15, got.RiskScore)
	assert.Equal(t, model.RiskLow, got.RiskLevel)
	assert.Empty(t, got.ActionsRequired)
}

func TestAssess_BusinessHourBoundaries(t *testing.T) {
	base := model.DlpViolationEvent{ViolationID: "v"}
	assert.Equal(t, 15, NewScorerAt(clockAtHour(6)).Assess(base).RiskScore)
	assert.Equal(t, 15, NewScorerAt(clockAtHour(19)).Assess(base).RiskScore)
	assert.Equal(t, 25, NewScorerAt(clockAtHour(20)).Assess(base).RiskScore)
	assert.Equal(t, 25, NewScorerAt(clockAtHour(5)).Assess(base).RiskScore)
}

func TestAssess_SensitiveInfoTypes(t *testing.T) {
	s := NewScorerAt(clockAtHour(12))

	got := s.Assess(model.DlpViolationEvent{
		SensitiveInfoTypes: []string{"Credit Card Number", "U.S. Social Security Number (SSN)"},
	})
	// 15 + 30 + 30
	assert.Equal(t, 75, got.RiskScore)
	assert.Contains(t, got.ActionsRequired, model.ActionBlockCopilotAccess)
	assert.Contains(t, got.ActionsRequired, model.ActionNotifySecurityTeam)

	got = s.Assess(model.DlpViolationEvent{
		SensitiveInfoTypes: []string{"Email Address", "Phone Number"},
	})
	// 15 + 10 + 10
	assert.Equal(t, 35, got.RiskScore)
	assert.Equal(t, []string{model.ActionRequireApproval}, got.ActionsRequired)
}

func TestAssess_LabelsAndLocation(t *testing.T) {
	s := NewScorerAt(clockAtHour(12))

	got := s.Assess(model.DlpViolationEvent{SensitivityLabel: "Highly Confidential"})
	assert.Equal(t, 40, got.RiskScore)

	got = s.Assess(model.DlpViolationEvent{SensitivityLabel: "Internal"})
	assert.Equal(t, 25, got.RiskScore)
	assert.Equal(t, []string{model.ActionLogAccessAttempt}, got.ActionsRequired)

	got = s.Assess(model.DlpViolationEvent{Location: "https://contoso.sharepoint.com/sites/finance"})
	assert.Equal(t, 20, got.RiskScore)
	assert.Equal(t, []string{model.ActionValidateUserPermissions}, got.ActionsRequired)
}

func TestAssess_HighRiskUser(t *testing.T) {
	s := NewScorerAt(clockAtHour(12))
	got := s.Assess(model.DlpViolationEvent{IsHighRiskUser: true})
	assert.Equal(t, 35, got.RiskScore)
	assert.Contains(t, got.ActionsRequired, model.ActionEnhancedMonitoring)
	assert.Contains(t, got.ActionsRequired, model.ActionRequireApproval)
}

func TestAssess_ScoreClampedAt100(t *testing.T) {
	s := NewScorerAt(clockAtHour(2))
	got := s.Assess(model.DlpViolationEvent{
		UserViolationCount: 20,
		IsExternalSharing:  true,
		IsHighRiskUser:     true,
		SensitivityLabel:   "highly confidential",
		Location:           "teams chat",
		SensitiveInfoTypes: []string{"credit card", "ssn", "email"},
	})
	assert.Equal(t, 100, got.RiskScore)
	assert.Equal(t, model.RiskHigh, got.RiskLevel)
}

// Adding a sensitive info type must never lower the score.
func TestAssess_MonotonicInInfoTypes(t *testing.T) {
	s := NewScorerAt(clockAtHour(12))
	types := []string{"email address", "phone number", "credit card number", "ssn"}

	prev := -1
	for i := range types {
		got := s.Assess(model.DlpViolationEvent{SensitiveInfoTypes: types[:i+1]})
		require.GreaterOrEqual(t, got.RiskScore, prev)
		require.LessOrEqual(t, got.RiskScore, 100)
		prev = got.RiskScore
	}
}

func TestAssess_Deterministic(t *testing.T) {
	s := NewScorerAt(clockAtHour(12))
	v := model.DlpViolationEvent{
		SensitivityLabel:   "confidential",
		SensitiveInfoTypes: []string{"email address"},
		IsHighRiskUser:     true,
	}
	first := s.Assess(v)
	for i := 0; i < 5; i++ {
		again := s.Assess(v)
		assert.Equal(t, first.RiskScore, again.RiskScore)
		assert.Equal(t, first.ActionsRequired, again.ActionsRequired)
	}
}

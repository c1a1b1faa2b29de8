package conversation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaultshq/vaults-governance/internal/model"
)

func event(id, session string, kind model.InteractionType, at time.Time, body string) model.RawInteractionEvent {
	return model.RawInteractionEvent{
		ID:              id,
		SessionID:       session,
		UserID:          "u1",
		InteractionType: kind,
		CreatedAt:       at,
		BodyContent:     body,
	}
}

func TestAssemble_PairsPromptWithResponse(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	got := Assemble([]model.RawInteractionEvent{
		event("e1", "s1", model.InteractionUserPrompt, base, "what is our refund policy?"),
		event("e2", "s1", model.InteractionAiResponse, base.Add(time.Second), "the policy says..."),
	})

	require.Len(t, got, 1)
	assert.Equal(t, "s1", got[0].SessionID)
	assert.Equal(t, "what is our refund policy?", got[0].PromptText)
	assert.Equal(t, "the policy says...", got[0].ResponseText)
	assert.Equal(t, base, got[0].CreatedAt)
}

func TestAssemble_DropsIncompleteSessions(t *testing.T) {
	base := time.Now().UTC()
	got := Assemble([]model.RawInteractionEvent{
		event("e1", "prompt-only", model.InteractionUserPrompt, base, "hello?"),
		event("e2", "response-only", model.InteractionAiResponse, base, "orphaned answer"),
	})
	assert.Empty(t, got)
}

func TestAssemble_OneCandidatePerSession(t *testing.T) {
	base := time.Now().UTC()
	got := Assemble([]model.RawInteractionEvent{
		event("e1", "s1", model.InteractionUserPrompt, base, "q1"),
		event("e2", "s1", model.InteractionAiResponse, base.Add(time.Second), "a1"),
		event("e3", "s2", model.InteractionUserPrompt, base.Add(2*time.Second), "q2"),
		event("e4", "s2", model.InteractionAiResponse, base.Add(3*time.Second), "a2"),
	})
	require.Len(t, got, 2)
	assert.Equal(t, "s1", got[0].SessionID)
	assert.Equal(t, "s2", got[1].SessionID)
}

// Pins the first-wins tie-break for same-role duplicates so that a deliberate
// behavior change shows up as a test failure.
func TestAssemble_FirstSameRoleEventWins(t *testing.T) {
	base := time.Now().UTC()
	got := Assemble([]model.RawInteractionEvent{
		event("e1", "s1", model.InteractionUserPrompt, base, "first prompt"),
		event("e2", "s1", model.InteractionUserPrompt, base.Add(time.Second), "second prompt"),
		event("e3", "s1", model.InteractionAiResponse, base.Add(2*time.Second), "first response"),
		event("e4", "s1", model.InteractionAiResponse, base.Add(3*time.Second), "second response"),
	})
	require.Len(t, got, 1)
	assert.Equal(t, "first prompt", got[0].PromptText)
	assert.Equal(t, "first response", got[0].ResponseText)
}

func TestAssemble_SkipsEventsWithoutSession(t *testing.T) {
	base := time.Now().UTC()
	got := Assemble([]model.RawInteractionEvent{
		event("e1", "", model.InteractionUserPrompt, base, "q"),
		event("e2", "", model.InteractionAiResponse, base, "a"),
	})
	assert.Empty(t, got)
}

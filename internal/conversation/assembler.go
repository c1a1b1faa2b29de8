// Package conversation pairs raw interaction events into prompt/response
// candidates.
package conversation

import (
	"sort"
	"time"

	"github.com/vaultshq/vaults-governance/internal/model"
)

// Candidate is a paired exchange ready for PII screening and persistence.
type Candidate struct {
	SessionID    string
	UserID       string
	PromptText   string
	ResponseText string
	CreatedAt    time.Time
}

// Assemble groups events by session and emits one candidate per session that
// holds at least one prompt and one response. Sessions missing either role are
// dropped; they may complete on a later run once the missing event falls after
// a subsequent checkpoint.
//
// When a session carries several events of the same role, the first one under
// the input ordering wins.
func Assemble(events []model.RawInteractionEvent) []Candidate {
	type pair struct {
		prompt   *model.RawInteractionEvent
		response *model.RawInteractionEvent
	}

	sessions := make(map[string]*pair)
	var order []string

	for i := range events {
		ev := &events[i]
		if ev.SessionID == "" {
			continue
		}
		p, ok := sessions[ev.SessionID]
		if !ok {
			p = &pair{}
			sessions[ev.SessionID] = p
			order = append(order, ev.SessionID)
		}
		switch ev.InteractionType {
		case model.InteractionUserPrompt:
			if p.prompt == nil {
				p.prompt = ev
			}
		case model.InteractionAiResponse:
			if p.response == nil {
				p.response = ev
			}
		}
	}

	var out []Candidate
	for _, sid := range order {
		p := sessions[sid]
		if p.prompt == nil || p.response == nil {
			continue
		}
		out = append(out, Candidate{
			SessionID:    sid,
			UserID:       p.prompt.UserID,
			PromptText:   p.prompt.BodyContent,
			ResponseText: p.response.BodyContent,
			CreatedAt:    p.prompt.CreatedAt,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vaultshq/vaults-governance/internal/api/respond"
	"github.com/vaultshq/vaults-governance/internal/governance"
	"github.com/vaultshq/vaults-governance/internal/model"
)

// GovernanceHandler exposes DLP risk assessment.
type GovernanceHandler struct {
	scorer *governance.Scorer
	log    zerolog.Logger
}

// NewGovernanceHandler creates a GovernanceHandler.
func NewGovernanceHandler(scorer *governance.Scorer, log zerolog.Logger) *GovernanceHandler {
	return &GovernanceHandler{scorer: scorer, log: log.With().Str("component", "governance-api").Logger()}
}

type riskAssessmentBody struct {
	RiskScore   int             `json:"riskScore"`
	RiskLevel   model.RiskLevel `json:"riskLevel"`
	ProcessedAt string          `json:"processedAt"`
}

type assessRiskResponse struct {
	ViolationID       string             `json:"violationId"`
	RiskAssessment    riskAssessmentBody `json:"riskAssessment"`
	GovernanceActions struct {
		Required []string `json:"required"`
	} `json:"governanceActions"`
}

// AssessRisk handles POST /api/governance/dlp/assess-risk. The body is a
// DlpViolationEvent; a missing violationId gets one generated so the caller
// can correlate follow-up enforcement.
func (h *GovernanceHandler) AssessRisk(w http.ResponseWriter, r *http.Request) {
	var violation model.DlpViolationEvent
	if err := json.NewDecoder(r.Body).Decode(&violation); err != nil {
		respond.WriteBadRequest(w, "invalid violation payload: "+err.Error())
		return
	}
	if violation.ViolationID == "" {
		violation.ViolationID = uuid.NewString()
	}

	assessment := h.scorer.Assess(violation)

	h.log.Info().
		Str("violation_id", assessment.ViolationID).
		Int("risk_score", assessment.RiskScore).
		Str("risk_level", string(assessment.RiskLevel)).
		Msg("violation assessed")

	out := assessRiskResponse{
		ViolationID: assessment.ViolationID,
		RiskAssessment: riskAssessmentBody{
			RiskScore:   assessment.RiskScore,
			RiskLevel:   assessment.RiskLevel,
			ProcessedAt: assessment.ProcessedAt.Format(time.RFC3339),
		},
	}
	out.GovernanceActions.Required = assessment.ActionsRequired
	respond.WriteJSON(w, http.StatusOK, out)
}

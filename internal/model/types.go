package model

import "time"

// InteractionType classifies a raw interaction event.
type InteractionType string

const (
	InteractionUserPrompt InteractionType = "userPrompt"
	InteractionAiResponse InteractionType = "aiResponse"
)

// TenantSyncState is the per-tenant ingestion checkpoint. It is read at the
// start of every pass and rewritten at the end.
type TenantSyncState struct {
	TenantID                   string    `json:"tenantId"`
	LastSyncTime               time.Time `json:"lastSyncTime"`
	TotalInteractionsProcessed int64     `json:"totalInteractionsProcessed"`
	LastFailureMessage         *string   `json:"lastFailureMessage,omitempty"`
	UpdatedAt                  time.Time `json:"updatedAt"`
}

// RawInteractionEvent is one prompt or response event from the interaction
// history API. It lives only for a single fetch-assemble cycle and is never
// persisted directly.
type RawInteractionEvent struct {
	ID              string          `json:"id"`
	SessionID       string          `json:"sessionId"`
	UserID          string          `json:"userId"`
	InteractionType InteractionType `json:"interactionType"`
	CreatedAt       time.Time       `json:"createdAt"`
	BodyContent     string          `json:"bodyContent"`
}

// ConversationRecord is a paired prompt/response exchange. IsExported is the
// authoritative idempotency marker: false until the archival blob write
// succeeded and the follow-up upsert landed.
type ConversationRecord struct {
	ID           string     `json:"id"`
	TenantID     string     `json:"tenantId"`
	UserID       string     `json:"userId"`
	SessionID    string     `json:"sessionId"`
	PromptText   string     `json:"promptText"`
	ResponseText string     `json:"responseText"`
	CreatedAt    time.Time  `json:"createdAt"`
	HasPii       bool       `json:"hasPii"`
	IsExported   bool       `json:"isExported"`
	ExportedAt   *time.Time `json:"exportedAt,omitempty"`
}

// DlpViolationEvent is a data-loss-prevention policy match produced by an
// external classification system.
type DlpViolationEvent struct {
	ViolationID        string    `json:"violationId"`
	UserID             string    `json:"userId"`
	ResourceID         string    `json:"resourceId"`
	Location           string    `json:"location"`
	SensitivityLabel   string    `json:"sensitivityLabel"`
	SensitiveInfoTypes []string  `json:"sensitiveInfoTypes"`
	IsHighRiskUser     bool      `json:"isHighRiskUser"`
	IsExternalSharing  bool      `json:"isExternalSharing"`
	UserViolationCount int       `json:"userViolationCount"`
	ViolationTime      time.Time `json:"violationTime"`
}

// RiskLevel buckets a risk score.
type RiskLevel string

const (
	RiskMinimal RiskLevel = "MINIMAL"
	RiskLow     RiskLevel = "LOW"
	RiskMedium  RiskLevel = "MEDIUM"
	RiskHigh    RiskLevel = "HIGH"
)

// Governance action tags attached to an assessment.
const (
	ActionBlockCopilotAccess      = "BLOCK_COPILOT_ACCESS"
	ActionNotifySecurityTeam      = "NOTIFY_SECURITY_TEAM"
	ActionRequireApproval         = "REQUIRE_APPROVAL"
	ActionRestrictCopilotResponse = "RESTRICT_COPILOT_RESPONSE"
	ActionLogAccessAttempt        = "LOG_ACCESS_ATTEMPT"
	ActionValidateUserPermissions = "VALIDATE_USER_PERMISSIONS"
	ActionEnhancedMonitoring      = "ENHANCED_MONITORING"
)

// GovernanceAssessment is the scored outcome for one violation event.
type GovernanceAssessment struct {
	ViolationID     string    `json:"violationId"`
	RiskScore       int       `json:"riskScore"`
	RiskLevel       RiskLevel `json:"riskLevel"`
	ActionsRequired []string  `json:"actionsRequired"`
	ProcessedAt     time.Time `json:"processedAt"`
}

// SyncReport summarizes one tenant ingestion pass for the HTTP trigger.
type SyncReport struct {
	Success               bool      `json:"success"`
	TenantID              string    `json:"tenantId"`
	UsersProcessed        int       `json:"usersProcessed"`
	InteractionsProcessed int       `json:"interactionsProcessed"`
	LastSyncTime          time.Time `json:"lastSyncTime"`
	ProcessedAt           time.Time `json:"processedAt"`
	LastFailureMessage    *string   `json:"lastFailureMessage,omitempty"`
}

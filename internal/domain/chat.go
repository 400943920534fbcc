package domain

// ChatMessage is the provider-agnostic chat message shape used by the
// completion integrations.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Source tags which pipeline stage produced a chat answer.
type Source string

const (
	SourceGenerated         Source = "enhanced+generated"
	SourceRuleBased         Source = "rule_based"
	SourceRuleBasedFallback Source = "rule_based_fallback"
	SourceEmergency         Source = "emergency_fallback"
	SourceError             Source = "error_fallback"
)

// Valid reports whether s is one of the known source tags.
func (s Source) Valid() bool {
	switch s {
	case SourceGenerated, SourceRuleBased, SourceRuleBasedFallback, SourceEmergency, SourceError:
		return true
	}
	return false
}

// ChatResponse is the single answer produced for one incoming message.
// EnhancedMessage is set only when enhancement changed the text.
type ChatResponse struct {
	Response        string `json:"response"`
	Source          Source `json:"source"`
	EnhancedQuery   bool   `json:"enhanced_query"`
	OriginalMessage string `json:"original_message"`
	EnhancedMessage string `json:"enhanced_message,omitempty"`
	FallbackReason  string `json:"fallback_reason,omitempty"`
}

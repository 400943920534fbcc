package domain

// Exchange is one answered chat message as persisted in the exchange log.
// It is write-once audit data; nothing reads it back into a conversation.
type Exchange struct {
	PK              string
	SK              string
	ID              string
	CorrelationID   string
	OriginalMessage string
	EnhancedMessage string
	Response        string
	Source          Source
	FallbackReason  string
	CreatedAt       string
	TTL             int64
}

package model

type InternalMessage struct {
	Platform  string `json:"platform"`   // "api", "feishu"
	ChatType  string `json:"chat_type"`  // "private", "group"
	ChatID    string `json:"chat_id"`    // Conversation ID
	UserID    string `json:"user_id"`    // Sender ID
	AccountID string `json:"account_id"` // Resolved backend account, filled by the dispatcher
	Text      string `json:"text"`       // Message Content
	Timestamp int64  `json:"timestamp"`
}

type ReplyMessage struct {
	Platform string `json:"platform"`
	ChatID   string `json:"chat_id"`
	Text     string `json:"text"`
}

package dto

// UserOutput represents the authenticated user
type UserOutput struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

// CredentialOutput describes the current terminal login without its password
type CredentialOutput struct {
	Username  string `json:"username"`
	UpdatedAt string `json:"updated_at"`
}

// IssuedCredentialOutput is shown once, right after (re)generation
type IssuedCredentialOutput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AccountOutput represents a linked account in API responses
type AccountOutput struct {
	AccountID     string `json:"account_id"`
	Terminal      string `json:"terminal"`
	LastConnected string `json:"last_connected"`
	IsActive      bool   `json:"is_active"`
	CreatedAt     string `json:"created_at"`
}

// TradeOutput represents a trade in API responses
type TradeOutput struct {
	Ticket     string `json:"ticket"`
	Symbol     string `json:"symbol"`
	Type       int    `json:"type"`
	TypeName   string `json:"type_name"`
	Lots       string `json:"lots"`
	OpenPrice  string `json:"open_price"`
	OpenTime   string `json:"open_time"`
	OpenedAt   string `json:"opened_at,omitempty"`
	StopLoss   string `json:"stop_loss"`
	TakeProfit string `json:"take_profit"`
	Comment    string `json:"comment"`
	Magic      int64  `json:"magic"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

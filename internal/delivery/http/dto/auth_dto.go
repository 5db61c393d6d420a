package dto

// TerminalTokenResponse is returned to a terminal after linking
type TerminalTokenResponse struct {
	Token string `json:"token"`
}

// TerminalErrorResponse is the only error shape terminals see
type TerminalErrorResponse struct {
	Error string `json:"error"`
}

// TerminalAckResponse acknowledges a recorded trade
type TerminalAckResponse struct {
	Success bool `json:"success"`
}

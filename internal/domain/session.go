package domain

import "time"

// Session is the server-side record behind the browser's session cookie.
// Tokens never leave the server.
type Session struct {
	ID           string    `json:"id"`
	AccountID    string    `json:"account_id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Principal is what an authenticated request carries: who, and a token valid right now.
type Principal struct {
	SessionID   string
	AccountID   string
	AccessToken string
}

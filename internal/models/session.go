package models

// Session is the authenticated identity the sync engine is gated on.
type Session struct {
	UserID string
	Email  string
	Token  string
}

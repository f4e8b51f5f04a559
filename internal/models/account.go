// Package models defines the data shared between otvetbot components:
// stored accounts, platform questions and per-question outcomes.
package models

// Account is one persisted platform account. Identifier (usually an email)
// is unique within a credential store; SessionToken is opaque to everything
// except the platform client that produced it.
type Account struct {
	Identifier   string `json:"identifier"`
	SessionToken string `json:"session_token"`
}

// Profile is the authenticated user's public profile.
type Profile struct {
	ID   int64
	Name string
	Rate string
	URL  string
}

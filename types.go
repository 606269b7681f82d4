// Package chatstore defines the core types used by the settings and identity stores.
package chatstore

// User is the identity record observed from chat updates.
// Optional fields use the empty string to mean "absent".
type User struct {
	// ID is the numeric identifier assigned by the chat platform.
	ID int64 `json:"id"`
	// IsBot reports whether the account is a bot. It is recorded on first
	// sight and never updated afterwards.
	IsBot bool `json:"is_bot"`
	// FirstName is the only required name field.
	FirstName string `json:"first_name"`
	// LastName is optional.
	LastName string `json:"last_name,omitempty"`
	// Username is the public @handle, without the "@" prefix. Optional.
	Username string `json:"username,omitempty"`
	// LanguageCode is the IETF language tag reported by the client. Optional.
	LanguageCode string `json:"language_code,omitempty"`
}

// Defaults holds the process-wide default tables for settings that have not
// been explicitly written. The maps are treated as immutable once a store has
// been constructed with them.
type Defaults struct {
	// Chat maps a chat setting name to its default raw value.
	Chat map[string]string
	// User maps a user (private) setting name to its default raw value.
	User map[string]string
}

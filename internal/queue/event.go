// Package queue defines message payloads exchanged over the message broker.
package queue

// PasswordResetRequestedEvent is published when a password reset is issued
// for an existing account. The mail worker consumes it and delivers the
// message to the account holder. ResetURL embeds the raw single-use token;
// it exists only in this message and in the recipient's inbox, never in the
// database.
type PasswordResetRequestedEvent struct {
    Email       string `json:"email"`
    ResetURL    string `json:"reset_url"`
    ExpiresInMin int    `json:"expires_in_min"`
    RequestedAt string `json:"requested_at"`
}

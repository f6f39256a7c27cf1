package models

import "time"

// UserInfo is the identity resolved from the provider's identity endpoint.
type UserInfo struct {
	ID    string
	Email string
	Name  string
}

// TokenGrant is the credential pair obtained from the token endpoint. The
// expiry is absolute: the provider's expires_in is converted at exchange
// time so wall-clock drift before persistence cannot shorten validity.
type TokenGrant struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

package handlers

import "net/http"

// FlowKind names a failure class of the callback state machine. Kinds are
// logged; clients only see the status and message.
type FlowKind string

const (
	KindProviderDenied     FlowKind = "provider_denied_authorization"
	KindStateMismatch      FlowKind = "state_mismatch"
	KindMissingVerifier    FlowKind = "missing_proof_of_possession"
	KindMalformedCallback  FlowKind = "malformed_callback"
	KindTokenExchange      FlowKind = "token_exchange_failed"
	KindIdentityResolution FlowKind = "identity_resolution_failed"
	KindPersistence        FlowKind = "persistence_failed"
)

// FlowError carries a callback failure to the response boundary. Err holds
// the internal cause for the log entry and is never written to the client.
type FlowError struct {
	Kind    FlowKind
	Message string
	Status  int
	Err     error
}

func (e *FlowError) Error() string {
	return string(e.Kind) + ": " + e.Message
}

func (e *FlowError) Unwrap() error {
	return e.Err
}

func errProviderDenied(description string) *FlowError {
	msg := "authorization denied by provider"
	if description != "" {
		msg += ": " + description
	}
	return &FlowError{Kind: KindProviderDenied, Message: msg, Status: http.StatusBadRequest}
}

// errStateMismatch covers absent, stale and forged state values alike; the
// response must not reveal whether a pending authorization existed.
func errStateMismatch() *FlowError {
	return &FlowError{Kind: KindStateMismatch, Message: "state mismatch", Status: http.StatusForbidden}
}

func errMissingVerifier() *FlowError {
	return &FlowError{Kind: KindMissingVerifier, Message: "login attempt expired, please retry", Status: http.StatusBadRequest}
}

func errMalformedCallback() *FlowError {
	return &FlowError{Kind: KindMalformedCallback, Message: "missing or invalid authorization code", Status: http.StatusBadRequest}
}

func errTokenExchange(err error) *FlowError {
	return &FlowError{Kind: KindTokenExchange, Message: "token exchange failed", Status: http.StatusInternalServerError, Err: err}
}

func errIdentityResolution(err error) *FlowError {
	return &FlowError{Kind: KindIdentityResolution, Message: "failed to resolve identity", Status: http.StatusInternalServerError, Err: err}
}

func errPersistence(err error) *FlowError {
	return &FlowError{Kind: KindPersistence, Message: "failed to persist identity", Status: http.StatusInternalServerError, Err: err}
}

package domain

import "errors"

// ErrNotConfigured covers every resolution miss: unknown or inactive landing
// page, missing routing config, unknown or inactive mail account. One class
// is enough; callers never learn which hop failed.
var ErrNotConfigured = errors.New("landing page not found or not configured")

// CredentialError means the stored ciphertext could not be decrypted. The
// pipeline never falls back to sending unauthenticated.
type CredentialError struct{ msg string }

func NewCredentialError(msg string) *CredentialError { return &CredentialError{msg: msg} }
func (e *CredentialError) Error() string             { return e.msg }

// TransportError wraps a connect/auth/protocol failure from the transmitter.
// The underlying message passes through verbatim for audit logging.
type TransportError struct{ cause error }

func NewTransportError(cause error) *TransportError { return &TransportError{cause: cause} }
func (e *TransportError) Error() string             { return e.cause.Error() }
func (e *TransportError) Unwrap() error             { return e.cause }

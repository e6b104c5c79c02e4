package upload

import "errors"

// Upload-session failures. All of them are terminal and client-facing: the
// protocol layer translates each into an HTTP error response before any bytes
// for the offending request are accepted. Infra errors (store/db unavailable)
// are not re-interpreted here and propagate unchanged.
var (
	ErrUnauthorized       = errors.New("no authenticated identity attached to the request")
	ErrForbiddenOwnership = errors.New("session does not belong to the authenticated professor")
	ErrForbiddenTenant    = errors.New("session does not belong to the authenticated escola")

	ErrMissingMetadata   = errors.New("required upload metadata is missing")
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrEmptyFile         = errors.New("declared upload size is zero")
	ErrFileTooLarge      = errors.New("declared upload size exceeds the maximum")

	ErrAulaNotFound = errors.New("aula not found for the declared escola and professor")
)

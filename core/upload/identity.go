package upload

import "context"

// Identity is the authenticated caller, as established by the JWT layer
// upstream of the upload workflow.
type Identity struct {
	UserID   string
	EscolaID string
}

type ctxKey int

const identityKey ctxKey = iota

// ContextWithIdentity attaches the caller identity to the request context so
// the protocol hooks can read it back.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the caller identity attached to the request, or
// ErrUnauthorized when none is present.
func IdentityFromContext(ctx context.Context) (Identity, error) {
	id, ok := ctx.Value(identityKey).(Identity)
	if !ok || id.UserID == "" {
		return Identity{}, ErrUnauthorized
	}
	return id, nil
}

// Authorize confirms that the session's declared metadata matches the caller.
// A session that has no owner/tenant declared yet passes through: that is the
// pre-metadata protocol handshake. The check is read-only; a rejection aborts
// the protocol request before any bytes are persisted.
func Authorize(id Identity, md map[string]string) error {
	owner, tenant := md[MetaKeyProfessorID], md[MetaKeyEscolaID]
	if owner == "" && tenant == "" {
		return nil
	}
	if owner != id.UserID {
		return ErrForbiddenOwnership
	}
	if tenant != id.EscolaID {
		return ErrForbiddenTenant
	}
	return nil
}

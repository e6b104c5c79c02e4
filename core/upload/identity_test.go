package upload

import (
	"context"
	"testing"
)

func TestIdentityContextRoundTrip(t *testing.T) {
	id := Identity{UserID: "prof-1", EscolaID: "escola-1"}

	ctx := ContextWithIdentity(context.Background(), id)
	got, err := IdentityFromContext(ctx)
	if err != nil {
		t.Fatalf("IdentityFromContext(): %v", err)
	}
	if got != id {
		t.Errorf("IdentityFromContext() = %+v, want %+v", got, id)
	}
}

func TestIdentityFromContextMissing(t *testing.T) {
	if _, err := IdentityFromContext(context.Background()); err != ErrUnauthorized {
		t.Errorf("IdentityFromContext() error = %v, want %v", err, ErrUnauthorized)
	}
	// a zero identity is as good as none
	ctx := ContextWithIdentity(context.Background(), Identity{})
	if _, err := IdentityFromContext(ctx); err != ErrUnauthorized {
		t.Errorf("IdentityFromContext() error = %v, want %v", err, ErrUnauthorized)
	}
}

func TestAuthorize(t *testing.T) {
	id := Identity{UserID: "prof-1", EscolaID: "escola-1"}

	tests := []struct {
		name    string
		md      map[string]string
		wantErr error
	}{
		{name: "matching owner and tenant", md: map[string]string{
			MetaKeyProfessorID: "prof-1", MetaKeyEscolaID: "escola-1",
		}},
		{name: "no metadata declared yet", md: map[string]string{}},
		{name: "nil metadata", md: nil},
		{name: "foreign owner", md: map[string]string{
			MetaKeyProfessorID: "prof-2", MetaKeyEscolaID: "escola-1",
		}, wantErr: ErrForbiddenOwnership},
		{name: "foreign tenant", md: map[string]string{
			MetaKeyProfessorID: "prof-1", MetaKeyEscolaID: "escola-2",
		}, wantErr: ErrForbiddenTenant},
		// ownership is checked first when both mismatch
		{name: "foreign owner and tenant", md: map[string]string{
			MetaKeyProfessorID: "prof-2", MetaKeyEscolaID: "escola-2",
		}, wantErr: ErrForbiddenOwnership},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Authorize(id, tt.md); err != tt.wantErr {
				t.Errorf("Authorize() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

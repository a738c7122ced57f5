package auth

import (
	"testing"
	"time"

	"github.com/meridian-hrm/meridian-hrm/internal/authz"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("secret-key", time.Hour)
	user := &User{ID: 42, Email: "hr@test.local", RoleID: authz.RoleHRManager}

	raw, err := issuer.Issue(user, time.Now())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := issuer.Verify(raw)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != "42" {
		t.Fatalf("expected subject 42, got %q", claims.Subject)
	}
	if claims.Email != "hr@test.local" || claims.RoleID != authz.RoleHRManager {
		t.Fatalf("claims not carried: %+v", claims)
	}
}

func TestTokenWrongSecretRejected(t *testing.T) {
	issuer := NewTokenIssuer("secret-a", time.Hour)
	other := NewTokenIssuer("secret-b", time.Hour)

	raw, err := issuer.Issue(&User{ID: 1, Email: "x@test.local", RoleID: authz.RoleEmployee}, time.Now())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := other.Verify(raw); err == nil {
		t.Fatalf("expected verification failure with wrong secret")
	}
}

func TestTokenExpiryCheckedOnVerify(t *testing.T) {
	issuer := NewTokenIssuer("secret-key", time.Minute)
	raw, err := issuer.Issue(&User{ID: 1, Email: "x@test.local", RoleID: authz.RoleEmployee}, time.Now().Add(-2*time.Minute))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := issuer.Verify(raw); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}

func TestTokenGarbageRejected(t *testing.T) {
	issuer := NewTokenIssuer("secret-key", time.Minute)
	if _, err := issuer.Verify("not.a.token"); err == nil {
		t.Fatalf("expected malformed token to be rejected")
	}
}

package auth

import (
	"errors"
	"testing"
	"time"

	"quiz-progress-service/internal/domain"
)

func TestIssueAndParse(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	raw, err := tokens.Issue(42, domain.RoleAdmin)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	id, err := tokens.Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if id.UserID != 42 || !id.IsAdmin() {
		t.Fatalf("unexpected identity %+v", id)
	}
}

func TestParseRejectsBadTokens(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	raw, _ := tokens.Issue(7, domain.RoleLearner)

	if _, err := NewTokens("other", time.Hour).Parse(raw); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for wrong secret, got %v", err)
	}
	if _, err := tokens.Parse("not-a-token"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for garbage, got %v", err)
	}

	expired := NewTokens("secret", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	old, _ := expired.Issue(7, domain.RoleLearner)
	if _, err := tokens.Parse(old); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for expired token, got %v", err)
	}

	if _, err := tokens.Issue(7, domain.Role("root")); err == nil {
		t.Fatalf("expected unknown role to be refused")
	}
}

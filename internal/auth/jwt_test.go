package auth

import (
	"testing"
	"time"
)

func TestIssueAndParse(t *testing.T) {
	token, exp, err := Issue("u1", "teacher1", "teacher", "classcheck", "test-key", time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if time.Until(exp) <= 0 {
		t.Fatal("expiry is in the past")
	}

	claims, err := Parse(token, "test-key", "classcheck")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.UserID != "u1" || claims.Username != "teacher1" || claims.Role != "teacher" {
		t.Fatalf("claims = %+v", claims)
	}
	if claims.Subject != "u1" {
		t.Errorf("subject = %q, want u1", claims.Subject)
	}
}

func TestParseRejectsWrongKey(t *testing.T) {
	token, _, err := Issue("u1", "teacher1", "teacher", "classcheck", "test-key", time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := Parse(token, "other-key", "classcheck"); err == nil {
		t.Fatal("token signed with another key accepted")
	}
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	token, _, err := Issue("u1", "teacher1", "teacher", "someone-else", "test-key", time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := Parse(token, "test-key", "classcheck"); err == nil {
		t.Fatal("token from another issuer accepted")
	}
}

func TestParseRejectsExpired(t *testing.T) {
	token, _, err := Issue("u1", "teacher1", "teacher", "classcheck", "test-key", -time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := Parse(token, "test-key", "classcheck"); err == nil {
		t.Fatal("expired token accepted")
	}
}

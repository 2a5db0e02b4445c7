package auth

import "testing"

func testAuth() *Auth {
	return New(Config{
		Username:  "admin",
		Password:  "hunter2",
		JWTSecret: "a-secret-at-least-32-bytes-long!",
	})
}

func TestAuthenticate_Success(t *testing.T) {
	a := testAuth()
	token, err := a.Authenticate("admin", "hunter2", "203.0.113.1:5000")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if token == "" {
		t.Fatal("expected a non-empty token")
	}

	claims, err := a.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Sub != "admin" {
		t.Fatalf("expected subject admin, got %s", claims.Sub)
	}
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	a := testAuth()
	if _, err := a.Authenticate("admin", "wrong", "203.0.113.1:5000"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthenticate_RateLimited(t *testing.T) {
	a := New(Config{
		Username:           "admin",
		Password:           "hunter2",
		JWTSecret:           "a-secret-at-least-32-bytes-long!",
		MaxLoginAttempts:    2,
		LoginWindowSeconds:  900,
	})
	ip := "203.0.113.9:5000"
	for i := 0; i < 2; i++ {
		if _, err := a.Authenticate("admin", "wrong", ip); err != ErrInvalidCredentials {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i, err)
		}
	}
	if _, err := a.Authenticate("admin", "hunter2", ip); err != ErrRateLimited {
		t.Fatalf("expected ErrRateLimited after exhausting attempts, got %v", err)
	}
}

func TestValidateToken_RejectsTampered(t *testing.T) {
	a := testAuth()
	token, err := a.CreateToken("admin")
	if err != nil {
		t.Fatalf("create token: %v", err)
	}
	tampered := token[:len(token)-1] + "x"
	if _, err := a.ValidateToken(tampered); err == nil {
		t.Fatal("expected tampered token to be rejected")
	}
}

func TestValidateToken_RejectsGarbage(t *testing.T) {
	a := testAuth()
	if _, err := a.ValidateToken("not-a-jwt"); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

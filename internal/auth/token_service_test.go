package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"pgregory.net/rapid"
)

func newTestTokenService() *TokenService {
	return NewTokenService(TokenServiceConfig{
		Secret: "test-secret-key-32-characters!!!",
		Expiry: 1440 * time.Minute,
		Issuer: "gestao-escolar-test",
	})
}

// For any user id, a generated token must validate against the same service
// and carry the id back in the subject claim.
func TestTokenRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		usuarioID := rapid.Int64Range(1, 1<<40).Draw(t, "usuarioID")

		svc := newTestTokenService()
		token, expiresAt, err := svc.Generate(usuarioID)
		if err != nil {
			t.Fatalf("failed to generate token: %v", err)
		}

		claims, err := svc.Validate(token)
		if err != nil {
			t.Fatalf("failed to validate freshly generated token: %v", err)
		}

		got, err := claims.UsuarioID()
		if err != nil {
			t.Fatalf("failed to extract user id: %v", err)
		}
		if got != usuarioID {
			t.Errorf("subject mismatch: expected %d, got %d", usuarioID, got)
		}

		if claims.ExpiresAt == nil {
			t.Fatal("exp claim is missing")
		}
		if d := claims.ExpiresAt.Time.Sub(expiresAt); d > time.Second || d < -time.Second {
			t.Errorf("exp claim drifted from returned expiry: %v vs %v", claims.ExpiresAt.Time, expiresAt)
		}
	})
}

// Tokens are signed with HS256 and carry iss, sub, iat, exp and a unique jti.
func TestTokenStructure(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		usuarioID := rapid.Int64Range(1, 1<<40).Draw(t, "usuarioID")

		svc := newTestTokenService()
		token, _, err := svc.Generate(usuarioID)
		if err != nil {
			t.Fatalf("failed to generate token: %v", err)
		}

		parser := jwt.NewParser()
		parsed, _, err := parser.ParseUnverified(token, &Claims{})
		if err != nil {
			t.Fatalf("failed to parse token: %v", err)
		}

		if parsed.Method.Alg() != "HS256" {
			t.Errorf("expected HS256 signing method, got %s", parsed.Method.Alg())
		}

		claims, ok := parsed.Claims.(*Claims)
		if !ok {
			t.Fatal("failed to cast claims")
		}
		if claims.Issuer != "gestao-escolar-test" {
			t.Errorf("iss claim mismatch: got %s", claims.Issuer)
		}
		if claims.IssuedAt == nil {
			t.Error("iat claim is missing")
		}
		if claims.ExpiresAt == nil {
			t.Error("exp claim is missing")
		}
		if claims.ID == "" {
			t.Error("jti claim is missing")
		}
	})
}

// A token signed with a different secret must be rejected, and the failure is
// indistinguishable from any other decode failure.
func TestTokenWrongSecretRejected(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		usuarioID := rapid.Int64Range(1, 1<<40).Draw(t, "usuarioID")

		signer := newTestTokenService()
		verifier := NewTokenService(TokenServiceConfig{
			Secret: "another-secret-key-32-characters",
			Expiry: 1440 * time.Minute,
			Issuer: "gestao-escolar-test",
		})

		token, _, err := signer.Generate(usuarioID)
		if err != nil {
			t.Fatalf("failed to generate token: %v", err)
		}

		if _, err := verifier.Validate(token); err != ErrTokenInvalido {
			t.Errorf("expected ErrTokenInvalido for wrong secret, got %v", err)
		}
	})
}

func TestTokenExpiredRejected(t *testing.T) {
	svc := NewTokenService(TokenServiceConfig{
		Secret: "test-secret-key-32-characters!!!",
		Expiry: -1 * time.Minute,
		Issuer: "gestao-escolar-test",
	})

	token, _, err := svc.Generate(42)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	if _, err := svc.Validate(token); err != ErrTokenInvalido {
		t.Errorf("expected ErrTokenInvalido for expired token, got %v", err)
	}
}

func TestTokenMalformedRejected(t *testing.T) {
	svc := newTestTokenService()

	for _, token := range []string{"", "garbage", "a.b.c", "eyJhbGciOiJIUzI1NiJ9"} {
		if _, err := svc.Validate(token); err != ErrTokenInvalido {
			t.Errorf("expected ErrTokenInvalido for %q, got %v", token, err)
		}
	}
}

func TestClaimsUsuarioID(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		want    int64
		wantErr bool
	}{
		{"numeric subject", "42", 42, false},
		{"empty subject", "", 0, true},
		{"non-numeric subject", "abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := &Claims{}
			claims.Subject = tt.subject

			got, err := claims.UsuarioID()
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for subject %q", tt.subject)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

package auth

import (
	"strings"
	"testing"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	senhas := []string{"123456", "senha-F0rte!", "àcentuada çedilha", strings.Repeat("x", 60)}

	for _, senha := range senhas {
		hash, err := HashPassword(senha)
		if err != nil {
			t.Fatalf("failed to hash %q: %v", senha, err)
		}

		if !VerifyPassword(senha, hash) {
			t.Errorf("freshly hashed password %q failed verification", senha)
		}
		if strings.Contains(hash, senha) {
			t.Errorf("digest contains the plaintext for %q", senha)
		}
	}
}

func TestPasswordWrongPasswordRejected(t *testing.T) {
	hash, err := HashPassword("senha-correta")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	for _, outra := range []string{"senha-errada", "senha-corretaX", "Senha-correta", ""} {
		if VerifyPassword(outra, hash) {
			t.Errorf("password %q verified against a different digest", outra)
		}
	}
}

// Verification fails closed on malformed digests instead of erroring out.
func TestPasswordMalformedDigestRejected(t *testing.T) {
	for _, hash := range []string{"", "not-a-bcrypt-digest", "$2a$12$tooshort"} {
		if VerifyPassword("qualquer", hash) {
			t.Errorf("malformed digest %q verified successfully", hash)
		}
	}
}

// Two hashes of the same password differ: the salt is per-digest.
func TestPasswordHashesAreSalted(t *testing.T) {
	first, err := HashPassword("123456")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	second, err := HashPassword("123456")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	if first == second {
		t.Error("two digests of the same password are identical")
	}
}

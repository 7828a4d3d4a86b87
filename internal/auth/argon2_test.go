package auth

import (
	"strings"
	"testing"
)

// testParams keeps hashing fast in tests.
var testParams = Params{Time: 1, Memory: 8 * 1024, Threads: 1}

func TestPasswordHasher_HashFormat(t *testing.T) {
	t.Parallel()

	h := NewPasswordHasher(testParams)
	hash, err := h.Hash("Onepassword123!")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	if !strings.HasPrefix(hash, "$argon2id$v=19$") {
		t.Errorf("Hash should be in PHC format, got: %s", hash)
	}

	parts := strings.Split(hash, "$")
	if len(parts) != 6 {
		t.Fatalf("Hash should have 6 parts, got: %d", len(parts))
	}
	if parts[3] != "m=8192,t=1,p=1" {
		t.Errorf("Expected m=8192,t=1,p=1, got: %s", parts[3])
	}
}

func TestNewPasswordHasher_Defaults(t *testing.T) {
	t.Parallel()

	h := NewPasswordHasher(Params{})
	if h.params != DefaultParams {
		t.Errorf("zero params should fall back to defaults, got %+v", h.params)
	}
}

func TestPasswordHasher_SaltedUniqueness(t *testing.T) {
	t.Parallel()

	h := NewPasswordHasher(testParams)
	hash1, err := h.Hash("the_same_password")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	hash2, err := h.Hash("the_same_password")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	if hash1 == hash2 {
		t.Error("Same password should produce different hashes due to random salt")
	}

	for _, hash := range []string{hash1, hash2} {
		ok, err := h.Verify("the_same_password", hash)
		if err != nil || !ok {
			t.Errorf("Verify(%q) = %v, %v; want true, nil", hash, ok, err)
		}
	}
}

func TestPasswordHasher_VerifyWrongPassword(t *testing.T) {
	t.Parallel()

	h := NewPasswordHasher(testParams)
	hash, err := h.Hash("Onepassword123!")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	ok, err := h.Verify("Twopassword123!", hash)
	if err != nil {
		t.Fatalf("Verify should not return error for wrong password: %v", err)
	}
	if ok {
		t.Error("Wrong password should not match")
	}
}

func TestPasswordHasher_VerifyAcrossParams(t *testing.T) {
	t.Parallel()

	old := NewPasswordHasher(testParams)
	hash, err := old.Hash("rotate-me")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	current := NewPasswordHasher(Params{Time: 2, Memory: 16 * 1024, Threads: 2})
	ok, err := current.Verify("rotate-me", hash)
	if err != nil || !ok {
		t.Errorf("hash made with older params should verify, got %v, %v", ok, err)
	}
}

func TestPasswordHasher_VerifyInvalidHash(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		hash    string
		wantErr error
	}{
		{"empty", "", ErrInvalidHash},
		{"wrong format", "not-a-hash", ErrInvalidHash},
		{"wrong algorithm", "$bcrypt$v=19$m=65536,t=3,p=4$salt$hash", ErrInvalidHash},
		{"missing parts", "$argon2id$v=19$m=65536", ErrInvalidHash},
		{"bad params", "$argon2id$v=19$m=x,t=3,p=4$c2FsdA$aGFzaA", ErrInvalidHash},
		{"old version", "$argon2id$v=18$m=65536,t=3,p=4$c29tZXNhbHQ$c29tZWhhc2g", ErrIncompatibleVersion},
	}

	h := NewPasswordHasher(testParams)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ok, err := h.Verify("password", tt.hash)
			if err != tt.wantErr {
				t.Errorf("Verify(%q) error = %v, want %v", tt.hash, err, tt.wantErr)
			}
			if ok {
				t.Error("invalid hash must never match")
			}
		})
	}
}

func TestTokenDigest(t *testing.T) {
	t.Parallel()

	a := TokenDigest("token-a")
	if a != TokenDigest("token-a") {
		t.Error("Same input should produce same digest")
	}
	if len(a) != 32 {
		t.Errorf("digest should be 32 hex chars, got %d", len(a))
	}
	if a == TokenDigest("token-b") {
		t.Error("Different input should produce different digest")
	}
}

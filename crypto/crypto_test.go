package crypto

import "testing"

func TestCommitmentHash(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		h1 := CommitmentHash(true, "salt-a")
		h2 := CommitmentHash(true, "salt-a")
		if h1 != h2 {
			t.Fatalf("same inputs produced different hashes: %s vs %s", h1, h2)
		}
	})

	t.Run("move changes digest", func(t *testing.T) {
		if CommitmentHash(true, "salt-a") == CommitmentHash(false, "salt-a") {
			t.Fatal("cooperate and defect hashed identically for the same salt")
		}
	})

	t.Run("salt changes digest", func(t *testing.T) {
		if CommitmentHash(true, "salt-a") == CommitmentHash(true, "salt-b") {
			t.Fatal("different salts hashed identically")
		}
	})

	t.Run("hex encoded sha256", func(t *testing.T) {
		h := CommitmentHash(false, "x")
		if len(h) != 64 {
			t.Fatalf("expected 64 hex chars, got %d", len(h))
		}
	})
}

func TestNewSalt(t *testing.T) {
	s1, err := NewSalt()
	if err != nil {
		t.Fatalf("NewSalt failed: %v", err)
	}
	if len(s1) != SaltBytes*2 {
		t.Fatalf("expected %d hex chars, got %d", SaltBytes*2, len(s1))
	}
	s2, err := NewSalt()
	if err != nil {
		t.Fatalf("NewSalt failed: %v", err)
	}
	if s1 == s2 {
		t.Fatal("two salts collided")
	}
}

func TestSignAndVerify(t *testing.T) {
	pub, priv, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair failed: %v", err)
	}

	msg := "bond:abc123:commit"
	sig, err := SignMessage(priv, []byte(msg))
	if err != nil {
		t.Fatalf("SignMessage failed: %v", err)
	}

	if !VerifySignature(pub, msg, sig) {
		t.Fatal("valid signature rejected")
	}
	if VerifySignature(pub, msg+"tampered", sig) {
		t.Fatal("tampered message verified")
	}

	otherPub, _, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair failed: %v", err)
	}
	if VerifySignature(otherPub, msg, sig) {
		t.Fatal("signature verified under the wrong key")
	}
}

func TestSignMessageRejectsBadKey(t *testing.T) {
	if _, err := SignMessage("not-hex", []byte("m")); err == nil {
		t.Fatal("expected error for malformed private key")
	}
	if _, err := SignMessage("abcd", []byte("m")); err == nil {
		t.Fatal("expected error for short private key")
	}
}

package registry

import "testing"

func TestRegisterAgentIdempotent(t *testing.T) {
	first, err := RegisterAgent("agent-idem")
	if err != nil {
		t.Fatalf("RegisterAgent failed: %v", err)
	}
	if first.PublicKey == "" || first.PrivateKey == "" {
		t.Fatal("identity missing key material")
	}

	second, err := RegisterAgent("agent-idem")
	if err != nil {
		t.Fatalf("repeated RegisterAgent failed: %v", err)
	}
	if second.PublicKey != first.PublicKey {
		t.Fatal("re-registration rotated the keypair")
	}
}

func TestSignVerify(t *testing.T) {
	if _, err := RegisterAgent("agent-sign"); err != nil {
		t.Fatalf("RegisterAgent failed: %v", err)
	}

	msg := "bond:xyz:reveal"
	sig, err := Sign("agent-sign", []byte(msg))
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	if !Verify("agent-sign", msg, sig) {
		t.Fatal("valid signature rejected")
	}
	if Verify("agent-sign", msg+"x", sig) {
		t.Fatal("tampered message verified")
	}

	if _, err := Sign("unknown-agent", []byte(msg)); err == nil {
		t.Fatal("expected error signing for unknown agent")
	}
	if Verify("unknown-agent", msg, sig) {
		t.Fatal("verification succeeded for unknown agent")
	}
}

func TestLookup(t *testing.T) {
	if _, ok := Lookup("never-registered"); ok {
		t.Fatal("lookup found an unregistered agent")
	}
	id, err := RegisterAgent("agent-lookup")
	if err != nil {
		t.Fatalf("RegisterAgent failed: %v", err)
	}
	got, ok := Lookup("agent-lookup")
	if !ok || got.PublicKey != id.PublicKey {
		t.Fatal("lookup missed a registered agent")
	}
}

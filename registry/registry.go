package registry

import (
	"fmt"
	"sync"

	"github.com/river2spring/monad-agent-dating-app/crypto"
)

// Identity is an agent's signing keypair. The simulation owns the private
// keys; external wallet management is out of scope.
type Identity struct {
	AgentID    string `json:"agent_id"`
	PublicKey  string `json:"public_key"`
	PrivateKey string `json:"-"`
}

var (
	identities = make(map[string]Identity)
	agentLock  sync.Mutex
)

// RegisterAgent generates and stores a fresh identity for an agent. Calling
// it again for the same agent returns the existing identity.
func RegisterAgent(agentID string) (Identity, error) {
	agentLock.Lock()
	defer agentLock.Unlock()

	if id, ok := identities[agentID]; ok {
		return id, nil
	}

	pub, priv, err := crypto.GenerateKeyPair()
	if err != nil {
		return Identity{}, fmt.Errorf("keygen for agent %s: %w", agentID, err)
	}
	id := Identity{AgentID: agentID, PublicKey: pub, PrivateKey: priv}
	identities[agentID] = id
	return id, nil
}

// Lookup returns an agent's identity if registered.
func Lookup(agentID string) (Identity, bool) {
	agentLock.Lock()
	defer agentLock.Unlock()
	id, ok := identities[agentID]
	return id, ok
}

// Sign signs a message with the agent's private key.
func Sign(agentID string, message []byte) (string, error) {
	id, ok := Lookup(agentID)
	if !ok {
		return "", fmt.Errorf("no identity for agent %s", agentID)
	}
	return crypto.SignMessage(id.PrivateKey, message)
}

// Verify checks a signature against the agent's public key.
func Verify(agentID, message, signature string) bool {
	id, ok := Lookup(agentID)
	if !ok {
		return false
	}
	return crypto.VerifySignature(id.PublicKey, message, signature)
}

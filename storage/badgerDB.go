package storage

import (
	"encoding/json"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v3"

	"github.com/river2spring/monad-agent-dating-app/core"
)

// Storage is the persistence surface of the simulation. Agent and bond
// state must survive process restarts; settlements are written
// all-or-nothing.
type Storage interface {
	// Generic operations
	Put(key string, value []byte) error
	Get(key string) ([]byte, error)
	Delete(key string) error
	GetByPrefix(prefix string) (map[string][]byte, error)
	DeleteByPrefix(prefix string) error
	PutObject(key string, obj interface{}) error
	GetObject(key string, obj interface{}) error

	// Domain-specific operations
	SaveAgent(v core.AgentView) error
	GetAgent(agentID string) (core.AgentView, error)
	GetAgents() ([]core.AgentView, error)
	SaveBond(v core.BondView) error
	GetBond(bondID string) (core.BondView, error)
	GetBonds() ([]core.BondView, error)
	ApplySettlement(bond core.BondView, agent1, agent2 core.AgentView) error
	ClearSimulationData() error

	// Management operations
	Close()
	RunGC() error
}

// DBStorage represents a persistent storage using BadgerDB
type DBStorage struct {
	db     *badger.DB
	mu     sync.Mutex
	simID  string
	config BadgerDBConfig
}

var (
	// Map of simulationID -> DBStorage
	instances = make(map[string]*DBStorage)
	mu        sync.RWMutex
)

// GetDBStorage returns a DB instance for the specified simulation
func GetDBStorage(dataDir, simID string) (*DBStorage, error) {
	return GetDBStorageWithConfig(DefaultConfig(dataDir), simID)
}

// GetDBStorageWithConfig returns a DB instance with custom configuration
func GetDBStorageWithConfig(config BadgerDBConfig, simID string) (*DBStorage, error) {
	mu.RLock()
	instance, exists := instances[simID]
	mu.RUnlock()

	if exists {
		return instance, nil
	}

	mu.Lock()
	defer mu.Unlock()

	// Check again in case another goroutine created it while we were waiting
	instance, exists = instances[simID]
	if exists {
		return instance, nil
	}

	dbPath := filepath.Join(config.DataDir, "badgerdb", simID)
	instance, err := newDBStorage(dbPath, config, simID)
	if err != nil {
		return nil, err
	}

	instances[simID] = instance

	if config.GCInterval > 0 {
		go instance.startGCRoutine(time.Duration(config.GCInterval) * time.Second)
	}

	return instance, nil
}

// NewInMemoryStorage opens an isolated in-memory store, used by tests.
func NewInMemoryStorage(simID string) (*DBStorage, error) {
	return newDBStorage("", InMemoryConfig(), simID)
}

func newDBStorage(dbPath string, config BadgerDBConfig, simID string) (*DBStorage, error) {
	opts := badger.DefaultOptions(dbPath)
	if config.DisableLogging {
		opts.Logger = nil
	}
	opts.InMemory = config.InMemory
	opts.SyncWrites = config.SyncWrites

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open BadgerDB: %v", err)
	}

	return &DBStorage{
		db:     db,
		simID:  simID,
		config: config,
	}, nil
}

func (s *DBStorage) startGCRoutine(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		if err := s.RunGC(); err != nil && err != badger.ErrNoRewrite {
			log.Printf("BadgerDB GC failed: %v", err)
		}
	}
}

// Close closes the BadgerDB database
func (s *DBStorage) Close() {
	if s.db != nil {
		s.db.Close()
	}
}

// CloseAll closes all BadgerDB instances
func CloseAll() {
	mu.Lock()
	defer mu.Unlock()

	for _, instance := range instances {
		instance.Close()
	}
	instances = make(map[string]*DBStorage)
}

// Put stores a key-value pair in the database
func (s *DBStorage) Put(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
}

// Get retrieves a value from the database by key
func (s *DBStorage) Get(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var valCopy []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return nil // Key not found, return nil value
			}
			return err
		}

		return item.Value(func(val []byte) error {
			valCopy = append([]byte{}, val...)
			return nil
		})
	})

	if err != nil {
		return nil, fmt.Errorf("failed to get value: %v", err)
	}

	return valCopy, nil
}

// Delete removes a key-value pair from the database
func (s *DBStorage) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// GetByPrefix retrieves all key-value pairs with a given prefix
func (s *DBStorage) GetByPrefix(prefix string) (map[string][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make(map[string][]byte)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefixBytes := []byte(prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			k := item.Key()
			err := item.Value(func(v []byte) error {
				// Copy the key and value since they are only valid during this transaction
				keyCopy := append([]byte{}, k...)
				valCopy := append([]byte{}, v...)
				result[string(keyCopy)] = valCopy
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to get values by prefix: %v", err)
	}

	return result, nil
}

// DeleteByPrefix deletes all key-value pairs with a given prefix
func (s *DBStorage) DeleteByPrefix(prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.deleteByPrefix(prefix)
}

// PutObject serializes and stores an object in the database
func (s *DBStorage) PutObject(key string, obj interface{}) error {
	data, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("failed to marshal object: %v", err)
	}

	return s.Put(key, data)
}

// GetObject retrieves and deserializes an object from the database
func (s *DBStorage) GetObject(key string, obj interface{}) error {
	data, err := s.Get(key)
	if err != nil {
		return err
	}

	if data == nil {
		return fmt.Errorf("key not found: %s", key)
	}

	if err := json.Unmarshal(data, obj); err != nil {
		return fmt.Errorf("failed to unmarshal object: %v", err)
	}

	return nil
}

// RunGC runs garbage collection on the database
func (s *DBStorage) RunGC() error {
	if s.config.InMemory {
		return nil
	}
	return s.db.RunValueLogGC(0.5) // Clean up if at least 50% can be discarded
}

func (s *DBStorage) agentKey(agentID string) string {
	return fmt.Sprintf("agent:%s:%s", s.simID, agentID)
}

func (s *DBStorage) bondKey(bondID string) string {
	return fmt.Sprintf("bond:%s:%s", s.simID, bondID)
}

// deleteByPrefix deletes all keys with the given prefix
func (s *DBStorage) deleteByPrefix(prefix string) error {
	// First collect all keys to delete
	keysToDelete := [][]byte{}

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefixBytes := []byte(prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			key := it.Item().KeyCopy(nil)
			keysToDelete = append(keysToDelete, key)
		}
		return nil
	})

	if err != nil {
		return fmt.Errorf("failed to collect keys for deletion: %v", err)
	}

	// Now delete all collected keys in a separate transaction
	return s.db.Update(func(txn *badger.Txn) error {
		for _, key := range keysToDelete {
			if err := txn.Delete(key); err != nil {
				return fmt.Errorf("failed to delete key: %v", err)
			}
		}
		return nil
	})
}

// SaveAgent persists an agent snapshot to BadgerDB
func (s *DBStorage) SaveAgent(v core.AgentView) error {
	return s.PutObject(s.agentKey(v.ID), v)
}

// GetAgent retrieves one agent snapshot from BadgerDB
func (s *DBStorage) GetAgent(agentID string) (core.AgentView, error) {
	var v core.AgentView
	err := s.GetObject(s.agentKey(agentID), &v)
	return v, err
}

// GetAgents retrieves all persisted agent snapshots for the simulation
func (s *DBStorage) GetAgents() ([]core.AgentView, error) {
	prefix := fmt.Sprintf("agent:%s:", s.simID)
	data, err := s.GetByPrefix(prefix)
	if err != nil {
		return nil, err
	}

	agents := make([]core.AgentView, 0, len(data))
	for _, raw := range data {
		var v core.AgentView
		if err := json.Unmarshal(raw, &v); err != nil {
			log.Printf("Failed to unmarshal agent: %v", err)
			continue
		}
		agents = append(agents, v)
	}
	return agents, nil
}

// SaveBond persists a bond snapshot to BadgerDB
func (s *DBStorage) SaveBond(v core.BondView) error {
	return s.PutObject(s.bondKey(v.ID), v)
}

// GetBond retrieves one bond snapshot from BadgerDB
func (s *DBStorage) GetBond(bondID string) (core.BondView, error) {
	var v core.BondView
	err := s.GetObject(s.bondKey(bondID), &v)
	return v, err
}

// GetBonds retrieves all persisted bond snapshots for the simulation
func (s *DBStorage) GetBonds() ([]core.BondView, error) {
	prefix := fmt.Sprintf("bond:%s:", s.simID)
	data, err := s.GetByPrefix(prefix)
	if err != nil {
		return nil, err
	}

	bonds := make([]core.BondView, 0, len(data))
	for _, raw := range data {
		var v core.BondView
		if err := json.Unmarshal(raw, &v); err != nil {
			log.Printf("Failed to unmarshal bond: %v", err)
			continue
		}
		bonds = append(bonds, v)
	}
	return bonds, nil
}

// ApplySettlement writes a settled (or timed-out) bond together with both
// updated agents in a single transaction: either all three records land or
// none do, so a crash cannot split payouts from the bond's terminal mark.
func (s *DBStorage) ApplySettlement(bond core.BondView, agent1, agent2 core.AgentView) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bondData, err := json.Marshal(bond)
	if err != nil {
		return fmt.Errorf("failed to marshal bond: %v", err)
	}
	agent1Data, err := json.Marshal(agent1)
	if err != nil {
		return fmt.Errorf("failed to marshal agent: %v", err)
	}
	agent2Data, err := json.Marshal(agent2)
	if err != nil {
		return fmt.Errorf("failed to marshal agent: %v", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(s.bondKey(bond.ID)), bondData); err != nil {
			return err
		}
		if err := txn.Set([]byte(s.agentKey(agent1.ID)), agent1Data); err != nil {
			return err
		}
		return txn.Set([]byte(s.agentKey(agent2.ID)), agent2Data)
	})
}

// ClearSimulationData removes all data for the simulation
func (s *DBStorage) ClearSimulationData() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefixes := []string{
		fmt.Sprintf("agent:%s:", s.simID),
		fmt.Sprintf("bond:%s:", s.simID),
	}

	for _, prefix := range prefixes {
		if err := s.deleteByPrefix(prefix); err != nil {
			return err
		}
	}

	return nil
}

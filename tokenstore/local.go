package tokenstore

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	apperrors "github.com/jrsteele09/tripsync-admin/internal/errors"
	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"
)

var _ Backend = (*LocalStore)(nil)

const (
	localStoreVersion = 1
	saltLength        = 16
	nonceLength       = 24
)

// LocalStore is the client's persistent key/value store. It never expires
// entries. When a path is set every mutation is flushed to disk; when a
// passphrase is set the file is sealed with NaCl secretbox under a key
// derived with scrypt.
type LocalStore struct {
	mu         sync.RWMutex
	items      map[string]string
	path       string
	passphrase string
	salt       []byte
	key        *[32]byte
}

// LocalOption configures a LocalStore.
type LocalOption func(*LocalStore)

// WithLocalFile persists the store at path.
func WithLocalFile(path string) LocalOption {
	return func(ls *LocalStore) {
		ls.path = path
	}
}

// WithPassphrase encrypts the persisted file. Ignored for in-memory stores.
func WithPassphrase(passphrase string) LocalOption {
	return func(ls *LocalStore) {
		ls.passphrase = passphrase
	}
}

// localEnvelope is the on-disk format. Exactly one of Items or Sealed is set.
type localEnvelope struct {
	Version int               `json:"version"`
	Salt    string            `json:"salt,omitempty"`
	Sealed  string            `json:"sealed,omitempty"`
	Items   map[string]string `json:"items,omitempty"`
}

// NewLocalStore opens (or creates on first write) a local store.
func NewLocalStore(opts ...LocalOption) (*LocalStore, error) {
	ls := &LocalStore{items: make(map[string]string)}
	for _, opt := range opts {
		opt(ls)
	}
	if err := ls.load(); err != nil {
		return nil, err
	}
	return ls, nil
}

func (ls *LocalStore) Get(key string) (string, bool) {
	ls.mu.RLock()
	defer ls.mu.RUnlock()

	v, ok := ls.items[key]
	return v, ok
}

// Set stores value under key. maxAge is ignored: local entries do not expire.
func (ls *LocalStore) Set(key, value string, _ time.Duration) error {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	ls.items[key] = value
	return ls.flush()
}

func (ls *LocalStore) Delete(key string) error {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	if _, ok := ls.items[key]; !ok {
		return nil
	}
	delete(ls.items, key)
	return ls.flush()
}

// Keys lists the stored keys in sorted order.
func (ls *LocalStore) Keys() []string {
	ls.mu.RLock()
	defer ls.mu.RUnlock()

	keys := make([]string, 0, len(ls.items))
	for k := range ls.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (ls *LocalStore) load() error {
	if ls.path == "" {
		return nil
	}

	data, err := os.ReadFile(ls.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("[LocalStore load] read %s: %w", ls.path, err)
	}

	var env localEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return apperrors.Wrapf(apperrors.ErrCorruptStore, "[LocalStore load] decode %s: %v", ls.path, err)
	}

	if env.Sealed == "" {
		for k, v := range env.Items {
			ls.items[k] = v
		}
		return nil
	}

	if ls.passphrase == "" {
		return apperrors.Wrapf(apperrors.ErrStoreUnavailable, "[LocalStore load] %s is encrypted and no passphrase was given", ls.path)
	}

	salt, err := base64.StdEncoding.DecodeString(env.Salt)
	if err != nil || len(salt) != saltLength {
		return apperrors.Wrapf(apperrors.ErrCorruptStore, "[LocalStore load] bad salt in %s", ls.path)
	}
	if err := ls.deriveKey(salt); err != nil {
		return err
	}

	sealed, err := base64.StdEncoding.DecodeString(env.Sealed)
	if err != nil || len(sealed) < nonceLength {
		return apperrors.Wrapf(apperrors.ErrCorruptStore, "[LocalStore load] bad payload in %s", ls.path)
	}
	var nonce [nonceLength]byte
	copy(nonce[:], sealed[:nonceLength])

	plain, ok := secretbox.Open(nil, sealed[nonceLength:], &nonce, ls.key)
	if !ok {
		return apperrors.Wrapf(apperrors.ErrCorruptStore, "[LocalStore load] cannot decrypt %s (wrong passphrase?)", ls.path)
	}
	if err := json.Unmarshal(plain, &ls.items); err != nil {
		return apperrors.Wrapf(apperrors.ErrCorruptStore, "[LocalStore load] decode sealed items: %v", err)
	}
	return nil
}

// flush must be called with ls.mu held.
func (ls *LocalStore) flush() error {
	if ls.path == "" {
		return nil
	}

	env := localEnvelope{Version: localStoreVersion}
	if ls.passphrase == "" {
		env.Items = ls.items
	} else {
		if ls.key == nil {
			salt := make([]byte, saltLength)
			if _, err := rand.Read(salt); err != nil {
				return fmt.Errorf("[LocalStore flush] generate salt: %w", err)
			}
			if err := ls.deriveKey(salt); err != nil {
				return err
			}
		}

		plain, err := json.Marshal(ls.items)
		if err != nil {
			return fmt.Errorf("[LocalStore flush] encode items: %w", err)
		}
		var nonce [nonceLength]byte
		if _, err := rand.Read(nonce[:]); err != nil {
			return fmt.Errorf("[LocalStore flush] generate nonce: %w", err)
		}
		sealed := secretbox.Seal(nonce[:], plain, &nonce, ls.key)
		env.Salt = base64.StdEncoding.EncodeToString(ls.salt)
		env.Sealed = base64.StdEncoding.EncodeToString(sealed)
	}

	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("[LocalStore flush] encode envelope: %w", err)
	}
	return writeFileAtomic(ls.path, data, 0o600)
}

func (ls *LocalStore) deriveKey(salt []byte) error {
	derived, err := scrypt.Key([]byte(ls.passphrase), salt, 1<<15, 8, 1, 32)
	if err != nil {
		return fmt.Errorf("[LocalStore deriveKey] %w", err)
	}
	var key [32]byte
	copy(key[:], derived)
	ls.key = &key
	ls.salt = salt
	return nil
}

package credstore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/crypto/hkdf"
)

var _ Store = (*File)(nil)

// File is a Store backed by a single JSON file in which every value is
// sealed with AES-GCM under a key derived from the caller-supplied
// device secret. It stands in for the mobile platform's secure storage:
// the file is owner-readable only and useless without the secret.
type File struct {
	path string
	aead cipher.AEAD

	mu     sync.RWMutex
	values map[string]string // key -> base64(nonce | ciphertext)
}

// NewFile opens (or creates on first Set) the store at path. The
// encryption key is derived from secret with HKDF-SHA256, so the same
// secret always reopens the same store.
func NewFile(path string, secret []byte) (*File, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("[credstore.NewFile] path is required")
	}
	if len(secret) == 0 {
		return nil, errors.New("[credstore.NewFile] device secret is required")
	}

	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte("credstore-key")), key); err != nil {
		return nil, errors.Wrap(err, "[credstore.NewFile] derive key")
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Wrap(err, "[credstore.NewFile] aes.NewCipher")
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Wrap(err, "[credstore.NewFile] cipher.NewGCM")
	}

	f := &File{path: path, aead: aead, values: make(map[string]string)}
	if err := f.load(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *File) Get(key string) (string, error) {
	f.mu.RLock()
	blob, ok := f.values[key]
	f.mu.RUnlock()
	if !ok {
		return "", nil
	}

	sealed, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return "", errors.Wrapf(err, "[credstore.Get] decode %q", key)
	}
	nonceSize := f.aead.NonceSize()
	if len(sealed) < nonceSize {
		return "", errors.Errorf("[credstore.Get] value for %q is truncated", key)
	}
	plain, err := f.aead.Open(nil, sealed[:nonceSize], sealed[nonceSize:], nil)
	if err != nil {
		return "", errors.Wrapf(err, "[credstore.Get] open %q", key)
	}
	return string(plain), nil
}

func (f *File) Set(key, value string) error {
	nonce := make([]byte, f.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return errors.Wrap(err, "[credstore.Set] nonce")
	}
	sealed := f.aead.Seal(nonce, nonce, []byte(value), nil)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = base64.StdEncoding.EncodeToString(sealed)
	return f.persistLocked()
}

func (f *File) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.values[key]; !ok {
		return nil
	}
	delete(f.values, key)
	return f.persistLocked()
}

func (f *File) load() error {
	b, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(err, "[credstore.load] read store file")
	}
	if len(b) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, &f.values); err != nil {
		return errors.Wrap(err, "[credstore.load] decode store file")
	}
	return nil
}

func (f *File) persistLocked() error {
	b, err := json.MarshalIndent(f.values, "", "  ")
	if err != nil {
		return errors.Wrap(err, "[credstore.persist] encode store file")
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return errors.Wrap(err, "[credstore.persist] mkdir store dir")
	}
	if err := os.WriteFile(f.path, b, 0o600); err != nil {
		return errors.Wrap(err, "[credstore.persist] write store file")
	}
	return nil
}

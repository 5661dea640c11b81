package file

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"

	"github.com/simbleau/convo/pkg/walker"
)

// Keys holds the AES-256 key material for an encrypted store. Active seals
// every save. Fallbacks are only tried when loading, so a key can be rotated
// without locking out sessions written under the old one: configure the new
// key as Active, keep the old one in Fallbacks, and drop it once every
// session has been re-saved.
type Keys struct {
	Active    []byte
	Fallbacks [][]byte
}

// sealer encrypts and decrypts session payloads with AES-256-GCM.
type sealer struct {
	active    cipher.AEAD
	fallbacks []cipher.AEAD
}

func newSealer(keys Keys) (*sealer, error) {
	active, err := newAEAD(keys.Active)
	if err != nil {
		return nil, fmt.Errorf("active key: %w", err)
	}
	s := &sealer{active: active}
	for i, key := range keys.Fallbacks {
		aead, err := newAEAD(key)
		if err != nil {
			return nil, fmt.Errorf("fallback key %d: %w", i, err)
		}
		s.fallbacks = append(s.fallbacks, aead)
	}
	return s, nil
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("key must be exactly 32 bytes (AES-256), got %d", len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	return cipher.NewGCM(block)
}

// seal encrypts plaintext and prepends the nonce to the ciphertext.
func (s *sealer) seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, s.active.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return s.active.Seal(nonce, nonce, plaintext, nil), nil
}

// open decrypts with the active key first, then each fallback in order, so
// sessions sealed before a key change keep loading.
func (s *sealer) open(sealed []byte) ([]byte, error) {
	if plaintext, err := openWith(s.active, sealed); err == nil {
		return plaintext, nil
	}
	for _, aead := range s.fallbacks {
		if plaintext, err := openWith(aead, sealed); err == nil {
			return plaintext, nil
		}
	}
	return nil, fmt.Errorf("failed to decrypt session: no configured key matches")
}

func openWith(aead cipher.AEAD, sealed []byte) ([]byte, error) {
	if len(sealed) < aead.NonceSize() {
		return nil, fmt.Errorf("sealed data is shorter than a nonce")
	}
	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	return aead.Open(nil, nonce, ciphertext, nil)
}

// envelope is the on-disk form of an encrypted session file.
type envelope struct {
	Sealed string `json:"sealed"`
}

// encode serializes state for disk, sealing it when the store carries keys.
// Plaintext stores keep the indented form so session files stay readable.
func (s *Store) encode(state *walker.State) ([]byte, error) {
	if s.sealer == nil {
		data, err := json.MarshalIndent(state, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal state: %w", err)
		}
		return data, nil
	}

	plaintext, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal state: %w", err)
	}
	sealed, err := s.sealer.seal(plaintext)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Sealed: base64.StdEncoding.EncodeToString(sealed)})
}

// decode parses a session file, refusing to cross the encryption boundary in
// either direction: a sealed file never loads through a plaintext store, and
// a plaintext file never loads through an encrypted one.
func (s *Store) decode(data []byte) (*walker.State, error) {
	var env envelope
	if s.sealer == nil {
		if json.Unmarshal(data, &env) == nil && env.Sealed != "" {
			return nil, fmt.Errorf("session is encrypted; open the store with its key")
		}
		var state walker.State
		if err := json.Unmarshal(data, &state); err != nil {
			return nil, fmt.Errorf("failed to unmarshal session state: %w", err)
		}
		return &state, nil
	}

	if err := json.Unmarshal(data, &env); err != nil || env.Sealed == "" {
		return nil, fmt.Errorf("session is not encrypted; refusing to load it through an encrypted store")
	}
	sealed, err := base64.StdEncoding.DecodeString(env.Sealed)
	if err != nil {
		return nil, fmt.Errorf("failed to decode sealed session: %w", err)
	}
	plaintext, err := s.sealer.open(sealed)
	if err != nil {
		return nil, err
	}
	var state walker.State
	if err := json.Unmarshal(plaintext, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session state: %w", err)
	}
	return &state, nil
}

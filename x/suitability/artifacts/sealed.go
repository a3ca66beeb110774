package artifacts

import (
	"bytes"
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"
)

// ErrDecryptionFailed is returned when a sealed artifact fails authentication,
// usually because of a wrong passphrase or a renamed artifact.
var ErrDecryptionFailed = errors.New("artifact authentication failed")

var sealMagic = []byte("ZKSEAL1\x00")

const (
	sealSaltSize  = 32
	sealNonceSize = 12
	sealTagSize   = 16
)

// KDFParams are the Argon2id cost parameters.
type KDFParams struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
}

// DefaultKDFParams: time=3, memory=64MB, threads=4.
var DefaultKDFParams = KDFParams{Time: 3, Memory: 64 * 1024, Threads: 4}

// SealedStore encrypts artifacts with AES-256-GCM before handing them to the
// wrapped Store. Each artifact gets a fresh salt; the Argon2id master key is
// expanded per artifact name with HKDF, and the name is bound as associated
// data, so a sealed blob only opens under the name it was stored as.
//
// Layout: magic | salt | nonce | ciphertext | tag
type SealedStore struct {
	inner      Store
	passphrase []byte
	kdf        KDFParams
}

var _ Store = (*SealedStore)(nil)

// SealedOption configures a SealedStore.
type SealedOption func(*SealedStore)

// WithKDFParams overrides the Argon2id cost parameters.
func WithKDFParams(p KDFParams) SealedOption {
	return func(s *SealedStore) { s.kdf = p }
}

// NewSealedStore wraps inner. The passphrase must be non-empty.
func NewSealedStore(inner Store, passphrase []byte, opts ...SealedOption) (*SealedStore, error) {
	if len(passphrase) == 0 {
		return nil, fmt.Errorf("sealed store requires a passphrase")
	}
	s := &SealedStore{
		inner:      inner,
		passphrase: append([]byte(nil), passphrase...),
		kdf:        DefaultKDFParams,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *SealedStore) Store(ctx context.Context, name string, data []byte) error {
	if err := validateName(name); err != nil {
		return err
	}

	salt := make([]byte, sealSaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}

	key, err := s.deriveArtifactKey(salt, name)
	if err != nil {
		return err
	}
	ciphertext, nonce, authTag, err := encryptAESGCM(data, key, []byte(name))
	wipe(key)
	if err != nil {
		return fmt.Errorf("failed to encrypt %s: %w", name, err)
	}

	buf := new(bytes.Buffer)
	buf.Grow(len(sealMagic) + len(salt) + len(nonce) + len(ciphertext) + len(authTag))
	buf.Write(sealMagic)
	buf.Write(salt)
	buf.Write(nonce)
	buf.Write(ciphertext)
	buf.Write(authTag)

	return s.inner.Store(ctx, name, buf.Bytes())
}

func (s *SealedStore) Load(ctx context.Context, name string) ([]byte, error) {
	blob, err := s.inner.Load(ctx, name)
	if err != nil {
		return nil, err
	}

	header := len(sealMagic) + sealSaltSize + sealNonceSize
	if len(blob) < header+sealTagSize || !bytes.Equal(blob[:len(sealMagic)], sealMagic) {
		return nil, fmt.Errorf("%w: %s is not a sealed artifact", ErrDecryptionFailed, name)
	}
	salt := blob[len(sealMagic) : len(sealMagic)+sealSaltSize]
	nonce := blob[len(sealMagic)+sealSaltSize : header]
	ciphertext := blob[header : len(blob)-sealTagSize]
	authTag := blob[len(blob)-sealTagSize:]

	key, err := s.deriveArtifactKey(salt, name)
	if err != nil {
		return nil, err
	}
	plaintext, err := decryptAESGCM(ciphertext, key, nonce, authTag, []byte(name))
	wipe(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecryptionFailed, name, err)
	}
	return plaintext, nil
}

func (s *SealedStore) Delete(ctx context.Context, name string) error {
	return s.inner.Delete(ctx, name)
}

func (s *SealedStore) List(ctx context.Context) ([]string, error) {
	return s.inner.List(ctx)
}

func (s *SealedStore) deriveArtifactKey(salt []byte, name string) ([]byte, error) {
	master := deriveEncryptionKey(s.passphrase, salt, s.kdf)
	defer wipe(master)
	return DeriveSubKey(master, salt, []byte("zksuit/artifact/"+name), 32)
}

func deriveEncryptionKey(password, salt []byte, p KDFParams) []byte {
	return argon2.IDKey(password, salt, p.Time, p.Memory, p.Threads, 32)
}

// DeriveSubKey derives a sub-key from a master key using HKDF-SHA256.
func DeriveSubKey(masterKey, salt, info []byte, length int) ([]byte, error) {
	r := hkdf.New(sha256.New, masterKey, salt, info)

	subKey := make([]byte, length)
	if _, err := io.ReadFull(r, subKey); err != nil {
		return nil, err
	}
	return subKey, nil
}

func encryptAESGCM(plaintext, key, aad []byte) (ciphertext, nonce, authTag []byte, err error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, nil, nil, err
	}

	nonce = make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, nil, nil, err
	}

	sealed := gcm.Seal(nil, nonce, plaintext, aad)
	ciphertext = sealed[:len(sealed)-sealTagSize]
	authTag = sealed[len(sealed)-sealTagSize:]
	return ciphertext, nonce, authTag, nil
}

func decryptAESGCM(ciphertext, key, nonce, authTag, aad []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	sealed := make([]byte, 0, len(ciphertext)+len(authTag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, authTag...)

	plaintext, err := gcm.Open(nil, nonce, sealed, aad)
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}
	return plaintext, nil
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

package application

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidPasswordHash         = errors.New("invalid password hash format")
	ErrIncompatiblePasswordVersion = errors.New("incompatible password hash version")
)

// HashAlgorithm names the scheme used for newly created hashes.
type HashAlgorithm string

const (
	HashArgon2id HashAlgorithm = "argon2id"
	HashBcrypt   HashAlgorithm = "bcrypt"
)

type Argon2idParams struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

var DefaultArgon2idParams = Argon2idParams{
	Memory:      64 * 1024,
	Iterations:  3,
	Parallelism: 2,
	SaltLength:  16,
	KeyLength:   32,
}

// PasswordHasher creates hashes with one algorithm and verifies both argon2id and bcrypt hashes.
type PasswordHasher struct {
	Algorithm  HashAlgorithm
	Argon2     Argon2idParams
	BcryptCost int
}

// NewPasswordHasher returns a hasher with default cost parameters.
func NewPasswordHasher(algorithm HashAlgorithm) (*PasswordHasher, error) {
	switch algorithm {
	case "", HashArgon2id:
		algorithm = HashArgon2id
	case HashBcrypt:
	default:
		return nil, fmt.Errorf("unsupported password hash algorithm %q", algorithm)
	}
	return &PasswordHasher{Algorithm: algorithm, Argon2: DefaultArgon2idParams, BcryptCost: bcrypt.DefaultCost}, nil
}

// Hash returns a salted one-way hash of password.
func (h *PasswordHasher) Hash(password string) (string, error) {
	if h != nil && h.Algorithm == HashBcrypt {
		cost := h.BcryptCost
		if cost == 0 {
			cost = bcrypt.DefaultCost
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
		if err != nil {
			return "", err
		}
		return string(hashed), nil
	}

	params := DefaultArgon2idParams
	if h != nil && h.Argon2.KeyLength > 0 {
		params = h.Argon2
	}
	return CreatePasswordHash(password, params)
}

// Verify returns nil when password matches hashedPassword and ErrInvalidCredentials otherwise.
func (h *PasswordHasher) Verify(hashedPassword, password string) error {
	if isBcryptHash(hashedPassword) {
		if err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)); err != nil {
			if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
				return ErrInvalidCredentials
			}
			return err
		}
		return nil
	}
	return VerifyPassword(hashedPassword, password)
}

// NeedsRehash reports whether hashedPassword was produced by a different algorithm than the configured one.
func (h *PasswordHasher) NeedsRehash(hashedPassword string) bool {
	algorithm := HashArgon2id
	if h != nil && h.Algorithm != "" {
		algorithm = h.Algorithm
	}
	if algorithm == HashBcrypt {
		return !isBcryptHash(hashedPassword)
	}
	return !strings.HasPrefix(hashedPassword, "$argon2id$")
}

func isBcryptHash(hash string) bool {
	return strings.HasPrefix(hash, "$2a$") || strings.HasPrefix(hash, "$2b$") || strings.HasPrefix(hash, "$2y$")
}

func CreatePasswordHash(password string, params Argon2idParams) (string, error) {
	salt := make([]byte, params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(password), salt, params.Iterations, params.Memory, params.Parallelism, params.KeyLength)

	b64Salt := base64.RawStdEncoding.EncodeToString(salt)
	b64Hash := base64.RawStdEncoding.EncodeToString(hash)

	// $argon2id$v=19$m=...,t=...,p=...$salt$hash
	format := "$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s"
	return fmt.Sprintf(format, argon2.Version, params.Memory, params.Iterations, params.Parallelism, b64Salt, b64Hash), nil
}

func VerifyPassword(hashedPassword, password string) error {
	parts := strings.Split(hashedPassword, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return ErrInvalidPasswordHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return ErrInvalidPasswordHash
	}
	if version != argon2.Version {
		return ErrIncompatiblePasswordVersion
	}

	var params Argon2idParams
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.Memory, &params.Iterations, &params.Parallelism); err != nil {
		return ErrInvalidPasswordHash
	}
	// argon2.IDKey panics on zero parallelism.
	if params.Parallelism == 0 || params.Iterations == 0 {
		return ErrInvalidPasswordHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return ErrInvalidPasswordHash
	}
	decodedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return ErrInvalidPasswordHash
	}
	// An empty key compares equal to any derived empty key.
	if len(salt) == 0 || len(decodedHash) == 0 {
		return ErrInvalidPasswordHash
	}

	comparisonHash := argon2.IDKey([]byte(password), salt, params.Iterations, params.Memory, params.Parallelism, uint32(len(decodedHash)))
	if subtle.ConstantTimeCompare(decodedHash, comparisonHash) == 1 {
		return nil
	}
	return ErrInvalidCredentials
}

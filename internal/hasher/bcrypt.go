// Package hasher provides salted, slow password hashing.
package hasher

import (
	"fmt"

	"github.com/samber/oops"
	"golang.org/x/crypto/bcrypt"

	"github.com/dtroode/reelscore-server/internal/model"
)

// DefaultCost is used when no cost is configured.
const DefaultCost = 10

// MaxPasswordBytes is the longest input bcrypt hashes without truncation.
const MaxPasswordBytes = 72

var _ model.PasswordHasher = (*Bcrypt)(nil)

// Bcrypt implements PasswordHasher. Hashes embed salt and cost, so nothing
// besides the hash string has to be stored.
type Bcrypt struct {
	cost int
}

// NewBcrypt creates a hasher with the given work factor. Zero selects
// DefaultCost; values outside bcrypt's range are clamped.
func NewBcrypt(cost int) *Bcrypt {
	switch {
	case cost == 0:
		cost = DefaultCost
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	return &Bcrypt{cost: cost}
}

// Cost returns the configured work factor.
func (b *Bcrypt) Cost() int {
	return b.cost
}

// Hash returns the bcrypt hash of plaintext. Input longer than
// MaxPasswordBytes fails with model.ErrPasswordTooLong.
func (b *Bcrypt) Hash(plaintext string) (string, error) {
	if len(plaintext) > MaxPasswordBytes {
		return "", fmt.Errorf("%w: %d bytes", model.ErrPasswordTooLong, len(plaintext))
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), b.cost)
	if err != nil {
		return "", oops.In("hasher").Code("HASH_FAILED").With("cost", b.cost).Wrap(err)
	}
	return string(hashed), nil
}

// Verify compares plaintext with hashed in constant time.
func (b *Bcrypt) Verify(plaintext, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext)) == nil
}

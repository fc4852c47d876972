package hash

import "golang.org/x/crypto/bcrypt"

// Hasher produces salted one-way digests for passwords and payment secrets.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Check(plaintext, digest string) bool
}

type Bcrypt struct {
	cost int
}

// New returns a bcrypt hasher. Costs outside bcrypt's range fall back to
// bcrypt.DefaultCost.
func New(cost int) *Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Bcrypt{cost: cost}
}

func (b *Bcrypt) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), b.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Check reports whether plaintext matches digest. A malformed digest is a
// mismatch.
func (b *Bcrypt) Check(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

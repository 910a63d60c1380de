package helpers

import "golang.org/x/crypto/bcrypt"

// DefaultBcryptCost is the work factor used for stored credentials.
const DefaultBcryptCost = 12

// Hasher hashes passwords with bcrypt at a fixed cost. bcrypt salts every hash.
type Hasher struct {
	Cost int
}

func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &Hasher{Cost: cost}
}

// Hash hashes the plain text password using bcrypt
func (h *Hasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Compare compares a bcrypt hash with a plain password
func (h *Hasher) Compare(hash, plain string) bool {
	return CompareHashAndPassword(hash, plain)
}

// HashPassword hashes with DefaultBcryptCost.
func HashPassword(plain string) (string, error) {
	return NewHasher(DefaultBcryptCost).Hash(plain)
}

// CompareHashAndPassword compares a bcrypt hash with a plain password
func CompareHashAndPassword(hash string, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

package auth

import "golang.org/x/crypto/bcrypt"

// PasswordVerifier checks a curator's plaintext password against the stored
// hash. A nil error means the password matches.
type PasswordVerifier interface {
	Compare(hashedPassword, password string) error
}

// BcryptVerifier verifies bcrypt hashes, the format the curator table stores.
type BcryptVerifier struct{}

func NewBcryptVerifier() *BcryptVerifier {
	return &BcryptVerifier{}
}

func (v *BcryptVerifier) Compare(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// HashPassword produces a hash suitable for curators.password_hash. A cost
// of zero uses bcrypt.DefaultCost.
func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

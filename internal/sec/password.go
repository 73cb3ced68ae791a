package sec

import "golang.org/x/crypto/bcrypt"

// hashCost is the bcrypt work factor. bcrypt's default of 10 keeps a single
// verification in the low tens of milliseconds on current hardware.
const hashCost = bcrypt.DefaultCost

// HashPassword generates the salted digest for a given password. It errors if
// the password is longer than 72 bytes.
func HashPassword[T ~string | ~[]byte](password T) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), hashCost)
}

// VerifyPassword reports whether the provided password resolves to the given
// digest. A wrong password is an ordinary false, never an error.
func VerifyPassword[T ~string | ~[]byte](password T, digest []byte) bool {
	return bcrypt.CompareHashAndPassword(digest, []byte(password)) == nil
}

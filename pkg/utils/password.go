package utils

import "golang.org/x/crypto/bcrypt"

// bcryptCost trades login latency for brute-force resistance. Dashboard and
// driver accounts log in rarely, so a cost above the library default is fine.
const bcryptCost = 12

// HashPassword hashes an account password for storage.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(bytes), err
}

// ComparePassword reports whether the plain password matches the stored hash.
func ComparePassword(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}

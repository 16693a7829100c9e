package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword hashes a password with bcrypt. A cost below bcrypt.MinCost
// uses bcrypt.DefaultCost; one above bcrypt.MaxCost is an error.
func HashPassword(password string, cost int) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(bytes), err
}

// CheckPasswordHash compares a plain password with its hashed version in
// constant time.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

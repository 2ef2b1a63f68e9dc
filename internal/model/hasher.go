package model

// PasswordHasher hashes and verifies passwords.
// Verify returns false for malformed hashes instead of failing.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hashed string) bool
}

package services

import "math/rand/v2"

const (
	resetTokenLength   = 6
	sessionTokenLength = 50
)

const (
	letters      = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	alphanumeric = letters + "0123456789"
)

func randomString(length int, charset string) string {
	result := make([]byte, length)
	for i := range result {
		result[i] = charset[rand.IntN(len(charset))]
	}
	return string(result)
}

// NewResetToken generates the short override token handed to a voter
// after a forced reset.
func NewResetToken() string {
	return randomString(resetTokenLength, letters)
}

// NewSessionToken generates an admin session token.
func NewSessionToken() string {
	return randomString(sessionTokenLength, alphanumeric)
}

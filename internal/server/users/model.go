package users

// User is an account record. PasswordHash is a bcrypt hash and never leaves
// the server.
type User struct {
	ID           string
	Username     string
	PasswordHash []byte
}

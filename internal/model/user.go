package model

// User is an account record. The waitlist routes never touch it; it is kept
// in the store for the account features planned after launch.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}

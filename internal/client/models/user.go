// Package models defines the client-side data types: the user profile
// snapshot and chat transcript messages.
package models

// User is the profile snapshot held alongside the auth token. It is written
// on login/registration and replaced wholesale on profile updates.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

package models

// Credentials represents the email/password pair submitted for login.
type Credentials struct {
	Email    string `json:"email" validate:"required,min=2,email"`
	Password string `json:"password" validate:"required,min=4"`
}

// LoginResponse is the payload returned by the authentication endpoint on success.
type LoginResponse struct {
	Token string `json:"token"`
}

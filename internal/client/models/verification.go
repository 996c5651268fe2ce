package models

// CodeRequest is the body of POST /auth/request-code.
type CodeRequest struct {
	Email string `json:"email"`
}

// CodeSent is the success body of POST /auth/request-code.
type CodeSent struct {
	Message          string `json:"message"`
	ExpiresInMinutes int    `json:"expires_in_minutes,omitempty"`
}

// VerifyRequest is the body of POST /auth/verify-code.
type VerifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// IssuedKey is the success body of POST /auth/verify-code.
type IssuedKey struct {
	APIKey  string `json:"api_key"`
	Message string `json:"message"`
}

// File: internal/domain/identity.go
package domain

// Identity is what the identity provider vouches for after a successful
// sign-in: who the user is and the bearer token for the session.
type Identity struct {
	UserID string
	Email  string
	Token  string
}

// SignUpResult reports either an immediate identity or that the account
// must be confirmed through email before it can sign in.
type SignUpResult struct {
	Identity          *Identity
	NeedsVerification bool
}

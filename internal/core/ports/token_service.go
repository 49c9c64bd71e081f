package ports

// TokenService issues and verifies signed, time-bounded session tokens.
// Signing is stateless: there is no server-side session table and no
// revocation before expiry.
type TokenService interface {
	// Issue produces a signed token carrying the subject user id and an
	// expiration instant.
	Issue(userID, email string) (string, error)
	// Verify checks signature integrity and expiry and returns the subject
	// user id. Every failure mode collapses to domain.ErrUnauthorized.
	Verify(token string) (string, error)
}

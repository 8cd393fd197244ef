package tokenstore

// Record is a persisted refresh-token row. Records are identified by the
// SHA-256 digest of the opaque token; the raw token string never reaches
// Redis.
//
// Each record has at most one successor. All records minted from one login
// share a FamilyID, so cascade revocation is a single family-set sweep
// instead of a replaced-by chain walk.
//
// Records are mutated only to set Revoked and ReplacedBy; they are never
// deleted on revocation. Redis TTL purges them after expiry plus the
// configured retention grace.
type Record struct {
	// Digest is the base64url SHA-256 of the token string.
	Digest    string
	SubjectID string
	Role      string
	FamilyID  string
	IssuedAt  int64
	ExpiresAt int64
	Revoked   bool
	// ReplacedBy is the successor's digest, empty while the record is the
	// live head of its family branch.
	ReplacedBy string
}

// Rotation is the successful outcome of [Store.Rotate]: the identity carried
// over from the presented record onto its successor.
type Rotation struct {
	SubjectID string
	Role      string
	FamilyID  string
}

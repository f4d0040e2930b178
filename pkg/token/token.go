package token

import (
	"crypto/sha1"
	"encoding/hex"
	"regexp"

	uuid "github.com/satori/go.uuid"
)

var shapeRE = regexp.MustCompile(`^[a-f0-9]{40}$`)

// New derives a 40-character lowercase hex key from a short random salt and
// the subscriber's email. Collisions are not handled; by construction they
// are astronomically unlikely.
func New(email string) string {
	seed := sha1.Sum([]byte(uuid.NewV4().String()))
	salt := hex.EncodeToString(seed[:])[:5]

	sum := sha1.Sum([]byte(salt + email))
	return hex.EncodeToString(sum[:])
}

// Valid reports whether key has the shape of a generated key. The
// consumed-key sentinel never passes this check.
func Valid(key string) bool {
	return shapeRE.MatchString(key)
}

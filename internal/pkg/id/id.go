package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New returns a new lexicographically sortable unique ID.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}

package helpers

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"regexp"
	"time"
)

// Document ids are 24-character hex strings: a 4-byte unix timestamp followed
// by 8 random bytes. The format matches the store's object identifiers, so ids
// issued here and ids arriving from clients validate the same way.

var objectIDPattern = regexp.MustCompile(`^[a-fA-F0-9]{24}$`)

// NewObjectID generates a new 24-character hex document id.
func NewObjectID() string {
	var b [12]byte
	binary.BigEndian.PutUint32(b[:4], uint32(time.Now().Unix()))
	if _, err := rand.Read(b[4:]); err != nil {
		// crypto/rand only fails when the OS entropy source is broken
		panic(err)
	}
	return hex.EncodeToString(b[:])
}

// IsObjectID reports whether id is a well-formed 24-character hex identifier.
func IsObjectID(id string) bool {
	return objectIDPattern.MatchString(id)
}

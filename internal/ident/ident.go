// Package ident mints the opaque identifiers the server hands out. A user ID
// is a UUIDv7 rendered as 26 characters of Crockford base32: time-ordered so
// logs sort naturally, unguessable past the timestamp, and safe to embed in
// JSON without escaping.
package ident

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"
)

const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// UserIDLen is the length of an encoded user ID.
const UserIDLen = 26

// NewUserID returns a fresh session-scoped user identifier.
func NewUserID() string {
	return encode(newUUIDv7())
}

// newUUIDv7 builds a 128-bit UUIDv7: 48-bit unix-millisecond timestamp,
// version and variant bits, the rest random.
func newUUIDv7() [16]byte {
	var u [16]byte

	now := time.Now().UnixMilli()
	u[0] = byte(now >> 40)
	u[1] = byte(now >> 32)
	u[2] = byte(now >> 24)
	u[3] = byte(now >> 16)
	u[4] = byte(now >> 8)
	u[5] = byte(now)

	if _, err := rand.Read(u[6:]); err != nil {
		panic("ident: reading random bytes: " + err.Error())
	}

	u[6] = (u[6] & 0x0f) | 0x70 // version 7
	u[8] = (u[8] & 0x3f) | 0x80 // variant 10

	return u
}

// encode renders 128 bits as 26 base32 characters, most significant bits
// first. 128 = 25*5 + 3, so the final character carries three bits padded
// with zeros.
func encode(u [16]byte) string {
	var b strings.Builder
	b.Grow(UserIDLen)

	var acc uint
	bits := 0
	for _, octet := range u {
		acc = acc<<8 | uint(octet)
		bits += 8
		for bits >= 5 {
			bits -= 5
			b.WriteByte(alphabet[(acc>>bits)&0x1f])
		}
	}
	b.WriteByte(alphabet[(acc<<(5-bits))&0x1f])

	return b.String()
}

// Validate reports whether id has the shape NewUserID produces.
func Validate(id string) error {
	if len(id) != UserIDLen {
		return fmt.Errorf("user ID must be %d characters, got %d", UserIDLen, len(id))
	}
	// The leading character encodes the top 5 bits of a 48-bit millisecond
	// timestamp, so it can never exceed '7'.
	if id[0] > '7' {
		return fmt.Errorf("user ID first character out of range: %c", id[0])
	}
	for i := 0; i < len(id); i++ {
		if strings.IndexByte(alphabet, id[i]) < 0 {
			return fmt.Errorf("invalid character %c at position %d", id[i], i)
		}
	}
	return nil
}

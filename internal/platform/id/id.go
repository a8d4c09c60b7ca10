// Package id generates compact identifiers for rooms, events and submissions.
package id

import (
	"encoding/base32"
	"strings"

	"github.com/google/uuid"
)

var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// NewID returns a 26-character lowercase base32 encoding of a random UUID.
//
// The alphabet (a-z, 2-7) keeps ids URL- and filename-safe without
// case-sensitivity pitfalls.
func NewID() (string, error) {
	value, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return strings.ToLower(encoding.EncodeToString(value[:])), nil
}

// Suffix returns a short random suffix used to disambiguate slugs.
func Suffix(length int) (string, error) {
	if length <= 0 {
		length = 4
	}
	full, err := NewID()
	if err != nil {
		return "", err
	}
	if length > len(full) {
		length = len(full)
	}
	return full[:length], nil
}

// Package qrpayload encodes identity credentials as QR text.
package qrpayload

import (
	"errors"
	"strings"
)

// ErrMalformedPayload is returned for any input other than UID:<uid>|SEED:<seed>.
var ErrMalformedPayload = errors.New("invalid QR code format, expected UID:xxx|SEED:yyy")

// Credentials is the content of a payload.
type Credentials struct {
	UID        string `json:"uid"`
	SeedPhrase string `json:"seedPhrase"`
}

// Format renders the payload text.
func Format(uid, seedPhrase string) string {
	return "UID:" + uid + "|SEED:" + seedPhrase
}

// Parse decodes payload text. It accepts exactly two segments, UID first,
// each holding one key and one value.
func Parse(payload string) (Credentials, error) {
	segments := strings.Split(payload, "|")
	if len(segments) != 2 {
		return Credentials{}, ErrMalformedPayload
	}
	uidParts := strings.Split(segments[0], ":")
	seedParts := strings.Split(segments[1], ":")
	if len(uidParts) != 2 || len(seedParts) != 2 || uidParts[0] != "UID" || seedParts[0] != "SEED" {
		return Credentials{}, ErrMalformedPayload
	}
	return Credentials{UID: uidParts[1], SeedPhrase: seedParts[1]}, nil
}

// Package signature calculates RFC 2104 HMAC-SHA1 signatures encoded as
// Base64, the primitive behind the x-sakai-token trust protocol.
package signature

import (
	"crypto/hmac"
	"crypto/sha1" //nolint:gosec
	"crypto/subtle"
	"encoding/base64"

	"github.com/pkg/errors"
)

var (
	ErrInvalidArgument = errors.New("signature: invalid argument")
	ErrSigningFailure  = errors.New("signature: failed to generate HMAC")
)

// Calculate signs data with key and encodes the digest with the standard
// Base64 alphabet, padding included.
func Calculate(data, key string) (string, error) {
	return Sign(data, key, false)
}

// Sign computes HMAC-SHA1 over the UTF-8 bytes of data keyed with key. When
// urlSafe is set the digest uses the URL alphabet without padding.
func Sign(data, key string, urlSafe bool) (string, error) {
	if data == "" {
		return "", errors.Wrap(ErrInvalidArgument, "data is empty")
	}
	if key == "" {
		return "", errors.Wrap(ErrInvalidArgument, "key is empty")
	}

	mac := hmac.New(sha1.New, []byte(key))
	if _, err := mac.Write([]byte(data)); err != nil {
		return "", errors.Wrap(ErrSigningFailure, err.Error())
	}
	raw := mac.Sum(nil)

	if urlSafe {
		return base64.RawURLEncoding.EncodeToString(raw), nil
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// Equal compares two encoded signatures in constant time.
func Equal(expected, actual string) bool {
	return subtle.ConstantTimeCompare([]byte(expected), []byte(actual)) == 1
}

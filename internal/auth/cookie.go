package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/url"
	"strings"
)

const (
	// CookieName carries the session token, signed or plain.
	CookieName   = "jwt"
	signedPrefix = "s:"
)

// SignCookie produces the "s:<value>.<signature>" form used for signed cookies. The
// signature is HMAC-SHA256 in standard base64 with the padding stripped.
func SignCookie(value, secret string) string {
	return signedPrefix + value + "." + cookieSignature(value, secret)
}

// UnsignCookie returns the original value of a signed cookie. ok is false when raw is not
// in signed form or the signature does not match.
func UnsignCookie(raw, secret string) (string, bool) {
	if !strings.HasPrefix(raw, signedPrefix) {
		return "", false
	}
	body := strings.TrimPrefix(raw, signedPrefix)
	dot := strings.LastIndexByte(body, '.')
	if dot < 0 {
		return "", false
	}
	value, sig := body[:dot], body[dot+1:]
	expected := cookieSignature(value, secret)
	if !hmac.Equal([]byte(sig), []byte(expected)) {
		return "", false
	}
	return value, true
}

// UnescapeCookie undoes the percent-encoding applied by gin and browsers ("s%3A...").
// A literal '+' is kept, since it is a valid base64 character.
func UnescapeCookie(raw string) string {
	if value, err := url.PathUnescape(raw); err == nil {
		return value
	}
	return raw
}

func IsSignedCookie(raw string) bool {
	return strings.HasPrefix(raw, signedPrefix)
}

func cookieSignature(value, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(value))
	return base64.RawStdEncoding.EncodeToString(mac.Sum(nil))
}

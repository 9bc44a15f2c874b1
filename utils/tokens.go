package utils

import "crypto/rand"

// GenerateShortToken returns a URL-safe random string of the given length (bytes*2 hex).
func GenerateShortToken(n int) string {
	b := make([]byte, n)
	_, err := rand.Read(b)
	if err != nil {
		return ""
	}
	const hex = "0123456789abcdef"
	out := make([]byte, n*2)
	for i, v := range b {
		out[i*2] = hex[v>>4]
		out[i*2+1] = hex[v&0x0f]
	}
	return string(out)
}

// AccessToken is the claims payload the identity gateway signs into every
// access token. The websocket handshake and the HTTP verifier both decode into
// this shape.
type AccessToken struct {
	ID   uint   `json:"ID"`
	Role string `json:"role"`
}

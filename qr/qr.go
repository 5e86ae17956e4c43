// Package qr encodes and decodes the payload carried inside a scanned
// attendance QR code. The payload is plain JSON with no signature; its
// trust boundary is the authenticated scanning session, not the token
// itself.
package qr

import (
	"encoding/json"
	"errors"
	"time"
)

// MaxAgeHours is the validity window for a scanned token.
const MaxAgeHours = 24

// ErrInvalidToken signals a payload that is not a well-formed token.
// It is the only decode failure mode; callers treat it as a single
// "invalid" outcome rather than inspecting it further.
var ErrInvalidToken = errors.New("invalid qr token")

// Token is the payload carried inside a QR code. Timestamp is the
// issue time in epoch milliseconds; the wire field name is
// "timestamp" for compatibility with the attendee app.
type Token struct {
	UserID    string `json:"userId"`
	EventID   string `json:"eventId"`
	Timestamp int64  `json:"timestamp"`
}

// Encode produces the JSON payload for a fresh token issued now
func Encode(userID, eventID string) (string, error) {
	b, err := json.Marshal(Token{
		UserID:    userID,
		EventID:   eventID,
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Decode parses raw into a Token. All three fields must be present
// with the correct JSON types (userId: string, eventId: string,
// timestamp: number); anything else returns ErrInvalidToken.
func Decode(raw string) (*Token, error) {
	var payload struct {
		UserID    *string  `json:"userId"`
		EventID   *string  `json:"eventId"`
		Timestamp *float64 `json:"timestamp"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, ErrInvalidToken
	}
	if payload.UserID == nil || payload.EventID == nil || payload.Timestamp == nil {
		return nil, ErrInvalidToken
	}
	return &Token{
		UserID:    *payload.UserID,
		EventID:   *payload.EventID,
		Timestamp: int64(*payload.Timestamp),
	}, nil
}

// IsExpired reports whether the token is older than maxAgeHours. A
// token aged exactly maxAgeHours is still accepted.
func IsExpired(t *Token, maxAgeHours int) bool {
	if t == nil {
		return true
	}
	age := time.Now().UnixMilli() - t.Timestamp
	return age > int64(maxAgeHours)*3600*1000
}

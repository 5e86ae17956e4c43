package qr_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/campusconnect/campus-events-api/qr"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	before := time.Now().UnixMilli()
	raw, err := qr.Encode("5fc51f58c72ff10004dca382", "61c74b7b88e1abdac307bb39")
	if err != nil {
		t.Fatal(err)
	}
	after := time.Now().UnixMilli()

	token, err := qr.Decode(raw)
	assert.NoError(t, err)
	assert.Equal(t, "5fc51f58c72ff10004dca382", token.UserID)
	assert.Equal(t, "61c74b7b88e1abdac307bb39", token.EventID)
	assert.GreaterOrEqual(t, token.Timestamp, before)
	assert.LessOrEqual(t, token.Timestamp, after)
	assert.False(t, qr.IsExpired(token, qr.MaxAgeHours))
}

func TestDecodeRejectsMalformedPayloads(t *testing.T) {
	cases := map[string]string{
		"not json":          "not-a-token",
		"empty object":      "{}",
		"missing timestamp": `{"userId":"u1","eventId":"e1"}`,
		"missing userId":    `{"eventId":"e1","timestamp":123}`,
		"missing eventId":   `{"userId":"u1","timestamp":123}`,
		"userId not string": `{"userId":42,"eventId":"e1","timestamp":123}`,
		"timestamp string":  `{"userId":"u1","eventId":"e1","timestamp":"123"}`,
		"userId bool":       `{"userId":true,"eventId":"e1","timestamp":123}`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			token, err := qr.Decode(raw)
			assert.Nil(t, token)
			assert.ErrorIs(t, err, qr.ErrInvalidToken)
		})
	}
}

func TestDecodeIgnoresExtraFields(t *testing.T) {
	token, err := qr.Decode(`{"userId":"u1","eventId":"e1","timestamp":1700000000000,"extra":"x"}`)
	assert.NoError(t, err)
	assert.Equal(t, int64(1700000000000), token.Timestamp)
}

func TestIsExpiredBoundary(t *testing.T) {
	dayMillis := int64(24 * 3600 * 1000)

	// 1ms past the window is rejected
	expired := &qr.Token{UserID: "u1", EventID: "e1", Timestamp: time.Now().UnixMilli() - dayMillis - 1}
	assert.True(t, qr.IsExpired(expired, qr.MaxAgeHours))

	// 1ms inside the window is accepted
	fresh := &qr.Token{UserID: "u1", EventID: "e1", Timestamp: time.Now().UnixMilli() - dayMillis + 1}
	assert.False(t, qr.IsExpired(fresh, qr.MaxAgeHours))

	assert.True(t, qr.IsExpired(nil, qr.MaxAgeHours))
}

func TestEncodeWireFormat(t *testing.T) {
	raw, err := qr.Encode("u1", "e1")
	if err != nil {
		t.Fatal(err)
	}

	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		t.Fatalf("encoded token is not valid JSON: %v", err)
	}

	assert.Equal(t, "u1", payload["userId"])
	assert.Equal(t, "e1", payload["eventId"])
	// field name on the wire is "timestamp", not "issuedAt"
	_, ok := payload["timestamp"]
	assert.True(t, ok)
}

package models

import (
	"encoding/json"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Timestamp is a mongo DateTime that travels as epoch milliseconds in
// JSON, the same clock format the QR payload carries. The driver's own
// DateTime marshals to RFC3339, which scanner clients do not parse.
type Timestamp primitive.DateTime

// MarshalJSON renders the timestamp as epoch milliseconds
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(int64(t))
}

// UnmarshalJSON parses epoch milliseconds
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var ms int64
	if err := json.Unmarshal(b, &ms); err != nil {
		return err
	}
	*t = Timestamp(ms)
	return nil
}

// VerifyCheckInRequest is the body for POST /attendance/verify. At
// least one path to resolve both a user id and an event id must be
// present: either a scanned qrToken, or the explicit fields.
type VerifyCheckInRequest struct {
	QRToken string `json:"qrToken,omitempty"`
	EventID string `json:"eventId,omitempty"`
	UserID  string `json:"userId,omitempty"`
}

// AttendanceMessage is the plain {"msg": ...} body used by the
// attendance endpoints for every terminal outcome without a record
type AttendanceMessage struct {
	Msg string `json:"msg"`
}

// AlreadyCheckedInResponse reports the idempotent duplicate outcome,
// carrying the original check-in time so scanners can render a
// friendly "already checked in" banner
type AlreadyCheckedInResponse struct {
	Msg         string    `json:"msg"`
	CheckInTime Timestamp `json:"checkInTime"`
}

// CheckInSummary is the flattened check-in record returned by verify
type CheckInSummary struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	EventID     string    `json:"eventId"`
	CheckInTime Timestamp `json:"checkInTime"`
}

// RSVPSummary is the flattened rsvp record returned by verify
type RSVPSummary struct {
	ID       string `json:"id"`
	UserID   string `json:"userId"`
	EventID  string `json:"eventId"`
	Attended bool   `json:"attended"`
}

// VerifyCheckInResponse is the success body for POST /attendance/verify
type VerifyCheckInResponse struct {
	Msg     string         `json:"msg"`
	CheckIn CheckInSummary `json:"checkIn"`
	RSVP    RSVPSummary    `json:"rsvp"`
}

// AttendanceStatusResponse is returned by GET /attendance/status/:eventId/:userId
type AttendanceStatusResponse struct {
	Attended    bool       `json:"attended"`
	CheckInTime *Timestamp `json:"checkInTime"`
	RSVPd       bool       `json:"rsvpd"`
}

// AttendanceStatsResponse is returned by GET /attendance/stats/:eventId
type AttendanceStatsResponse struct {
	TotalRSVPs     int64 `json:"totalRSVPs"`
	CheckedIn      int64 `json:"checkedIn"`
	AttendanceRate int   `json:"attendanceRate"`
}

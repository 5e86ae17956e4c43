// Package docs CampusConnect Events API.
//
// Documentation of the CampusConnect events and attendance API.
//
//     Schemes: https
//     BasePath: /
//     Version: 1.0.0
//     Host: https://api.campusconnect.events
//
//     Consumes:
//     - application/json
//
//     Produces:
//     - application/json
//
//     Security:
//     - basic
//
//    SecurityDefinitions:
//    basic:
//      type: basic
//
// swagger:meta
package docs

import (
	"github.com/campusconnect/campus-events-api/models"
)

// swagger:route GET /health health healthEndpointID
// Lists the healthchex of the web service api.
// responses:
//   200: healthResponse

// Shows the current health of the api. true means it is alive, false means it is not.
// swagger:response healthResponse
type healthResponseWrapper struct {
	// in:body
	Body models.HealthCheckResponse
}

// swagger:route GET /api/v1/event/{event_id} events eventByID
// Gets a single event by ID.
// responses:
//   200: eventByIDResponse

// Shows a single event by the given {event_id}
// swagger:response eventByIDResponse
type eventByIDResponseWrapper struct {
	// in:body
	Body models.Event
}

// swagger:route GET /api/v1/events events eventsList
// Lists events, paginated with ?limit= and ?page=.
// responses:
//   200: eventsListResponse

// Shows all events sorted by start time
// swagger:response eventsListResponse
type eventsListResponseWrapper struct {
	// in:body
	Body []models.Event
}

// swagger:route POST /api/v1/rsvp rsvps rsvpCreate
// Records or updates an attendee's rsvp for an event.
// responses:
//   201: rsvpResponse

// Shows the stored rsvp
// swagger:response rsvpResponse
type rsvpResponseWrapper struct {
	// in:body
	Body models.RSVP
}

// swagger:route POST /api/v1/attendance/verify attendance attendanceVerify
// Verifies a scanned QR token (or manual user/event pair) and records the check-in exactly once.
// responses:
//   200: verifyCheckInResponse

// Shows the recorded check-in and the synchronized rsvp
// swagger:response verifyCheckInResponse
type verifyCheckInResponseWrapper struct {
	// in:body
	Body models.VerifyCheckInResponse
}

// swagger:route GET /api/v1/attendance/status/{eventId}/{userId} attendance attendanceStatus
// Reports whether an attendee has checked in and whether they hold an rsvp.
// responses:
//   200: attendanceStatusResponse

// Shows the attendee's attendance status for the event
// swagger:response attendanceStatusResponse
type attendanceStatusResponseWrapper struct {
	// in:body
	Body models.AttendanceStatusResponse
}

// swagger:route GET /api/v1/attendance/stats/{eventId} attendance attendanceStats
// Aggregates rsvp and check-in totals for an event. Organizer token required.
// responses:
//   200: attendanceStatsResponse

// Shows the event's turnout totals and attendance rate
// swagger:response attendanceStatsResponse
type attendanceStatsResponseWrapper struct {
	// in:body
	Body models.AttendanceStatsResponse
}

// swagger:route GET /api/v1/user/{user_id} users userByID
// Gets a single user by ID.
// responses:
//   200: userByIDResponse

// Shows a single user by the given {user_id}
// swagger:response userByIDResponse
type userByIDResponseWrapper struct {
	// in:body
	Body models.User
}

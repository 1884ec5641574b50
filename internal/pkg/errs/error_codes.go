/*
Package errs provides custom error types and application-level error code constants.

These error codes identify specific connection, channel, and protocol failures
both internally within the notifier and in communication with hub clients.
*/
package errs

// 1xxx: Authentication Errors
const (
	// ErrAuthTokenMissing indicates a connect attempt without a bearer token.
	// Fatal for that attempt; never retried automatically.
	ErrAuthTokenMissing = 1001

	// ErrAuthTokenInvalid indicates the presented token failed validation or expired.
	ErrAuthTokenInvalid = 1002

	// ErrInvalidIdentity indicates an identity with an unrecognized role or a
	// missing required id, for which no channel can be derived.
	ErrInvalidIdentity = 1003
)

// 2xxx: Transport Errors
const (
	// ErrTransportDial indicates a failed WebSocket handshake with the event stream.
	ErrTransportDial = 2001

	// ErrTransportClosed indicates the connection dropped after it was established.
	ErrTransportClosed = 2002

	// ErrRetriesExhausted indicates the bounded reconnection budget was spent
	// without re-establishing the connection.
	ErrRetriesExhausted = 2003
)

// 3xxx: Protocol Errors
const (
	// ErrUnknownEventType indicates an inbound envelope of a type outside the
	// recognized set. Dropped from the notification path, never surfaced.
	ErrUnknownEventType = 3001

	// ErrMalformedPayload indicates an envelope whose payload did not decode
	// into the shape its type requires.
	ErrMalformedPayload = 3002
)

// 4xxx: Channel and Hub Request Errors
const (
	// ErrChannelJoinFailed indicates a join-room frame could not be delivered.
	ErrChannelJoinFailed = 4001

	// ErrInvalidParams indicates that hub request parameter validation failed.
	ErrInvalidParams = 4101

	// ErrUnsupportedMediaType indicates that the request Content-Type is not supported.
	ErrUnsupportedMediaType = 4102

	// ErrInvalidJSONFormat indicates that the request body JSON is malformed.
	ErrInvalidJSONFormat = 4103

	// ErrExtraContentInBody indicates trailing content after valid JSON data.
	ErrExtraContentInBody = 4104

	// ErrChannelNotFound indicates a broadcast was requested for a channel with no members.
	ErrChannelNotFound = 4105

	// ErrRateLimitExceeded indicates the connection rate for a client IP exceeded the limit.
	ErrRateLimitExceeded = 4106

	// ErrUnauthorized indicates a hub request without a valid identity token.
	ErrUnauthorized = 4107
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified internal error.
	ErrUnknown = 5000
)

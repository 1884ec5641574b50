/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to standardize
hub HTTP responses and internal error handling in the notification client.
*/
package errs

import "net/http"

// errorMap stores the detailed CustomError struct corresponding to every application error code.
// The key is the error code (int), and the value contains the user message and HTTP status code.
var errorMap = map[int]CustomError{
	// 1xxx: Authentication Errors
	ErrAuthTokenMissing: {Code: ErrAuthTokenMissing, Message: "Sign-in required before connecting to notifications.", Status: http.StatusUnauthorized},
	ErrAuthTokenInvalid: {Code: ErrAuthTokenInvalid, Message: "Your session is no longer valid. Please sign in again.", Status: http.StatusUnauthorized},
	ErrInvalidIdentity:  {Code: ErrInvalidIdentity, Message: "Account is missing the details needed for notifications."},

	// 2xxx: Transport Errors
	ErrTransportDial:    {Code: ErrTransportDial, Message: "Could not reach the notification service."},
	ErrTransportClosed:  {Code: ErrTransportClosed, Message: "Connection lost, attempting to reconnect."},
	ErrRetriesExhausted: {Code: ErrRetriesExhausted, Message: "Notifications are unavailable. Reconnect by signing in again."},

	// 3xxx: Protocol Errors
	ErrUnknownEventType: {Code: ErrUnknownEventType, Message: "Received an unrecognized event."},
	ErrMalformedPayload: {Code: ErrMalformedPayload, Message: "Received a malformed event."},

	// 4xxx: Channel and Hub Request Errors
	ErrChannelJoinFailed:    {Code: ErrChannelJoinFailed, Message: "Could not subscribe to your notification channel."},
	ErrInvalidParams:        {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType: {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:    {Code: ErrInvalidJSONFormat, Message: "Unsupported request format.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:   {Code: ErrExtraContentInBody, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},
	ErrChannelNotFound:      {Code: ErrChannelNotFound, Message: "No subscribers on that channel.", Status: http.StatusNotFound},
	ErrRateLimitExceeded:    {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},
	ErrUnauthorized:         {Code: ErrUnauthorized, Message: "Please sign in to continue.", Status: http.StatusUnauthorized},

	// 5xxx: Internal System Errors
	ErrUnknown: {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
}

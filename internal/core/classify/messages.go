package classify

import "github.com/vietddude/authkit/internal/core/apperr"

// MessageInvalidData is the message of validation errors built from undecodable payloads.
const MessageInvalidData = "Invalid data format"

var defaultMessages = map[apperr.Kind]string{
	apperr.KindNetwork:        "A network error occurred",
	apperr.KindAuthentication: "Your session has expired. Please sign in again",
	apperr.KindAuthorization:  "You do not have permission to perform this action",
	apperr.KindValidation:     MessageInvalidData,
	apperr.KindNotFound:       "The requested resource was not found",
	apperr.KindServer:         "The server encountered an error. Please try again later",
	apperr.KindTimeout:        "The request timed out",
	apperr.KindConnectivity:   "Unable to reach the server. Check your connection",
	apperr.KindStorage:        "Local storage is unavailable",
	apperr.KindPermission:     "Permission denied",
	apperr.KindRateLimited:    "Too many requests. Please wait and try again",
	apperr.KindBusiness:       "The request could not be completed",
	apperr.KindUnknown:        "An unexpected error occurred",
}

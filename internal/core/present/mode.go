// Package present maps classified errors to the single way they are shown to
// the user: a transient notice, a blocking dialog or inline field errors.
package present

import (
	"time"

	"github.com/vietddude/authkit/internal/core/apperr"
)

// Mode is how a failure is surfaced.
type Mode int

const (
	ModeNotice Mode = iota
	ModeDialog
	ModeInlineFields
)

// DefaultNoticeTTL is how long a notice stays visible before auto-dismissing.
const DefaultNoticeTTL = 5 * time.Second

func (m Mode) String() string {
	switch m {
	case ModeNotice:
		return "notice"
	case ModeDialog:
		return "dialog"
	case ModeInlineFields:
		return "inlineFields"
	default:
		return "unknown"
	}
}

// ModeFor selects the presentation mode for ce. Every variant, and nil, maps
// to exactly one mode.
func ModeFor(ce apperr.ClassifiedError) Mode {
	switch e := ce.(type) {
	case apperr.ValidationError:
		if e.HasFieldErrors() {
			return ModeInlineFields
		}
		return ModeNotice
	case apperr.AuthenticationError, apperr.AuthorizationError, apperr.PermissionError, apperr.BusinessError:
		return ModeDialog
	default:
		return ModeNotice
	}
}

// View is the rendering-neutral content for one presentation.
type View struct {
	Mode        Mode
	Title       string
	Message     string
	FieldErrors map[string][]string

	// TTL is set for notices only.
	TTL time.Duration
}

var dialogTitles = map[apperr.Kind]string{
	apperr.KindAuthentication: "Sign-in required",
	apperr.KindAuthorization:  "Access denied",
	apperr.KindPermission:     "Permission required",
	apperr.KindBusiness:       "Request not completed",
}

// Describe builds the View for ce.
func Describe(ce apperr.ClassifiedError) View {
	v := View{Mode: ModeFor(ce)}
	if ce == nil {
		v.TTL = DefaultNoticeTTL
		return v
	}
	v.Message = ce.Message()

	switch v.Mode {
	case ModeInlineFields:
		v.FieldErrors = ce.(apperr.ValidationError).FieldErrors
	case ModeDialog:
		v.Title = dialogTitles[ce.Kind()]
	case ModeNotice:
		v.TTL = DefaultNoticeTTL
	}
	return v
}

// Package apperr defines the closed error taxonomy shared by every client component.
//
// A ClassifiedError is a sealed sum type: exactly one concrete variant exists per Kind
// and only this package can add variants. Consumers dispatch with a type switch:
//
//	switch e := ce.(type) {
//	case apperr.ValidationError:
//		showFields(e.FieldErrors)
//	case apperr.RateLimitedError:
//		wait(e.RetryAfter)
//	}
package apperr

// Kind tags the active variant of a ClassifiedError.
type Kind int

const (
	KindNetwork Kind = iota
	KindAuthentication
	KindAuthorization
	KindValidation
	KindNotFound
	KindServer
	KindTimeout
	KindConnectivity
	KindStorage
	KindPermission
	KindRateLimited
	KindBusiness
	KindUnknown
)

var kindNames = [...]string{
	KindNetwork:        "network",
	KindAuthentication: "authentication",
	KindAuthorization:  "authorization",
	KindValidation:     "validation",
	KindNotFound:       "notFound",
	KindServer:         "server",
	KindTimeout:        "timeout",
	KindConnectivity:   "connectivity",
	KindStorage:        "storage",
	KindPermission:     "permission",
	KindRateLimited:    "rateLimited",
	KindBusiness:       "business",
	KindUnknown:        "unknown",
}

// String returns the camelCase tag of the kind.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Kinds returns every kind in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, len(kindNames))
	for i := range kindNames {
		kinds[i] = Kind(i)
	}
	return kinds
}

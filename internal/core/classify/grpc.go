package classify

import (
	"time"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/vietddude/authkit/internal/core/apperr"
)

// grpcDetails is the typed view of the standard error details a status may carry.
type grpcDetails struct {
	retryAfter  *time.Duration
	fieldErrors map[string][]string
	reason      string
	domain      string
	metadata    map[string]string
	resource    string
	quota       string
}

func parseGRPCDetails(st *status.Status) grpcDetails {
	var d grpcDetails
	for _, detail := range st.Details() {
		switch v := detail.(type) {
		case *errdetails.RetryInfo:
			if v.GetRetryDelay() != nil {
				d.retryAfter = apperr.Ptr(v.GetRetryDelay().AsDuration())
			}
		case *errdetails.BadRequest:
			for _, fv := range v.GetFieldViolations() {
				if d.fieldErrors == nil {
					d.fieldErrors = make(map[string][]string)
				}
				d.fieldErrors[fv.GetField()] = append(d.fieldErrors[fv.GetField()], fv.GetDescription())
			}
		case *errdetails.ErrorInfo:
			d.reason = v.GetReason()
			d.domain = v.GetDomain()
			d.metadata = v.GetMetadata()
		case *errdetails.ResourceInfo:
			d.resource = v.GetResourceType()
			if v.GetResourceName() != "" {
				d.resource += "/" + v.GetResourceName()
			}
		case *errdetails.QuotaFailure:
			if vs := v.GetViolations(); len(vs) > 0 {
				d.quota = vs[0].GetSubject()
			}
		}
	}
	return d
}

func (c *Classifier) fromGRPC(err error) (apperr.ClassifiedError, bool) {
	st, ok := status.FromError(err)
	if !ok || st == nil || st.Code() == codes.OK {
		return nil, false
	}
	d := parseGRPCDetails(st)

	details := map[string]any{"grpcCode": st.Code().String()}
	if d.reason != "" {
		details["reason"] = d.reason
	}
	if d.domain != "" {
		details["domain"] = d.domain
	}
	for k, v := range d.metadata {
		details[k] = v
	}
	if d.quota != "" {
		details["quotaSubject"] = d.quota
	}

	msg := st.Message()
	base := func(k apperr.Kind) apperr.Base {
		return apperr.NewBase(c.message(k, msg), details)
	}

	switch st.Code() {
	case codes.InvalidArgument, codes.FailedPrecondition, codes.OutOfRange:
		return apperr.ValidationError{Base: base(apperr.KindValidation), FieldErrors: d.fieldErrors}, true
	case codes.Unauthenticated:
		return apperr.AuthenticationError{Base: base(apperr.KindAuthentication), Reason: d.reason}, true
	case codes.PermissionDenied:
		return apperr.AuthorizationError{Base: base(apperr.KindAuthorization), RequiredPermission: d.metadata["permission"]}, true
	case codes.NotFound:
		return apperr.NotFoundError{Base: base(apperr.KindNotFound), Resource: d.resource}, true
	case codes.DeadlineExceeded:
		return apperr.TimeoutError{Base: base(apperr.KindTimeout)}, true
	case codes.ResourceExhausted:
		return apperr.RateLimitedError{Base: base(apperr.KindRateLimited), RetryAfter: d.retryAfter}, true
	case codes.Unavailable:
		return apperr.ConnectivityError{Base: base(apperr.KindConnectivity), Type: "grpc"}, true
	case codes.Internal, codes.Unknown, codes.DataLoss, codes.Unimplemented:
		return apperr.ServerError{Base: base(apperr.KindServer), ErrorCode: d.reason}, true
	case codes.Aborted, codes.AlreadyExists:
		return apperr.BusinessError{Base: base(apperr.KindBusiness), Code: st.Code().String()}, true
	default:
		// codes.Canceled
		return c.unknown(err, c.message(apperr.KindUnknown, msg), nil), true
	}
}

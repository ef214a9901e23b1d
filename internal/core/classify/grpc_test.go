package classify

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/durationpb"

	"github.com/vietddude/authkit/internal/core/apperr"
)

func TestClassify_GRPCCodes(t *testing.T) {
	tests := []struct {
		code codes.Code
		kind apperr.Kind
	}{
		{codes.InvalidArgument, apperr.KindValidation},
		{codes.FailedPrecondition, apperr.KindValidation},
		{codes.Unauthenticated, apperr.KindAuthentication},
		{codes.PermissionDenied, apperr.KindAuthorization},
		{codes.NotFound, apperr.KindNotFound},
		{codes.DeadlineExceeded, apperr.KindTimeout},
		{codes.ResourceExhausted, apperr.KindRateLimited},
		{codes.Unavailable, apperr.KindConnectivity},
		{codes.Internal, apperr.KindServer},
		{codes.Unimplemented, apperr.KindServer},
		{codes.AlreadyExists, apperr.KindBusiness},
		{codes.Aborted, apperr.KindBusiness},
		{codes.Canceled, apperr.KindUnknown},
	}

	for _, tt := range tests {
		err := status.Error(tt.code, "rpc failed")
		if got := Classify(err).Kind(); got != tt.kind {
			t.Errorf("code %v: got %v, want %v", tt.code, got, tt.kind)
		}
	}
}

func TestClassify_GRPCDetails(t *testing.T) {
	t.Run("retry info becomes retryAfter", func(t *testing.T) {
		st, err := status.New(codes.ResourceExhausted, "quota exceeded").WithDetails(
			&errdetails.RetryInfo{RetryDelay: durationpb.New(30 * time.Second)},
			&errdetails.QuotaFailure{Violations: []*errdetails.QuotaFailure_Violation{{Subject: "client:42"}}},
		)
		require.NoError(t, err)

		v := Classify(st.Err()).(apperr.RateLimitedError)
		require.NotNil(t, v.RetryAfter)
		assert.Equal(t, 30*time.Second, *v.RetryAfter)
		assert.Equal(t, "quota exceeded", v.Message())
		assert.Equal(t, "client:42", v.Details()["quotaSubject"])
	})

	t.Run("bad request becomes field errors", func(t *testing.T) {
		st, err := status.New(codes.InvalidArgument, "invalid signup").WithDetails(&errdetails.BadRequest{
			FieldViolations: []*errdetails.BadRequest_FieldViolation{
				{Field: "email", Description: "required"},
				{Field: "email", Description: "must be an address"},
			},
		})
		require.NoError(t, err)

		v := Classify(fmt.Errorf("register: %w", st.Err())).(apperr.ValidationError)
		assert.Equal(t, map[string][]string{"email": {"required", "must be an address"}}, v.FieldErrors)
	})

	t.Run("error info reason", func(t *testing.T) {
		st, err := status.New(codes.Internal, "").WithDetails(&errdetails.ErrorInfo{
			Reason: "DB_UNAVAILABLE",
			Domain: "auth.example.com",
		})
		require.NoError(t, err)

		v := Classify(st.Err()).(apperr.ServerError)
		assert.Equal(t, "DB_UNAVAILABLE", v.ErrorCode)
		assert.Equal(t, "The server encountered an error. Please try again later", v.Message())
		assert.Equal(t, "Internal", v.Details()["grpcCode"])
	})

	t.Run("resource info", func(t *testing.T) {
		st, err := status.New(codes.NotFound, "missing").WithDetails(&errdetails.ResourceInfo{
			ResourceType: "user",
			ResourceName: "u-1",
		})
		require.NoError(t, err)

		v := Classify(st.Err()).(apperr.NotFoundError)
		assert.Equal(t, "user/u-1", v.Resource)
	})
}

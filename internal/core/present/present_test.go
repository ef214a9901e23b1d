package present

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietddude/authkit/internal/core/apperr"
	"github.com/vietddude/authkit/internal/core/errlog"
)

func TestModeFor_Total(t *testing.T) {
	tests := []struct {
		ce   apperr.ClassifiedError
		want Mode
	}{
		{apperr.NetworkError{StatusCode: 418}, ModeNotice},
		{apperr.AuthenticationError{}, ModeDialog},
		{apperr.AuthorizationError{}, ModeDialog},
		{apperr.ValidationError{FieldErrors: map[string][]string{"email": {"required"}}}, ModeInlineFields},
		{apperr.NotFoundError{}, ModeNotice},
		{apperr.ServerError{StatusCode: 500}, ModeNotice},
		{apperr.TimeoutError{}, ModeNotice},
		{apperr.ConnectivityError{}, ModeNotice},
		{apperr.StorageError{}, ModeNotice},
		{apperr.PermissionError{}, ModeDialog},
		{apperr.RateLimitedError{}, ModeNotice},
		{apperr.BusinessError{Code: "EMAIL_TAKEN"}, ModeDialog},
		{apperr.UnknownError{}, ModeNotice},
	}

	require.Len(t, tests, len(apperr.Kinds()))
	for _, tt := range tests {
		assert.Equal(t, tt.want, ModeFor(tt.ce), tt.ce.Kind().String())
	}
}

func TestModeFor_ValidationWithoutFields(t *testing.T) {
	assert.Equal(t, ModeNotice, ModeFor(apperr.ValidationError{}))
	assert.Equal(t, ModeNotice, ModeFor(apperr.ValidationError{FieldErrors: map[string][]string{}}))
	assert.Equal(t, ModeNotice, ModeFor(nil))
}

func TestDescribe(t *testing.T) {
	v := Describe(apperr.TimeoutError{Base: apperr.NewBase("The request timed out", nil)})
	assert.Equal(t, ModeNotice, v.Mode)
	assert.Equal(t, DefaultNoticeTTL, v.TTL)
	assert.Equal(t, "The request timed out", v.Message)

	v = Describe(apperr.AuthenticationError{Base: apperr.NewBase("Invalid credentials", nil)})
	assert.Equal(t, ModeDialog, v.Mode)
	assert.Equal(t, "Sign-in required", v.Title)
	assert.Zero(t, v.TTL)

	fields := map[string][]string{"password": {"too short"}}
	v = Describe(apperr.ValidationError{FieldErrors: fields})
	assert.Equal(t, ModeInlineFields, v.Mode)
	assert.Equal(t, fields, v.FieldErrors)
}

type capture struct {
	errlog.Nop
	critical   int
	exceptions int
}

func (c *capture) LogCriticalError(apperr.ClassifiedError, []byte) { c.critical++ }
func (c *capture) LogException(apperr.ClassifiedError, []byte)     { c.exceptions++ }

func TestDispatch_NoBindingLogsCritical(t *testing.T) {
	log := &capture{}
	d := NewDispatcher(nil, log)

	mode := d.Dispatch(context.Background(), apperr.ServerError{StatusCode: 503})

	assert.Equal(t, ModeNotice, mode)
	assert.Equal(t, 1, log.critical)
	assert.Zero(t, log.exceptions)
}

func TestDispatch_PresenterReceivesView(t *testing.T) {
	log := &capture{}
	var got []View
	d := NewDispatcher(PresenterFunc(func(_ context.Context, v View) error {
		got = append(got, v)
		return nil
	}), log)

	mode := d.Dispatch(context.Background(), apperr.BusinessError{Code: "EMAIL_TAKEN"})

	assert.Equal(t, ModeDialog, mode)
	require.Len(t, got, 1)
	assert.Equal(t, ModeDialog, got[0].Mode)
	assert.Zero(t, log.critical)
	assert.Equal(t, 1, log.exceptions)
}

func TestDispatch_PresenterFailureFallsBack(t *testing.T) {
	tests := []struct {
		name      string
		presenter Presenter
	}{
		{"error", PresenterFunc(func(context.Context, View) error { return errors.New("no window") })},
		{"panic", PresenterFunc(func(context.Context, View) error { panic("widget gone") })},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := &capture{}
			d := NewDispatcher(tt.presenter, log)

			assert.NotPanics(t, func() {
				d.Dispatch(context.Background(), apperr.UnknownError{})
			})
			assert.Equal(t, 1, log.critical)
		})
	}
}

func TestWriterPresenter(t *testing.T) {
	var buf bytes.Buffer
	p := WriterPresenter{W: &buf}

	fields := map[string][]string{
		"password": {"too short", "needs a digit"},
		"email":    {"required"},
	}
	ce := apperr.ValidationError{Base: apperr.NewBase("Invalid data format", nil), FieldErrors: fields}

	err := p.Present(context.Background(), Describe(ce))
	require.NoError(t, err)
	assert.Equal(t, "Invalid data format\n  email: required\n  password: too short; needs a digit\n", buf.String())
}

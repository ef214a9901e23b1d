package present

import (
	"context"
	"fmt"
	"io"
	"runtime/debug"
	"sort"
	"strings"

	"github.com/vietddude/authkit/internal/core/apperr"
	"github.com/vietddude/authkit/internal/core/errlog"
	"github.com/vietddude/authkit/internal/metrics"
)

// Presenter is implemented by the UI layer.
type Presenter interface {
	Present(ctx context.Context, view View) error
}

// PresenterFunc adapts a function to Presenter.
type PresenterFunc func(ctx context.Context, view View) error

func (f PresenterFunc) Present(ctx context.Context, view View) error {
	return f(ctx, view)
}

// Dispatcher surfaces final failures. Every dispatched error produces exactly
// one visible signal: the presenter when one is bound and accepts it,
// otherwise a critical log entry.
type Dispatcher struct {
	presenter Presenter
	logger    errlog.Logger
}

// NewDispatcher creates a dispatcher. presenter may be nil.
func NewDispatcher(presenter Presenter, logger errlog.Logger) *Dispatcher {
	return &Dispatcher{
		presenter: presenter,
		logger:    errlog.OrNop(logger),
	}
}

// Dispatch presents ce and returns the mode that was chosen.
func (d *Dispatcher) Dispatch(ctx context.Context, ce apperr.ClassifiedError) Mode {
	view := Describe(ce)
	metrics.Presentations.WithLabelValues(view.Mode.String(), kindLabel(ce)).Inc()

	if d.presenter == nil {
		d.logger.LogCriticalError(ce, debug.Stack())
		return view.Mode
	}
	if err := d.present(ctx, view); err != nil {
		d.logger.LogCriticalError(ce, []byte(err.Error()))
		return view.Mode
	}
	d.logger.LogException(ce, nil)
	return view.Mode
}

func (d *Dispatcher) present(ctx context.Context, view View) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("presenter panicked: %v", r)
		}
	}()
	return d.presenter.Present(ctx, view)
}

func kindLabel(ce apperr.ClassifiedError) string {
	if ce == nil {
		return "none"
	}
	return ce.Kind().String()
}

// WriterPresenter renders views as plain text, for terminals.
type WriterPresenter struct {
	W io.Writer
}

func (p WriterPresenter) Present(_ context.Context, view View) error {
	var b strings.Builder
	switch view.Mode {
	case ModeDialog:
		fmt.Fprintf(&b, "[%s] %s\n", view.Title, view.Message)
	case ModeInlineFields:
		fmt.Fprintf(&b, "%s\n", view.Message)
		fields := make([]string, 0, len(view.FieldErrors))
		for f := range view.FieldErrors {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		for _, f := range fields {
			fmt.Fprintf(&b, "  %s: %s\n", f, strings.Join(view.FieldErrors[f], "; "))
		}
	default:
		fmt.Fprintf(&b, "%s\n", view.Message)
	}
	_, err := io.WriteString(p.W, b.String())
	return err
}

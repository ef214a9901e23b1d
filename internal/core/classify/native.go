package classify

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"net"
	"syscall"

	"github.com/vietddude/authkit/internal/core/apperr"
)

var unreachableErrnos = []syscall.Errno{
	syscall.ECONNREFUSED,
	syscall.ECONNRESET,
	syscall.ECONNABORTED,
	syscall.EHOSTUNREACH,
	syscall.ENETUNREACH,
	syscall.ENETDOWN,
	syscall.EPIPE,
}

// fromNative recognizes standard library errors.
func (c *Classifier) fromNative(err error) (apperr.ClassifiedError, bool) {
	if isTimeout(err) {
		return apperr.TimeoutError{Base: apperr.NewBase(c.messages[apperr.KindTimeout], nil)}, true
	}
	if typ, ok := connectivityType(err); ok {
		return apperr.ConnectivityError{
			Base: apperr.NewBase(c.messages[apperr.KindConnectivity], map[string]any{
				"originalMessage": err.Error(),
			}),
			Type: typ,
		}, true
	}
	if isMalformed(err) {
		return c.malformed(err), true
	}
	if errors.Is(err, fs.ErrPermission) {
		permission := ""
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			permission = pathErr.Op + " " + pathErr.Path
		}
		return apperr.PermissionError{
			Base:       apperr.NewBase(c.messages[apperr.KindPermission], nil),
			Permission: permission,
		}, true
	}
	return nil, false
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func connectivityType(err error) (string, bool) {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return "dns", true
	}

	var certErr *tls.CertificateVerificationError
	var authorityErr x509.UnknownAuthorityError
	var hostnameErr x509.HostnameError
	if errors.As(err, &certErr) || errors.As(err, &authorityErr) || errors.As(err, &hostnameErr) {
		return "tls", true
	}

	for _, errno := range unreachableErrnos {
		if errors.Is(err, errno) {
			return "socket", true
		}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return "socket", true
	}
	return "", false
}

func isMalformed(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) ||
		errors.As(err, &typeErr) ||
		errors.Is(err, io.ErrUnexpectedEOF)
}

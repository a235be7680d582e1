package httputil

import (
	"context"
	"errors"
	"net"
)

// IsTimeout reports whether an outbound call failed because a deadline passed,
// either the request context's or a transport-level one.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

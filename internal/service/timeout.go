package service

import (
	"context"
	"time"
)

// WithTimeout bounds one outbound call. A non-positive timeout leaves ctx as
// it is.
func WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

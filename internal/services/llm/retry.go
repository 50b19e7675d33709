package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"subseg/internal/services"
)

const (
	defaultBackoffBase    = time.Second
	defaultBackoffCeiling = 10 * time.Second
)

// backoff is the retry policy of a Client: a bounded number of attempts with
// doubling waits between them.
type backoff struct {
	attempts int
	base     time.Duration
	ceiling  time.Duration
	sleep    func(time.Duration)
}

func newBackoff(attempts int) backoff {
	return backoff{attempts: attempts, base: defaultBackoffBase, ceiling: defaultBackoffCeiling}
}

// run calls fn until it succeeds, fails permanently, or attempts run out.
// A retryable failure on the final attempt is reported with ErrTransient.
func (b backoff) run(ctx context.Context, op string, fn func(attempt int) error) error {
	limit := max(b.attempts, 1)
	for attempt := 1; ; attempt++ {
		err := fn(attempt)
		if err == nil {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if !retryable(err) {
			return err
		}
		if attempt >= limit {
			if attempt == 1 {
				return err
			}
			return fmt.Errorf("%s: gave up after %d attempts: %w: %w", op, attempt, services.ErrTransient, err)
		}
		wait := b.delay(attempt)
		var status *statusError
		if errors.As(err, &status) && status.retryAfter > 0 {
			wait = b.clamp(status.retryAfter)
		}
		if err := b.wait(ctx, wait); err != nil {
			return err
		}
	}
}

// delay is the wait after the given attempt: base, 2*base, 4*base and so on,
// never above the ceiling.
func (b backoff) delay(attempt int) time.Duration {
	if b.base <= 0 {
		return 0
	}
	d := b.base
	for i := 1; i < attempt && d < b.limit(); i++ {
		d *= 2
	}
	return b.clamp(d)
}

func (b backoff) limit() time.Duration {
	if b.ceiling > 0 {
		return b.ceiling
	}
	return defaultBackoffCeiling
}

func (b backoff) clamp(d time.Duration) time.Duration {
	return max(0, min(d, b.limit()))
}

func (b backoff) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	if b.sleep != nil {
		b.sleep(d)
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// retryable covers rate limits, server errors, request timeouts, empty
// completions and network timeouts.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var empty *emptyContentError
	if errors.As(err, &empty) {
		return true
	}
	var status *statusError
	if errors.As(err, &status) {
		switch {
		case status.code == http.StatusRequestTimeout, status.code == http.StatusTooManyRequests:
			return true
		default:
			return status.code >= http.StatusInternalServerError
		}
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// retryAfter reads a Retry-After header in either seconds or HTTP-date form.
func retryAfter(header string) (time.Duration, bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(header); err == nil {
		return time.Duration(secs) * time.Second, secs >= 0
	}
	at, err := http.ParseTime(header)
	if err != nil {
		return 0, false
	}
	d := time.Until(at)
	return d, d >= 0
}

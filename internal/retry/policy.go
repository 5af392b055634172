// Package retry holds the fixed backoff schedules used for GitHub calls.
//
// A Policy has no memory: callers count consecutive failures and reset
// the count after a success, so only an unbroken run of failures can
// exhaust the schedule.
package retry

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Policy is an ordered list of delays applied across consecutive failures
type Policy struct {
	Delays []time.Duration
}

// Seconds builds a policy from whole-second delays
func Seconds(delays ...int) Policy {
	p := Policy{Delays: make([]time.Duration, len(delays))}
	for i, d := range delays {
		p.Delays[i] = time.Duration(d) * time.Second
	}
	return p
}

// ParseSeconds parses a comma separated list such as "5,10,30"
func ParseSeconds(s string) (Policy, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Policy{}, nil
	}

	parts := strings.Split(s, ",")
	delays := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return Policy{}, fmt.Errorf("invalid retry delay %q: %w", part, err)
		}
		if n < 0 {
			return Policy{}, fmt.Errorf("invalid retry delay %q: must not be negative", part)
		}
		delays = append(delays, n)
	}
	return Seconds(delays...), nil
}

// Delay returns the wait before the next attempt after attempt failures.
// ok is false when the schedule is exhausted and the caller must give up.
func (p Policy) Delay(attempt int) (delay time.Duration, ok bool) {
	if attempt < 0 || attempt >= len(p.Delays) {
		return 0, false
	}
	return p.Delays[attempt], true
}

// Len returns the number of retries the policy allows
func (p Policy) Len() int {
	return len(p.Delays)
}

// String formats the policy the way ParseSeconds reads it
func (p Policy) String() string {
	parts := make([]string, len(p.Delays))
	for i, d := range p.Delays {
		parts[i] = strconv.Itoa(int(d / time.Second))
	}
	return strings.Join(parts, ",")
}

// SleepFunc waits for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep suspends the calling goroutine for d, returning early with the
// context error on cancellation.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
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

// Do calls fn until it succeeds, returns a permanent error, or the
// policy is exhausted. The last error is returned on failure.
func Do(ctx context.Context, p Policy, sleep SleepFunc, fn func() error) error {
	if sleep == nil {
		sleep = Sleep
	}

	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if IsPermanent(err) {
			return err
		}

		delay, ok := p.Delay(attempt)
		if !ok {
			return fmt.Errorf("giving up after %d attempts: %w", attempt+1, err)
		}
		if serr := sleep(ctx, delay); serr != nil {
			return errors.Join(err, serr)
		}
	}
}

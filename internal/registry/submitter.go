package registry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/dmallory/curio/internal/log"
)

// DefaultMaxAttempts is the total submission attempt budget,
// including the first try.
const DefaultMaxAttempts = 3

// DefaultBackoffBase is the delay before the first retry; each
// subsequent retry doubles it (1s, 2s, 4s, ...).
const DefaultBackoffBase = time.Second

// Submitter wraps Client.Submit with bounded exponential backoff.
// Terminal statuses (400, 403, 409, 424) fail immediately regardless
// of remaining budget; any other error status or transport failure is
// retried until the attempt budget runs out, at which point the last
// observed error surfaces.
type Submitter struct {
	client      *Client
	maxAttempts int
	base        time.Duration
	notify      func(err error, delay time.Duration)
}

// SubmitterOption customizes a Submitter.
type SubmitterOption func(*Submitter)

// WithMaxAttempts sets the total attempt budget (minimum 1).
func WithMaxAttempts(n int) SubmitterOption {
	return func(s *Submitter) {
		if n >= 1 {
			s.maxAttempts = n
		}
	}
}

// WithBackoffBase sets the delay before the first retry.
func WithBackoffBase(d time.Duration) SubmitterOption {
	return func(s *Submitter) {
		if d > 0 {
			s.base = d
		}
	}
}

// WithNotify installs a hook observing every backoff delay before it
// is slept. Used for logging and for deterministic tests.
func WithNotify(fn func(err error, delay time.Duration)) SubmitterOption {
	return func(s *Submitter) { s.notify = fn }
}

// NewSubmitter creates a Submitter over the given client.
func NewSubmitter(client *Client, opts ...SubmitterOption) *Submitter {
	s := &Submitter{
		client:      client,
		maxAttempts: DefaultMaxAttempts,
		base:        DefaultBackoffBase,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit registers the artifact, retrying transient failures with
// exponential backoff. Returns the created record, or the terminating
// error: a terminal registry error immediately, or the last transient
// error once the budget is exhausted.
func (s *Submitter) Submit(ctx context.Context, req SubmissionRequest) (Artifact, error) {
	// Doubling schedule with no jitter: base, 2*base, 4*base, ...
	schedule := backoff.NewExponentialBackOff()
	schedule.InitialInterval = s.base
	schedule.Multiplier = 2
	schedule.RandomizationFactor = 0
	schedule.MaxInterval = s.base << 16

	attempt := 0
	operation := func() (Artifact, error) {
		attempt++
		created, err := s.client.Submit(ctx, req)
		if err == nil {
			return created, nil
		}
		if IsTerminal(err) {
			log.Warn(log.CatRetry, "terminal submission failure", "url", req.URL, "status", StatusOf(err))
			return Artifact{}, backoff.Permanent(err)
		}
		return Artifact{}, err
	}

	notify := func(err error, delay time.Duration) {
		log.Warn(log.CatRetry, "transient submission failure, backing off",
			"url", req.URL, "attempt", attempt, "delay", delay, "error", err)
		if s.notify != nil {
			s.notify(err, delay)
		}
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(schedule),
		backoff.WithMaxTries(uint(s.maxAttempts)),
		backoff.WithNotify(notify),
	)
}

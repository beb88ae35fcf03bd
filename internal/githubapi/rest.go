package githubapi

import (
	"context"
	"time"

	"github.com/google/go-github/v57/github"

	"github.com/octoharvest/octoharvest/internal/errors"
	"github.com/octoharvest/octoharvest/internal/tokenpool"
)

// RESTWrapper owns a started *github.Client bound to one pool token,
// generalized to the full REST enumeration surface this pipeline needs
// (commits, issues, pull requests, branches, workflows, ...).
type RESTWrapper struct {
	pool *tokenpool.Pool

	token  string
	client *github.Client
}

// NewRESTWrapper builds a wrapper bound to a token pool.
func NewRESTWrapper(pool *tokenpool.Pool) *RESTWrapper {
	return &RESTWrapper{pool: pool}
}

// Start acquires a token and builds the client. No-op if already started.
func (w *RESTWrapper) Start(ctx context.Context) error {
	if w.client != nil {
		return nil
	}
	token, err := w.pool.Acquire(ctx, tokenpool.REST)
	if err != nil {
		return errors.NetworkErrorf(err, "acquiring rest token")
	}
	w.token = token
	w.client = github.NewClient(nil).WithAuthToken(token)
	return nil
}

// Destroy returns the held token and clears the client.
func (w *RESTWrapper) Destroy(notBefore time.Time) error {
	if w.client == nil {
		return nil
	}
	token := w.token
	w.client = nil
	w.token = ""
	return w.pool.Release(tokenpool.REST, token, notBefore)
}

func (w *RESTWrapper) restart(ctx context.Context, notBefore time.Time) error {
	if err := w.Destroy(notBefore); err != nil {
		return err
	}
	return w.Start(ctx)
}

// Client returns the underlying *github.Client, starting it first if
// needed. checkRate should be called by the caller after every response to
// apply the rotate-below-low-water-mark policy via CheckRate.
func (w *RESTWrapper) Client(ctx context.Context) (*github.Client, error) {
	if err := w.Start(ctx); err != nil {
		return nil, err
	}
	return w.client, nil
}

// CheckRate inspects a response's reported remaining budget and, if it has
// fallen to or below the low-water mark, rotates to a fresh token. A
// *github.RateLimitError is handled the same way, using its server-reported
// reset time as notBefore.
func (w *RESTWrapper) CheckRate(ctx context.Context, resp *github.Response, err error) error {
	if rlErr, ok := err.(*github.RateLimitError); ok {
		return w.restart(ctx, rlErr.Rate.Reset.Time)
	}
	if resp != nil && resp.Rate.Remaining <= lowWaterRemaining {
		return w.restart(ctx, resp.Rate.Reset.Time)
	}
	return nil
}

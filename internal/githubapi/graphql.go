// Package githubapi wraps GitHub's GraphQL and REST APIs behind the token
// pool, presenting a uniform "wrapper" surface. The GraphQL wrapper uses
// a *graphql.Client over an http.Client whose Transport injects the
// bearer token (authTransport), relying on the struct-tagged query
// correctness shurcooL/graphql buys at compile time in place of
// client-side schema validation.
package githubapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/shurcooL/graphql"
	"golang.org/x/time/rate"

	"github.com/octoharvest/octoharvest/internal/errors"
	"github.com/octoharvest/octoharvest/internal/tokenpool"
)

const (
	graphqlEndpoint    = "https://api.github.com/graphql"
	lowWaterRemaining  = 50
	courtesyDelay      = 500 * time.Millisecond
)

// authTransport injects a bearer token and a descriptive User-Agent into
// every outbound request.
type authTransport struct {
	token string
	base  http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+t.token)
	req.Header.Set("User-Agent", "octoharvest-miner")
	return t.base.RoundTrip(req)
}

// GraphQLWrapper owns a started client over exactly one token at a time.
type GraphQLWrapper struct {
	pool    *tokenpool.Pool
	limiter *rate.Limiter

	token  string
	client *graphql.Client
}

// NewGraphQLWrapper builds a wrapper bound to a token pool. The courtesy
// throttle after every call is implemented with a token-bucket limiter
// pacing calls roughly every half second.
func NewGraphQLWrapper(pool *tokenpool.Pool) *GraphQLWrapper {
	return &GraphQLWrapper{
		pool:    pool,
		limiter: rate.NewLimiter(rate.Every(courtesyDelay), 1),
	}
}

// Start acquires a token and builds the underlying transport. No-op if
// already started.
func (w *GraphQLWrapper) Start(ctx context.Context) error {
	if w.client != nil {
		return nil
	}
	token, err := w.pool.Acquire(ctx, tokenpool.GraphQL)
	if err != nil {
		return errors.NetworkErrorf(err, "acquiring graphql token")
	}
	w.token = token
	httpClient := &http.Client{
		Transport: &authTransport{token: token, base: http.DefaultTransport},
		Timeout:   60 * time.Second,
	}
	w.client = graphql.NewClient(graphqlEndpoint, httpClient)
	return nil
}

// Destroy returns the held token to the pool with the given notBefore and
// clears the client so the next Start acquires fresh.
func (w *GraphQLWrapper) Destroy(notBefore time.Time) error {
	if w.client == nil {
		return nil
	}
	token := w.token
	w.client = nil
	w.token = ""
	return w.pool.Release(tokenpool.GraphQL, token, notBefore)
}

// restart destroys then immediately starts again, rotating to whatever
// token the pool next hands out — used both on transport errors and when
// the remaining budget drops below the low-water mark.
func (w *GraphQLWrapper) restart(ctx context.Context, notBefore time.Time) error {
	if err := w.Destroy(notBefore); err != nil {
		return err
	}
	return w.Start(ctx)
}

// Execute runs query with variables, applying the courtesy throttle and
// the restart-on-exhaustion policy. The exhaustion check reads the
// remaining budget and reset instant through the remaining callback, which
// callers bind to their query's querytree.RateLimitInfo trailer.
func (w *GraphQLWrapper) Execute(ctx context.Context, query interface{}, variables map[string]interface{}, remaining func() (int, string)) error {
	if w.client == nil {
		if err := w.Start(ctx); err != nil {
			return err
		}
	}
	if err := w.limiter.Wait(ctx); err != nil {
		return err
	}

	err := w.client.Query(ctx, query, variables)
	if err != nil {
		// Transport error: one transparent restart-and-retry cycle.
		if restartErr := w.restart(ctx, time.Time{}); restartErr != nil {
			return fmt.Errorf("graphql query failed (%w) and restart failed: %v", err, restartErr)
		}
		if err2 := w.client.Query(ctx, query, variables); err2 != nil {
			return errors.ExternalErrorf(err2, "graphql query failed after restart")
		}
	}

	if remainingCount, resetAt := remaining(); remainingCount <= lowWaterRemaining {
		notBefore, parseErr := time.Parse(time.RFC3339, resetAt)
		if parseErr != nil {
			notBefore = time.Now().Add(time.Hour)
		}
		return w.restart(ctx, notBefore)
	}
	return nil
}

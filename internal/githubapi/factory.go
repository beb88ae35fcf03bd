package githubapi

import (
	"context"
	"time"

	"github.com/octoharvest/octoharvest/internal/tokenpool"
)

// noDeferral returns the zero time, meaning a released token is
// immediately reusable (no rate-limit deferral in effect).
func noDeferral() time.Time {
	return time.Time{}
}

// Factory owns one REST wrapper and one GraphQL wrapper per repository
// worker, ensuring at most one is started at a time: switching APIs
// destroys the other first. This minimizes concurrent token holdings per
// repository.
type Factory struct {
	pool *tokenpool.Pool

	graphql *GraphQLWrapper
	rest    *RESTWrapper
}

// NewFactory builds a factory over a shared token pool.
func NewFactory(pool *tokenpool.Pool) *Factory {
	return &Factory{
		pool:    pool,
		graphql: NewGraphQLWrapper(pool),
		rest:    NewRESTWrapper(pool),
	}
}

// GraphQL returns the started GraphQL wrapper, destroying the REST wrapper
// first if it is currently holding a token.
func (f *Factory) GraphQL(ctx context.Context) (*GraphQLWrapper, error) {
	if err := f.rest.Destroy(noDeferral()); err != nil {
		return nil, err
	}
	if err := f.graphql.Start(ctx); err != nil {
		return nil, err
	}
	return f.graphql, nil
}

// REST returns the started REST wrapper, destroying the GraphQL wrapper
// first if it is currently holding a token.
func (f *Factory) REST(ctx context.Context) (*RESTWrapper, error) {
	if err := f.graphql.Destroy(noDeferral()); err != nil {
		return nil, err
	}
	if err := f.rest.Start(ctx); err != nil {
		return nil, err
	}
	return f.rest, nil
}

// Close tears down whichever wrapper is currently started, called once at
// worker teardown.
func (f *Factory) Close() error {
	if err := f.graphql.Destroy(noDeferral()); err != nil {
		return err
	}
	return f.rest.Destroy(noDeferral())
}

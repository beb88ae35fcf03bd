package githubapi

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/octoharvest/octoharvest/internal/tokenpool"
)

func TestGraphQLWrapper_StartIsIdempotent(t *testing.T) {
	pool := tokenpool.New([]string{"tok-a"})
	w := NewGraphQLWrapper(pool)

	require.NoError(t, w.Start(context.Background()))
	client1 := w.client

	require.NoError(t, w.Start(context.Background()))
	assert.Same(t, client1, w.client)
}

func TestGraphQLWrapper_DestroyReleasesToken(t *testing.T) {
	pool := tokenpool.New([]string{"tok-a"})
	w := NewGraphQLWrapper(pool)

	require.NoError(t, w.Start(context.Background()))
	require.NoError(t, w.Destroy(time.Time{}))
	assert.Nil(t, w.client)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	tok, err := pool.Acquire(ctx, tokenpool.GraphQL)
	require.NoError(t, err)
	assert.Equal(t, "tok-a", tok)
}

func TestGraphQLWrapper_DestroyBeforeStartIsNoOp(t *testing.T) {
	pool := tokenpool.New([]string{"tok-a"})
	w := NewGraphQLWrapper(pool)

	assert.NoError(t, w.Destroy(time.Time{}))
}

func TestFactory_GraphQLDestroysRESTFirst(t *testing.T) {
	pool := tokenpool.New([]string{"only-token"})
	f := NewFactory(pool)

	_, err := f.REST(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, f.rest.client)

	_, err = f.GraphQL(context.Background())
	require.NoError(t, err)
	assert.Nil(t, f.rest.client, "switching to GraphQL must release the REST wrapper's token")
	assert.NotNil(t, f.graphql.client)
}

func TestFactory_RESTDestroysGraphQLFirst(t *testing.T) {
	pool := tokenpool.New([]string{"only-token"})
	f := NewFactory(pool)

	_, err := f.GraphQL(context.Background())
	require.NoError(t, err)

	_, err = f.REST(context.Background())
	require.NoError(t, err)
	assert.Nil(t, f.graphql.client)
	assert.NotNil(t, f.rest.client)
}

func TestFactory_CloseTearsDownWhicheverIsStarted(t *testing.T) {
	pool := tokenpool.New([]string{"only-token"})
	f := NewFactory(pool)

	_, err := f.REST(context.Background())
	require.NoError(t, err)

	require.NoError(t, f.Close())
	assert.Nil(t, f.rest.client)
	assert.Nil(t, f.graphql.client)

	// The token must be back in the pool after Close.
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err = pool.Acquire(ctx, tokenpool.REST)
	require.NoError(t, err)
}

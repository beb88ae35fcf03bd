// Package tokenpool serves one GitHub credential at a time per API kind,
// rotating under exhaustion and deferring tokens whose reported reset
// instant hasn't yet arrived. One mutex-guarded pool per kind keeps
// GraphQL and REST acquisitions from ever contending with each other.
package tokenpool

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Kind distinguishes the two credential pools GitHub's API surfaces
// require: the GraphQL v4 endpoint and the REST v3 endpoint each track
// rate limits independently.
type Kind int

const (
	GraphQL Kind = iota
	REST
)

// retryInterval is the bounded sleep between acquire retries on exhaustion.
const retryInterval = 10 * time.Second

type item struct {
	token     string
	notBefore time.Time
}

type kindPool struct {
	mu        sync.Mutex
	available []item
	inUse     map[string]bool
}

// Pool holds one kindPool per API kind.
type Pool struct {
	pools map[Kind]*kindPool
}

// New seeds both kind pools with the same credential set — every token is
// usable against either API surface, as GitHub tokens are not kind-scoped.
func New(tokens []string) *Pool {
	p := &Pool{pools: make(map[Kind]*kindPool)}
	for _, k := range []Kind{GraphQL, REST} {
		kp := &kindPool{inUse: make(map[string]bool)}
		for _, t := range tokens {
			kp.available = append(kp.available, item{token: t})
		}
		p.pools[k] = kp
	}
	return p
}

// Acquire blocks until a token with notBefore <= now is available,
// retrying every retryInterval indefinitely until ctx is canceled.
func (p *Pool) Acquire(ctx context.Context, kind Kind) (string, error) {
	kp := p.pools[kind]
	for {
		kp.mu.Lock()
		now := time.Now()
		for i, it := range kp.available {
			if it.notBefore.After(now) {
				continue
			}
			kp.available = append(kp.available[:i], kp.available[i+1:]...)
			kp.inUse[it.token] = true
			kp.mu.Unlock()
			return it.token, nil
		}
		kp.mu.Unlock()

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(retryInterval):
		}
	}
}

// Release returns token to the available set with the supplied notBefore
// (zero value means immediately reusable). Releasing a token not held in
// use is a programming error and returns one.
func (p *Pool) Release(kind Kind, token string, notBefore time.Time) error {
	kp := p.pools[kind]
	kp.mu.Lock()
	defer kp.mu.Unlock()

	if !kp.inUse[token] {
		return fmt.Errorf("tokenpool: release of token not held in-use for kind %d", kind)
	}
	delete(kp.inUse, token)
	kp.available = append(kp.available, item{token: token, notBefore: notBefore})
	return nil
}

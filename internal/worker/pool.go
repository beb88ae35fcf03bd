package worker

import (
	"bufio"
	"context"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/octoharvest/octoharvest/internal/clone"
	"github.com/octoharvest/octoharvest/internal/config"
	"github.com/octoharvest/octoharvest/internal/database"
	"github.com/octoharvest/octoharvest/internal/githubapi"
	"github.com/octoharvest/octoharvest/internal/graph"
	"github.com/octoharvest/octoharvest/internal/tokenpool"
)

// reapInterval is how often the pool would check for finished workers and
// launch replacements under a polling-based scheduler.
const reapInterval = 15 * time.Second

// Pool runs up to Config.Threads repository workers concurrently, pulling
// the next repository off the list as each slot frees up.
type Pool struct {
	Config  *config.Config
	Backend graph.Backend
	Ledger  *database.Ledger
	Log     *logrus.Logger

	tokens *tokenpool.Pool
}

// Run processes every repository in the list, maintaining Threads workers
// in flight at all times until the list is exhausted.
func (p *Pool) Run(ctx context.Context) error {
	p.tokens = tokenpool.New(p.Config.GithubTokens)

	repos, err := loadRepositoryList(p.Config.RepoListPath)
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, max(p.Config.Threads, 1))
	ticker := time.NewTicker(reapInterval)
	defer ticker.Stop()

	for i, repo := range repos {
		select {
		case <-ctx.Done():
			wg.Wait()
			return ctx.Err()
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(repo Repository, index int) {
			defer wg.Done()
			defer func() { <-sem }()

			rw := &RepositoryWorker{
				Config:  p.Config,
				Pool:    githubapi.NewFactory(p.tokens),
				Backend: p.Backend,
				Ledger:  p.Ledger,
				Log:     p.Log.WithField("worker", index),
			}
			if err := rw.Run(ctx, repo); err != nil {
				p.Log.WithError(err).WithField("repo", repo.URL).Error("repository run failed")
			}
		}(repo, i)
	}

	wg.Wait()
	return nil
}

// loadRepositoryList reads newline-delimited clone URLs, skipping blanks
// and comment lines.
func loadRepositoryList(path string) ([]Repository, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var repos []Repository
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		owner, name, err := clone.ParseOwnerRepo(line)
		if err != nil {
			continue
		}
		repos = append(repos, Repository{URL: line, Owner: owner, Name: name})
	}
	return repos, scanner.Err()
}

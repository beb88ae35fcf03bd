package storage

import (
	"crypto/sha256"
	"fmt"
)

// BranchID derives a stable branch identifier from the owning project and
// branch name, memoized within this run.
func (s *Store) BranchID(projectID, name string) string {
	return s.memoizedHash("branch", projectID, name)
}

// IssueTimeBucketID derives the ProjectIssueMonth id for an issue/PR
// timestamp's "YYYY-MM" prefix.
func (s *Store) IssueTimeBucketID(projectID, isoTimestamp string) string {
	return s.memoizedHash("issueMonth", projectID, monthPrefix(isoTimestamp))
}

// PullRequestTimeBucketID derives the ProjectPullRequestMonth id.
func (s *Store) PullRequestTimeBucketID(projectID, isoTimestamp string) string {
	return s.memoizedHash("pullRequestMonth", projectID, monthPrefix(isoTimestamp))
}

// CommitTimeBucketID derives the ProjectCommitMonth id.
func (s *Store) CommitTimeBucketID(projectID, isoTimestamp string) string {
	return s.memoizedHash("commitMonth", projectID, monthPrefix(isoTimestamp))
}

func monthPrefix(isoTimestamp string) string {
	if len(isoTimestamp) >= 7 {
		return isoTimestamp[:7]
	}
	return isoTimestamp
}

func (s *Store) memoizedHash(namespace string, parts ...string) string {
	key := namespace
	for _, p := range parts {
		key += "|" + p
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.idCache[key]; ok {
		return id
	}
	sum := sha256.Sum256([]byte(key))
	id := fmt.Sprintf("%x", sum)[:24]
	s.idCache[key] = id
	return id
}

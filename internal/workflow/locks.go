package workflow

import "sync"

// repoLocks serializes pipelines per repository path. Two requests
// touching the same work tree would otherwise interleave their
// add/commit sequences; the lock guarantees at most one in-flight
// pipeline per repository. Locks live for the process lifetime, which
// is fine for a bounded allow-list.
type repoLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newRepoLocks() *repoLocks {
	return &repoLocks{
		locks: make(map[string]*sync.Mutex),
	}
}

// acquire blocks until the repository lock is held and returns the
// release function.
func (l *repoLocks) acquire(repoPath string) func() {
	l.mu.Lock()
	m, ok := l.locks[repoPath]
	if !ok {
		m = &sync.Mutex{}
		l.locks[repoPath] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

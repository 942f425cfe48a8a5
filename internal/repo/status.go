package repo

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/Vellarasan/AI-Copilot-CLI-Server/internal/cache"
	"github.com/Vellarasan/AI-Copilot-CLI-Server/internal/gitops"
)

// Status describes the current state of one allow-listed repository
type Status struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Exists bool   `json:"exists"`
	Branch string `json:"branch,omitempty"`
	Dirty  bool   `json:"dirty"`
}

// StatusList contains statuses for every allow-listed repository
type StatusList struct {
	Repos []Status `json:"repos"`
	Total int      `json:"total"`
}

// Lister assembles repository status listings, cached briefly so
// polling clients do not fan out git invocations.
type Lister struct {
	guard *Guard
	git   *gitops.Git
	cache *cache.RepoStatusCache
}

// NewLister creates a status lister over the guard's allow-list
func NewLister(guard *Guard, git *gitops.Git) *Lister {
	return &Lister{
		guard: guard,
		git:   git,
		cache: cache.NewRepoStatusCache(),
	}
}

// List returns the status of every allow-listed repository
func (l *Lister) List(ctx context.Context) *StatusList {
	if cached, found := l.cache.Get(cache.KeyRepoStatuses); found {
		if list, ok := cached.(*StatusList); ok {
			return list
		}
	}

	var statuses []Status
	for _, name := range l.guard.AllowedRepos() {
		statuses = append(statuses, l.status(ctx, name))
	}

	list := &StatusList{
		Repos: statuses,
		Total: len(statuses),
	}
	l.cache.Set(cache.KeyRepoStatuses, list)
	return list
}

func (l *Lister) status(ctx context.Context, name string) Status {
	st := Status{Name: name}

	path, err := l.guard.ResolveGitRepo(name)
	if err != nil {
		// Keep the configured target path visible even when the work
		// tree is absent, as long as the name itself is valid.
		if errors.Is(err, ErrNotARepository) {
			if p, rerr := l.guard.Resolve(name); rerr == nil {
				st.Path = p
			}
		}
		return st
	}

	st.Path = path
	st.Exists = true

	if res := l.git.CurrentBranch(ctx, path); res.Success {
		st.Branch = strings.TrimSpace(res.Stdout)
	}
	if res := l.git.Status(ctx, path); res.Success {
		st.Dirty = strings.TrimSpace(res.Stdout) != ""
	}

	return st
}

// EnsureBasePath creates the repositories base directory if missing
func EnsureBasePath(basePath string) error {
	return os.MkdirAll(filepath.Clean(basePath), 0755)
}

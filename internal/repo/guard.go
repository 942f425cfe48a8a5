package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrInvalidName indicates a repository name with path separators,
	// traversal segments, or other unsafe characters.
	ErrInvalidName = errors.New("invalid repository name")

	// ErrNotAllowed indicates a repository name not on the allow-list.
	ErrNotAllowed = errors.New("repository is not allowed")

	// ErrNotARepository indicates the resolved path is missing or is not
	// a git work tree.
	ErrNotARepository = errors.New("not a git repository")
)

// Guard validates repository names against the allow-list and resolves
// them to paths under the configured base directory. Resolution is pure:
// no filesystem access happens for names that fail validation.
type Guard struct {
	basePath string
	allowed  map[string]bool
	names    []string
}

// NewGuard creates a guard for the given base path and allow-list
func NewGuard(basePath string, allowedRepos []string) *Guard {
	allowed := make(map[string]bool, len(allowedRepos))
	var names []string
	for _, r := range allowedRepos {
		if r == "" {
			continue
		}
		if !allowed[r] {
			names = append(names, r)
		}
		allowed[r] = true
	}
	return &Guard{
		basePath: filepath.Clean(basePath),
		allowed:  allowed,
		names:    names,
	}
}

// AllowedRepos returns the allow-listed repository names in configured order
func (g *Guard) AllowedRepos() []string {
	out := make([]string, len(g.names))
	copy(out, g.names)
	return out
}

// BasePath returns the repositories base directory
func (g *Guard) BasePath() string {
	return g.basePath
}

// Resolve validates name and returns the repository path under the base
// directory. The name must be a single path element: separators, parent
// segments and absolute markers are rejected even when the literal join
// would stay inside the base path.
func (g *Guard) Resolve(name string) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}

	if !g.allowed[name] {
		return "", fmt.Errorf("%w: %s", ErrNotAllowed, name)
	}

	path := filepath.Join(g.basePath, name)

	// Join cleans the path; anything that escaped the base is a bug in
	// validateName, but verify containment anyway.
	if !strings.HasPrefix(path, g.basePath+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrInvalidName, name)
	}

	return path, nil
}

// ResolveGitRepo resolves name and verifies the path is a git work tree
func (g *Guard) ResolveGitRepo(name string) (string, error) {
	path, err := g.Resolve(name)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotARepository, name)
	}

	if _, err := os.Stat(filepath.Join(path, ".git")); err != nil {
		return "", fmt.Errorf("%w: %s (missing .git)", ErrNotARepository, name)
	}

	return path, nil
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidName)
	}
	if name == "." || name == ".." {
		return fmt.Errorf("%w: %s", ErrInvalidName, name)
	}
	if strings.ContainsAny(name, "/\\") || filepath.IsAbs(name) {
		return fmt.Errorf("%w: %s", ErrInvalidName, name)
	}
	if strings.Contains(name, "..") {
		return fmt.Errorf("%w: %s", ErrInvalidName, name)
	}
	if strings.ContainsRune(name, 0) {
		return fmt.Errorf("%w: %s", ErrInvalidName, name)
	}
	return nil
}

package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"rnstd/internal/logging"
	"rnstd/pkg/fileops"

	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing"
	"github.com/go-git/go-git/v6/plumbing/transport/http"
)

// DirectoryStatus is the state of the resources directory relative to the configured remote.
type DirectoryStatus int

const (
	// DirectoryStatusEmpty means the directory is missing or empty; safe to clone.
	DirectoryStatusEmpty DirectoryStatus = iota
	// DirectoryStatusSameRepo means the directory is a clone of the configured remote.
	DirectoryStatusSameRepo
	// DirectoryStatusDifferentRepo means the directory is a clone of some other remote.
	DirectoryStatusDifferentRepo
	// DirectoryStatusConflict means the directory holds non-git content.
	DirectoryStatusConflict
	DirectoryStatusError
)

func (ds DirectoryStatus) String() string {
	switch ds {
	case DirectoryStatusEmpty:
		return "empty or doesn't exist"
	case DirectoryStatusSameRepo:
		return "same git repository"
	case DirectoryStatusDifferentRepo:
		return "different git repository"
	case DirectoryStatusConflict:
		return "contains non-git content"
	case DirectoryStatusError:
		return "validation error"
	default:
		return "unknown status"
	}
}

// SyncResult reports what Sync did.
type SyncResult int

const (
	SyncCloned SyncResult = iota
	SyncUpdated
	SyncUpToDate
	// SyncSkippedDirty means local edits were found and left untouched.
	SyncSkippedDirty
)

func (r SyncResult) String() string {
	switch r {
	case SyncCloned:
		return "cloned"
	case SyncUpdated:
		return "updated"
	case SyncUpToDate:
		return "already up to date"
	case SyncSkippedDirty:
		return "skipped (uncommitted local changes)"
	default:
		return "unknown"
	}
}

// GitSource keeps a resources tree in sync with a git remote.
//
// Sync never overwrites content it does not own: a directory holding another repository or
// plain files is reported as a conflict, and a clone with local edits is left as is.
// Public access is tried first; the stored token is used only when the remote refuses.
type GitSource struct {
	RemoteURL string
	// Branch to track. Empty tracks the branch currently checked out (the remote's
	// default branch after a fresh clone).
	Branch      string
	Path        string
	Credentials TokenProvider
	Logger      *logging.AppLogger
}

func NewGitSource(remoteURL, branch, path string, credentials TokenProvider, logger *logging.AppLogger) *GitSource {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &GitSource{
		RemoteURL:   remoteURL,
		Branch:      branch,
		Path:        path,
		Credentials: credentials,
		Logger:      logger,
	}
}

// Sync clones the remote into Path when Path is empty, or fetches and moves the tracked
// branch to the remote tip when Path already holds the same repository.
func (gs *GitSource) Sync(ctx context.Context) (SyncResult, error) {
	if err := gs.validateInputs(); err != nil {
		return 0, err
	}

	remoteURL, err := normalizeRemoteURL(gs.RemoteURL)
	if err != nil {
		return 0, fmt.Errorf("invalid remote URL: %w", err)
	}

	localPath, err := gs.localPath()
	if err != nil {
		return 0, err
	}

	gs.Logger.Info("Syncing resources", "remote", remoteURL, "branch", gs.Branch, "path", localPath)

	status, err := CheckDirectory(localPath, remoteURL)
	switch status {
	case DirectoryStatusEmpty:
	case DirectoryStatusSameRepo:
	case DirectoryStatusConflict, DirectoryStatusDifferentRepo:
		return 0, fmt.Errorf("directory conflict at %s (%s): remove or relocate it, or point resources_dir elsewhere: %w",
			localPath, status, err)
	default:
		return 0, err
	}

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	if status == DirectoryStatusEmpty {
		err := gs.withAuth(func(auth *http.BasicAuth) error {
			return gs.clone(localPath, remoteURL, auth)
		}, translateCloneError)
		if err != nil {
			return 0, err
		}
		return SyncCloned, nil
	}

	var result SyncResult
	err = gs.withAuth(func(auth *http.BasicAuth) error {
		var fetchErr error
		result, fetchErr = gs.fetch(localPath, auth)
		return fetchErr
	}, translateFetchError)
	if err != nil {
		return 0, err
	}
	return result, nil
}

func (gs *GitSource) validateInputs() error {
	if strings.TrimSpace(gs.RemoteURL) == "" {
		return fmt.Errorf("remote URL cannot be empty - set source.remote_url")
	}
	if strings.TrimSpace(gs.Path) == "" {
		return fmt.Errorf("local path cannot be empty")
	}
	return nil
}

// localPath resolves Path against the working directory, the same way resources_dir is
// resolved for serving, so relative paths such as ../shared/resources are accepted.
func (gs *GitSource) localPath() (string, error) {
	abs, err := filepath.Abs(fileops.ExpandPath(gs.Path))
	if err != nil {
		return "", fmt.Errorf("cannot resolve absolute path: %w", err)
	}
	if err := fileops.ValidatePathSecurity(abs); err != nil {
		return "", fmt.Errorf("invalid local path: %w", err)
	}
	return abs, nil
}

// withAuth runs op without credentials first and retries once with the stored token when
// the failure looks like an authentication error.
func (gs *GitSource) withAuth(op func(auth *http.BasicAuth) error, translate func(error, string) error) error {
	err := op(nil)
	if err == nil {
		return nil
	}
	if !isAuthenticationError(err) {
		return translate(err, gs.RemoteURL)
	}

	gs.Logger.Debug("Public access refused, retrying with stored token")
	if gs.Credentials == nil || !gs.Credentials.HasToken() {
		return fmt.Errorf("GitHub authentication required - store a personal access token with `rnstd auth set`")
	}
	token, err := gs.Credentials.Token()
	if err != nil {
		return fmt.Errorf("GitHub authentication failed: %w", err)
	}

	if err := op(&http.BasicAuth{Username: "token", Password: token}); err != nil {
		return translate(err, gs.RemoteURL)
	}
	return nil
}

func (gs *GitSource) clone(localPath, remoteURL string, auth *http.BasicAuth) error {
	gs.Logger.Info("Cloning repository", "remote", remoteURL, "path", localPath)

	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	opts := &git.CloneOptions{URL: remoteURL}
	if auth != nil {
		opts.Auth = auth
	}
	if gs.Branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(gs.Branch)
		opts.SingleBranch = true
	}

	if _, err := git.PlainClone(localPath, opts); err != nil {
		// A failed clone can leave a partial .git behind; the next attempt must see an
		// empty directory again.
		cleanupPartialClone(localPath)
		return err
	}

	gs.Logger.Info("Repository cloned", "path", localPath)
	return nil
}

func (gs *GitSource) fetch(localPath string, auth *http.BasicAuth) (SyncResult, error) {
	repo, err := git.PlainOpen(localPath)
	if err != nil {
		return 0, fmt.Errorf("failed to open existing repository: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return 0, fmt.Errorf("failed to get working tree: %w", err)
	}

	status, err := worktree.Status()
	if err != nil {
		return 0, fmt.Errorf("failed to get working tree status: %w", err)
	}
	if !status.IsClean() {
		gs.Logger.Warn("Working tree has uncommitted changes, skipping sync", "path", localPath)
		return SyncSkippedDirty, nil
	}

	remote, err := repo.Remote("origin")
	if err != nil {
		return 0, fmt.Errorf("failed to get origin remote: %w", err)
	}

	opts := &git.FetchOptions{RemoteName: "origin", Force: true}
	if auth != nil {
		opts.Auth = auth
	}
	if err := remote.Fetch(opts); err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return 0, err
	}

	branch := gs.Branch
	if branch == "" {
		head, err := repo.Head()
		if err != nil {
			return 0, fmt.Errorf("failed to resolve current branch: %w", err)
		}
		branch = head.Name().Short()
	}

	remoteRef, err := repo.Reference(plumbing.NewRemoteReferenceName("origin", branch), true)
	if err != nil {
		return 0, fmt.Errorf("branch '%s' does not exist on remote 'origin'", branch)
	}

	if err := gs.checkoutBranch(repo, worktree, branch, remoteRef.Hash()); err != nil {
		return 0, err
	}

	head, err := repo.Head()
	if err != nil {
		return 0, fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	if head.Hash() == remoteRef.Hash() {
		gs.Logger.Debug("Repository already up to date", "branch", branch)
		return SyncUpToDate, nil
	}

	if err := worktree.Reset(&git.ResetOptions{Commit: remoteRef.Hash(), Mode: git.HardReset}); err != nil {
		return 0, fmt.Errorf("failed to update branch %s: %w", branch, err)
	}

	gs.Logger.Info("Repository updated", "branch", branch, "commit", remoteRef.Hash().String())
	return SyncUpdated, nil
}

// checkoutBranch switches to branch, creating it at remoteHash when it only exists on origin.
func (gs *GitSource) checkoutBranch(repo *git.Repository, worktree *git.Worktree, branch string, remoteHash plumbing.Hash) error {
	head, err := repo.Head()
	if err != nil && !errors.Is(err, plumbing.ErrReferenceNotFound) {
		return fmt.Errorf("failed to get current branch: %w", err)
	}
	if head != nil && head.Name().Short() == branch {
		return nil
	}

	localRef := plumbing.NewBranchReferenceName(branch)
	_, err = repo.Reference(localRef, true)
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		gs.Logger.Debug("Creating local branch", "branch", branch)
		if err := repo.Storer.SetReference(plumbing.NewHashReference(localRef, remoteHash)); err != nil {
			return fmt.Errorf("failed to create local branch: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("failed to get local branch reference: %w", err)
	}

	if err := worktree.Checkout(&git.CheckoutOptions{Branch: localRef}); err != nil {
		return fmt.Errorf("failed to checkout branch: %w", err)
	}
	gs.Logger.Info("Checked out branch", "branch", branch)
	return nil
}

// CheckDirectory classifies path against remoteURL. The returned error explains every
// status other than Empty and SameRepo.
func CheckDirectory(path, remoteURL string) (DirectoryStatus, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return DirectoryStatusEmpty, nil
	}
	if err != nil {
		return DirectoryStatusError, fmt.Errorf("cannot access directory %s: %w", path, err)
	}
	if !info.IsDir() {
		return DirectoryStatusError, fmt.Errorf("path exists but is not a directory: %s", path)
	}

	empty, err := isDirEmpty(path)
	if err != nil {
		return DirectoryStatusError, fmt.Errorf("cannot check if directory is empty: %w", err)
	}
	if empty {
		return DirectoryStatusEmpty, nil
	}

	current, err := originURL(path)
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return DirectoryStatusConflict, fmt.Errorf("directory contains non-git content: %s", path)
		}
		return DirectoryStatusError, fmt.Errorf("cannot get current git remote URL: %w", err)
	}

	if normalizeGitURL(current) == normalizeGitURL(remoteURL) {
		return DirectoryStatusSameRepo, nil
	}
	return DirectoryStatusDifferentRepo, fmt.Errorf("directory contains different git repository (current: %s, expected: %s)", current, remoteURL)
}

// IsDirty reports whether the repository at path has uncommitted changes.
func IsDirty(path string) (bool, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return false, fmt.Errorf("failed to open repository: %w", err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("failed to get working tree: %w", err)
	}
	status, err := worktree.Status()
	if err != nil {
		return false, fmt.Errorf("failed to get repository status: %w", err)
	}
	return !status.IsClean(), nil
}

func originURL(path string) (string, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return "", err
		}
		return "", fmt.Errorf("cannot open git repository: %w", err)
	}

	remote, err := repo.Remote("origin")
	if err != nil {
		return "", fmt.Errorf("cannot get origin remote: %w", err)
	}

	cfg := remote.Config()
	if cfg == nil || len(cfg.URLs) == 0 {
		return "", fmt.Errorf("no URLs configured for origin remote")
	}
	return cfg.URLs[0], nil
}

func isDirEmpty(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	_, err = f.Readdirnames(1)
	if errors.Is(err, io.EOF) {
		return true, nil
	}
	return false, err
}

func cleanupPartialClone(path string) {
	if empty, err := isDirEmpty(path); err == nil && !empty {
		_ = os.RemoveAll(filepath.Join(path, ".git"))
	}
}

// GitURLInfo holds the parts of a hosted repository URL.
type GitURLInfo struct {
	Host  string
	Owner string
	Repo  string
}

var (
	sshURLPattern   = regexp.MustCompile(`^git@([^:]+):([^/]+)/(.+?)(?:\.git)?$`)
	sshPrefixRegexp = regexp.MustCompile(`^git@([^:]+):(.+)$`)
)

// ParseGitURL parses SSH (git@host:owner/repo.git) and HTTPS (https://host/owner/repo.git)
// repository URLs.
func ParseGitURL(gitURL string) (GitURLInfo, error) {
	gitURL = strings.TrimSpace(gitURL)

	if m := sshURLPattern.FindStringSubmatch(gitURL); m != nil {
		return GitURLInfo{Host: m[1], Owner: m[2], Repo: m[3]}, nil
	}

	parsed, err := url.Parse(gitURL)
	if err != nil {
		return GitURLInfo{}, fmt.Errorf("invalid URL format: %w", err)
	}
	if parsed.Host == "" {
		return GitURLInfo{}, fmt.Errorf("URL missing host component")
	}

	parts := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(parts) < 2 {
		return GitURLInfo{}, fmt.Errorf("URL path should contain owner/repo: %s", parsed.Path)
	}
	owner := parts[0]
	repo := strings.TrimSuffix(parts[1], ".git")
	if owner == "" || repo == "" {
		return GitURLInfo{}, fmt.Errorf("could not extract owner/repo from URL path: %s", parsed.Path)
	}

	return GitURLInfo{Host: parsed.Host, Owner: owner, Repo: repo}, nil
}

// isLocalURL reports whether gitURL points at a repository on this machine.
func isLocalURL(gitURL string) bool {
	return strings.HasPrefix(gitURL, "file://") || filepath.IsAbs(gitURL)
}

// normalizeRemoteURL turns hosted URLs into https://host/owner/repo.git. Local paths are
// kept as given.
func normalizeRemoteURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if isLocalURL(raw) {
		return raw, nil
	}
	info, err := ParseGitURL(raw)
	if err != nil {
		return "", fmt.Errorf("invalid Git URL format: %w", err)
	}
	return fmt.Sprintf("https://%s/%s/%s.git", info.Host, info.Owner, info.Repo), nil
}

// normalizeGitURL reduces a URL to a comparable key so SSH and HTTPS forms of one
// repository compare equal.
func normalizeGitURL(gitURL string) string {
	gitURL = strings.TrimSpace(gitURL)
	if isLocalURL(gitURL) {
		return filepath.Clean(strings.TrimPrefix(gitURL, "file://"))
	}
	gitURL = strings.TrimSuffix(gitURL, ".git")

	if m := sshPrefixRegexp.FindStringSubmatch(gitURL); m != nil {
		return m[1] + "/" + m[2]
	}
	if after, found := strings.CutPrefix(gitURL, "https://"); found {
		return after
	}
	if after, found := strings.CutPrefix(gitURL, "http://"); found {
		return after
	}
	return gitURL
}

func isAuthenticationError(err error) bool {
	return err != nil && containsAuthErrorPatterns(err.Error())
}

func containsAuthErrorPatterns(msg string) bool {
	msg = strings.ToLower(msg)
	for _, pattern := range []string{"authentication required", "401", "unauthorized", "403", "forbidden"} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

func isNetworkError(msg string) bool {
	return strings.Contains(msg, "network") || strings.Contains(msg, "connection") || strings.Contains(msg, "timeout")
}

func translateCloneError(err error, remoteURL string) error {
	msg := strings.ToLower(err.Error())

	if containsAuthErrorPatterns(msg) {
		if strings.Contains(msg, "403") || strings.Contains(msg, "forbidden") {
			return fmt.Errorf("GitHub token lacks required permissions - ensure 'repo' scope is enabled")
		}
		return fmt.Errorf("GitHub authentication failed - update the token with `rnstd auth set`")
	}
	if strings.Contains(msg, "404") || strings.Contains(msg, "not found") {
		return fmt.Errorf("repository not found - check the URL or ensure you have access: %s", remoteURL)
	}
	if isNetworkError(msg) {
		return fmt.Errorf("network error during clone - check your internet connection and try again: %w", err)
	}
	return fmt.Errorf("failed to clone repository: %w", err)
}

func translateFetchError(err error, _ string) error {
	msg := strings.ToLower(err.Error())

	if containsAuthErrorPatterns(msg) {
		return fmt.Errorf("GitHub token has expired or is invalid - update it with `rnstd auth set`")
	}
	if isNetworkError(msg) {
		return fmt.Errorf("network error during fetch - the local copy is unchanged: %w", err)
	}
	return fmt.Errorf("failed to fetch repository updates: %w", err)
}

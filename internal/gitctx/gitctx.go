package gitctx

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrNotRepository is returned when dir is not inside a git work tree.
var ErrNotRepository = errors.New("not a git repository")

// RepoMeta contains git repository metadata.
type RepoMeta struct {
	Root   string
	Head   string
	Branch string
}

// GetRepoMeta collects repository metadata for dir. Outside a repository it
// returns empty metadata and ErrNotRepository.
func GetRepoMeta(ctx context.Context, dir string) (RepoMeta, error) {
	root, err := gitOutput(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return RepoMeta{}, fmt.Errorf("%w: %v", ErrNotRepository, err)
	}
	head, err := gitOutput(ctx, dir, "rev-parse", "HEAD")
	if err != nil {
		head = "" // new repo with no commits
	}
	branch, err := gitOutput(ctx, dir, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		branch = ""
	}
	return RepoMeta{
		Root:   strings.TrimSpace(root),
		Head:   strings.TrimSpace(head),
		Branch: strings.TrimSpace(branch),
	}, nil
}

// CommitFile stages path and commits it with message. It reports false
// without error when the file has no staged changes.
func CommitFile(ctx context.Context, dir, path, message string) (bool, error) {
	if _, err := gitOutput(ctx, dir, "add", "--", path); err != nil {
		return false, fmt.Errorf("git add %s: %w", path, err)
	}

	// diff --quiet exits 1 when there are staged changes for path.
	_, err := gitOutput(ctx, dir, "diff", "--cached", "--quiet", "--", path)
	if err == nil {
		return false, nil
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) || exitErr.ExitCode() != 1 {
		return false, fmt.Errorf("git diff --cached: %w", err)
	}

	if _, err := gitOutput(ctx, dir, "commit", "-m", message, "--", path); err != nil {
		return false, fmt.Errorf("git commit: %w", err)
	}
	return true, nil
}

// Available reports whether a git binary can be found on PATH.
func Available() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

type gitError struct {
	err    error
	stderr string
}

func (e *gitError) Error() string {
	return fmt.Sprintf("%s: %s", e.err, strings.TrimSpace(e.stderr))
}

func (e *gitError) Unwrap() error { return e.err }

func gitOutput(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return string(out), &gitError{err: err, stderr: string(exitErr.Stderr)}
		}
		return "", err
	}
	return string(out), nil
}

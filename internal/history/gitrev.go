package history

import (
	git "github.com/go-git/go-git/v5"
)

// HeadCommit returns the project's current HEAD hash, or "" when the
// directory is not inside a git checkout or HEAD cannot be resolved.
// Best-effort only; the run record just gets an empty commit field.
func HeadCommit(dir string) string {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return ""
	}
	head, err := repo.Head()
	if err != nil {
		return ""
	}
	return head.Hash().String()
}

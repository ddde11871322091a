package profile

import (
	"sort"

	"github.com/go-git/go-git/v5"

	"github.com/Adolar0042/warden/internal/wardenerr"
)

// DiscoverRemote opens the repository at repoDir (or its parents, like
// `git` itself) and returns the URL of its "origin" remote, falling back
// to the first remote in name order if "origin" is absent, per
// spec.md §4.8. Grounded on go-git usage in
// catalyst-forge-libs/git and muhammadbassiony-Rulem/internal/repository/git.go
// (git.PlainOpen, Repo.Remote("origin"), remote.Config()) rather than
// shelling out to `git remote get-url`.
func DiscoverRemote(repoDir string) (string, error) {
	repo, err := git.PlainOpenWithOptions(repoDir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", wardenerr.Wrap(wardenerr.RepoDetectionFailed, "open repository", err)
	}

	if remote, err := repo.Remote("origin"); err == nil {
		if urls := remote.Config().URLs; len(urls) > 0 {
			return urls[0], nil
		}
	}

	remotes, err := repo.Remotes()
	if err != nil {
		return "", wardenerr.Wrap(wardenerr.RepoDetectionFailed, "list remotes", err)
	}
	if len(remotes) == 0 {
		return "", wardenerr.New(wardenerr.RepoDetectionFailed, "repository has no remotes")
	}
	sort.Slice(remotes, func(i, j int) bool {
		return remotes[i].Config().Name < remotes[j].Config().Name
	})
	urls := remotes[0].Config().URLs
	if len(urls) == 0 {
		return "", wardenerr.New(wardenerr.RepoDetectionFailed, "remote has no URLs")
	}
	return urls[0], nil
}

package git

import (
	"context"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-deploy/fs"
	fsb "github.com/input-output-hk/catalyst-forge-deploy/fs/billy"
)

// testRepo is a helper struct that contains a test repository and its filesystem
type testRepo struct {
	repo *Repo
	fs   fs.Filesystem
	ctx  context.Context
}

// setupTestRepo creates a new test repository with an in-memory filesystem
func setupTestRepo(t *testing.T) *testRepo {
	t.Helper()

	ctx := context.Background()
	memFS := fsb.NewInMemoryFS()

	repo, err := Init(ctx, &Options{FS: memFS, Workdir: "."})
	require.NoError(t, err, "failed to initialize test repository")

	return &testRepo{repo: repo, fs: memFS, ctx: ctx}
}

// setupTestRepoWithCommit creates a test repository with an initial commit
func setupTestRepoWithCommit(t *testing.T) *testRepo {
	t.Helper()

	tr := setupTestRepo(t)
	tr.commit(t, "test.txt", "initial content")
	return tr
}

// commit writes content to name and commits it, returning the commit hash.
func (tr *testRepo) commit(t *testing.T, name, content string) plumbing.Hash {
	t.Helper()

	require.NoError(t, tr.fs.WriteFile(name, []byte(content), 0o644))

	wt, err := tr.repo.repo.Worktree()
	require.NoError(t, err, "failed to get worktree")

	_, err = wt.Add(name)
	require.NoError(t, err, "failed to add %s", name)

	hash, err := wt.Commit("update "+name, &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err, "failed to commit")
	return hash
}

// checkout moves HEAD to a new branch, or detaches it at hash when branch
// is empty.
func (tr *testRepo) checkout(t *testing.T, branch string, hash plumbing.Hash) {
	t.Helper()

	wt, err := tr.repo.repo.Worktree()
	require.NoError(t, err)

	opts := &git.CheckoutOptions{Hash: hash}
	if branch != "" {
		opts = &git.CheckoutOptions{Branch: plumbing.NewBranchReferenceName(branch), Hash: hash, Create: true}
	}
	require.NoError(t, wt.Checkout(opts))
}

// addRemote configures a remote with a single URL.
func (tr *testRepo) addRemote(t *testing.T, name, url string) {
	t.Helper()

	_, err := tr.repo.repo.CreateRemote(&config.RemoteConfig{Name: name, URLs: []string{url}})
	require.NoError(t, err, "failed to create remote")
}

// tag tags HEAD. A non-empty message makes an annotated tag.
func (tr *testRepo) tag(t *testing.T, name, message string) {
	t.Helper()

	head, err := tr.repo.repo.Head()
	require.NoError(t, err)

	if message == "" {
		ref := plumbing.NewHashReference(plumbing.NewTagReferenceName(name), head.Hash())
		require.NoError(t, tr.repo.repo.Storer.SetReference(ref))
		return
	}
	_, err = tr.repo.repo.CreateTag(name, head.Hash(), &git.CreateTagOptions{
		Tagger:  &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
		Message: message,
	})
	require.NoError(t, err)
}

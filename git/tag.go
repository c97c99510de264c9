package git

import (
	"context"
	"errors"
	"path"
	"slices"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
)

// TagFilter is a predicate function for filtering tags.
// It returns true if the tag should be included in the results.
type TagFilter func(name string, ref *plumbing.Reference) bool

// Tags returns the sorted names of tags passing every filter. With no
// filters all tags are returned.
func (r *Repo) Tags(ctx context.Context, filters ...TagFilter) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, WrapError(err, "context cancelled")
	}

	refs, err := r.repo.Tags()
	if err != nil {
		return nil, WrapError(err, "failed to get tag references")
	}

	tags := []string{}
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().Short()
		if shouldIncludeTag(name, ref, filters) {
			tags = append(tags, name)
		}
		return nil
	})
	if err != nil {
		return nil, WrapError(err, "failed to iterate tags")
	}

	slices.Sort(tags)
	return tags, nil
}

// ListTags lists every tag when ref is empty, otherwise the tags pointing
// at the commit ref resolves to, like "git tag --points-at".
func (r *Repo) ListTags(ctx context.Context, ref string) ([]string, error) {
	if ref == "" {
		return r.Tags(ctx)
	}

	resolved, err := r.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	return r.Tags(ctx, r.PointsAtFilter(plumbing.NewHash(resolved.Hash)))
}

func shouldIncludeTag(name string, ref *plumbing.Reference, filters []TagFilter) bool {
	for _, filter := range filters {
		if filter != nil && !filter(name, ref) {
			return false
		}
	}
	return true
}

// PointsAtFilter returns a filter matching tags whose commit is hash.
// Annotated tags are peeled to the commit they tag.
func (r *Repo) PointsAtFilter(hash plumbing.Hash) TagFilter {
	return func(_ string, ref *plumbing.Reference) bool {
		target, err := r.peel(ref)
		return err == nil && target == hash
	}
}

func (r *Repo) peel(ref *plumbing.Reference) (plumbing.Hash, error) {
	tag, err := r.repo.TagObject(ref.Hash())
	switch {
	case err == nil:
		commit, err := tag.Commit()
		if err != nil {
			return plumbing.ZeroHash, err
		}
		return commit.Hash, nil
	case errors.Is(err, plumbing.ErrObjectNotFound):
		return ref.Hash(), nil
	default:
		return plumbing.ZeroHash, err
	}
}

// TagPatternFilter returns a filter that matches tags against a glob
// pattern. For example: "v1.*" matches "v1.0", "v1.1", etc.
func TagPatternFilter(pattern string) TagFilter {
	return func(name string, _ *plumbing.Reference) bool {
		if pattern == "" {
			return true
		}
		ok, err := path.Match(pattern, name)
		return err == nil && ok
	}
}

// TagPrefixFilter returns a filter that matches tags with the given prefix.
func TagPrefixFilter(prefix string) TagFilter {
	return func(name string, _ *plumbing.Reference) bool {
		return strings.HasPrefix(name, prefix)
	}
}

// TagExcludeFilter returns a filter that excludes tags matching the given
// pattern. For example: TagExcludeFilter("*-rc*") drops release candidates.
func TagExcludeFilter(pattern string) TagFilter {
	include := TagPatternFilter(pattern)
	return func(name string, ref *plumbing.Reference) bool {
		return !include(name, ref)
	}
}

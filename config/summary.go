package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/input-output-hk/catalyst-forge-deploy/deploy"
)

// WriteSummary prints what is about to be deployed and where.
func (r *Resolved) WriteSummary(w io.Writer) error {
	tag := value(r.Settings.Tag)
	if r.TagsAtHead {
		tag = "(tags at HEAD)"
	}

	var b strings.Builder
	b.WriteString("g-deploy: Deploying from...\n")
	fmt.Fprintf(&b, "  dir: %s\n", r.Deploy.SourceDir)
	b.WriteString("to...\n")
	fmt.Fprintf(&b, "  bucket: %s\n", r.Deploy.Bucket)
	fmt.Fprintf(&b, "  url base: %s\n", r.Deploy.URLBase)
	fmt.Fprintf(&b, "  project: %s\n", r.Deploy.Project)
	fmt.Fprintf(&b, "  branch: %s\n", value(r.Settings.Branch))
	fmt.Fprintf(&b, "  tag: %s\n", tag)
	fmt.Fprintf(&b, "  cache assets: %t\n", r.Deploy.CacheAssets)
	if path := r.Deploy.OverridePath(); path != "" {
		fmt.Fprintf(&b, "  path (BE CAREFUL): %s\n", path)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// BranchURL returns the URL the branch is deployed to.
func (r *Resolved) BranchURL() (string, error) {
	return r.url(0, "branch")
}

// TagURL returns the URL of the first tag target.
func (r *Resolved) TagURL() (string, error) {
	return r.url(1, "tag")
}

func (r *Resolved) url(i int, what string) (string, error) {
	cfg := r.Deploy
	urls := deploy.URLs(&cfg)
	if i >= len(urls) {
		return "", invalid(fmt.Sprintf("no %s target to build a URL for", what))
	}
	return urls[i], nil
}

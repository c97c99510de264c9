package deploy

import (
	"fmt"
	"strings"
)

// Endpoints resolves the public endpoint a bucket is served from.
type Endpoints struct {
	// CustomDomains maps a bucket name to the base URL it is served from,
	// e.g. "https://ig.ft.com". Listed buckets ignore region and ACL.
	CustomDomains map[string]string
}

// Resolve returns the endpoint for bucket without a trailing slash. A
// custom domain wins; otherwise public-read buckets use the S3 website
// endpoint and private ones the regional object endpoint.
func (e Endpoints) Resolve(bucket, region string, publicRead bool) string {
	if domain, ok := e.CustomDomains[bucket]; ok && domain != "" {
		return strings.TrimRight(domain, "/")
	}
	if publicRead {
		return fmt.Sprintf("http://%s.s3-website-%s.amazonaws.com", bucket, region)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
}

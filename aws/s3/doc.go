// Package s3 writes objects to Amazon S3 through AWS SDK v2.
//
// The client loads credentials from the default AWS credential chain unless
// WithCredentials or WithAWSConfig is given, and exposes a single Put
// operation whose headers are controlled with UploadOption values. Errors are
// returned as *errors.Error values carrying the bucket and key, wrapping one
// of the package sentinels where the S3 error code is recognised.
//
// Example usage:
//
//	client, err := s3.New(ctx, s3.WithRegion("eu-west-1"))
//	if err != nil {
//	    return err
//	}
//
//	_, err = client.Put(ctx, "my-bucket", "site/index.html", data,
//	    s3.WithContentType("text/html; charset=utf-8"),
//	    s3.WithCacheControl("max-age=60"),
//	)
package s3

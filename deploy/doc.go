// Package deploy publishes a built static-site directory to an S3 bucket
// under versioned keys and reports the URLs the deployment resolves to.
//
// A Deployer enumerates the source directory once, then uploads every file
// for each target in turn. Targets are processed strictly in order; the
// files of one target are uploaded concurrently and the batch settles before
// the next target starts. The first failed upload aborts the run, and
// objects already written are left in place.
//
// Keys follow two rules. With an override path every file is written to
// <path>/<file>. Otherwise files go to <urlBase>/<project>/<target>/<file>
// with empty segments left out. The same rules yield the base URLs
// returned by Deployer.URLs, which never touches the network.
//
// Example:
//
//	client, err := s3.New(ctx, s3.WithRegion(cfg.Region))
//	if err != nil {
//	    return err
//	}
//
//	d := deploy.New(cfg, deploy.NewS3Store(client),
//	    deploy.WithTagLister(repo),
//	    deploy.WithLogger(logger),
//	)
//	res, err := d.Execute(ctx)
package deploy

// Package s3 implements blobstore.Store on Amazon S3.
//
//	store, err := s3.New(ctx, "my-bucket", "runs/h2o/")
//	if err != nil { ... }
//	err = c.Archive(ctx, store, psio.UnitCCOEI)
//
// Uploads go through the SDK's multipart uploader with CRC32C checksums.
package s3

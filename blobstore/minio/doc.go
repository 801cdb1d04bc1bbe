// Package minio implements blobstore.Store on MinIO and other
// S3-compatible object stores.
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//		Creds: credentials.NewStaticV4(accessKey, secretKey, ""),
//	})
//	store := minio.NewStore(client, "archives", "h2o/")
package minio

package blob

import (
	"context"
	"fmt"
	"os"

	"hostelcore/internal/infra/blob/s3"
)

// Open selects a blob.Store implementation using environment variables.
//
//	HOSTELCORE_BLOB_DRIVER: fs|s3|memory (default fs)
//	HOSTELCORE_BLOB_FS_ROOT: directory root when driver=fs (default ./photodata)
//	(S3 specific variables documented in the s3 package)
func Open(ctx context.Context) (Store, error) {
	driver := os.Getenv("HOSTELCORE_BLOB_DRIVER")
	if driver == "" {
		driver = string(DriverFilesystem)
	}
	switch Driver(driver) {
	case DriverFilesystem:
		return NewFilesystem(os.Getenv("HOSTELCORE_BLOB_FS_ROOT"))
	case DriverS3:
		return s3.OpenFromEnv(ctx)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}

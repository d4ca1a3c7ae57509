package mirror

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// Sentinel errors for mirror operations.
var (
	ErrInvalidConfig     = errors.New("mirror: invalid configuration")
	ErrInvalidPath       = errors.New("mirror: invalid file path")
	ErrNotFound          = errors.New("mirror: object not found")
	ErrAccessDenied      = errors.New("mirror: access denied")
	ErrUploadFailed      = errors.New("mirror: upload failed")
	ErrDeleteFailed      = errors.New("mirror: delete failed")
	ErrListFailed        = errors.New("mirror: bucket listing failed")
	ErrBucketUnavailable = errors.New("mirror: bucket unavailable")
)

// wrapS3Error maps SDK failures onto package sentinels. The original error
// is flattened with %v so callers branch with errors.Is on the sentinels
// instead of digging through AWS types.
func wrapS3Error(err error, fallback error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return fmt.Errorf("%w: %v", ErrNotFound, err)
		case "AccessDenied", "Forbidden":
			return fmt.Errorf("%w: %v", ErrAccessDenied, err)
		}
	}

	var notFound *types.NoSuchKey
	if errors.As(err, &notFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	return fmt.Errorf("%w: %v", fallback, err)
}

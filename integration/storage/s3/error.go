package s3

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

var (
	// ErrInvalidConfig is returned when bucket or region is missing.
	ErrInvalidConfig = errors.New("s3: bucket and region are required")

	// ErrInvalidKey is returned for object keys containing path traversal.
	ErrInvalidKey = errors.New("s3: invalid object key")

	// ErrPresignerMissing is returned when a mock client was injected
	// without a matching presigner.
	ErrPresignerMissing = errors.New("s3: presigner not configured")

	// ErrBucketNotFound marks a missing bucket that could not be created.
	ErrBucketNotFound = errors.New("s3: bucket not found")

	// ErrAccessDenied marks credential or policy failures.
	ErrAccessDenied = errors.New("s3: access denied")

	// ErrServiceUnavailable marks throttling or outage responses.
	ErrServiceUnavailable = errors.New("s3: service unavailable")

	// ErrOperationTimeout marks a deadline hit during an S3 call.
	ErrOperationTimeout = errors.New("s3: operation timed out")

	// ErrOperationCanceled marks a canceled S3 call.
	ErrOperationCanceled = errors.New("s3: operation canceled")
)

// classifyError converts SDK errors into package sentinels so callers can
// branch with errors.Is instead of matching AWS error codes.
func classifyError(err error, operation string) error {
	if err == nil {
		return nil
	}

	// Context errors first so cancellation is never misreported.
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", ErrOperationTimeout, operation)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %s", ErrOperationCanceled, operation)
	}

	var nsb *types.NoSuchBucket
	if errors.As(err, &nsb) {
		return fmt.Errorf("%w: %s", ErrBucketNotFound, operation)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
			return fmt.Errorf("%w: %s", ErrAccessDenied, operation)
		case "SlowDown", "ServiceUnavailable":
			return fmt.Errorf("%w: %s", ErrServiceUnavailable, operation)
		case "RequestTimeout":
			return fmt.Errorf("%w: %s", ErrOperationTimeout, operation)
		case "NoSuchBucket":
			return fmt.Errorf("%w: %s", ErrBucketNotFound, operation)
		default:
			return fmt.Errorf("s3: %s failed (code: %s): %w", operation, apiErr.ErrorCode(), err)
		}
	}

	return fmt.Errorf("s3: %s failed: %w", operation, err)
}

// isBucketMissing reports whether err indicates the bucket does not exist
// (as opposed to being unreachable or forbidden).
func isBucketMissing(err error) bool {
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var nsb *types.NoSuchBucket
	if errors.As(err, &nsb) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchBucket":
			return true
		}
	}
	return false
}

package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Caller input errors
const (
	// ErrCodeEmptyAudio indicates the request carried no audio bytes.
	ErrCodeEmptyAudio ErrorCode = "EMPTY_AUDIO"
	// ErrCodePayloadTooLarge indicates the audio exceeds the accepted size.
	ErrCodePayloadTooLarge ErrorCode = "PAYLOAD_TOO_LARGE"
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Operator errors
const (
	// ErrCodeConfig indicates missing credentials or storage backends.
	ErrCodeConfig ErrorCode = "CONFIG_ERROR"
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Remote provider errors
const (
	// ErrCodeRemoteRejected indicates the provider returned a structured error.
	ErrCodeRemoteRejected ErrorCode = "REMOTE_REJECTED"
	// ErrCodeMalformedResponse indicates the provider broke its response contract.
	ErrCodeMalformedResponse ErrorCode = "MALFORMED_RESPONSE"
	// ErrCodeTimeout indicates a job or request did not finish in time.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeServiceUnavailable indicates a dependency is temporarily unavailable.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeStagingFailed indicates the audio could not be staged for file recognition.
	ErrCodeStagingFailed ErrorCode = "STAGING_FAILED"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeTimeout:            true,
	ErrCodeServiceUnavailable: true,
	ErrCodeStagingFailed:      true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}

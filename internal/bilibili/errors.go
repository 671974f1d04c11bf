package bilibili

import (
	"errors"
	"fmt"
)

const (
	operationErrorMessageTemplateConstant   = "%s operation failed"
	operationErrorWithCauseTemplateConstant = "%s operation failed: %s"
	responseDecodingErrorTemplateConstant   = "%s response decoding failed: %s"
	invalidInputErrorTemplateConstant       = "%s: %s"
	apiErrorTemplateConstant                = "api error code=%d, message=%s"
	httpStatusErrorTemplateConstant         = "HTTP %d %s"
	unknownAPIMessageConstant               = "unknown"
	sessionMissingMessageConstant           = "session credentials not configured"
	missingResponseCodeMessageConstant      = "response is missing the code field"
	missingFolderIdentifierMessageConstant  = "folder created but no identifier was returned"
)

// OperationName describes a named remote operation supported by the client.
type OperationName string

// Remote operation names.
const (
	ListOwnedFoldersOperationName OperationName = OperationName("ListOwnedFolders")
	FetchPageOperationName        OperationName = OperationName("FetchPage")
	CreateFolderOperationName     OperationName = OperationName("CreateFolder")
	MoveResourceOperationName     OperationName = OperationName("MoveResource")
)

var (
	// ErrSessionMissing indicates the client was constructed without usable credentials.
	ErrSessionMissing = errors.New(sessionMissingMessageConstant)
	// ErrMissingResponseCode indicates the response envelope carried no numeric code.
	ErrMissingResponseCode = errors.New(missingResponseCodeMessageConstant)
	// ErrMissingFolderIdentifier indicates a folder creation response without an id.
	ErrMissingFolderIdentifier = errors.New(missingFolderIdentifierMessageConstant)
)

// InvalidInputError surfaces validation issues for operation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// OperationError wraps failures of a remote operation.
type OperationError struct {
	Operation OperationName
	Cause     error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	if operationError.Cause == nil {
		return fmt.Sprintf(operationErrorMessageTemplateConstant, operationError.Operation)
	}
	return fmt.Sprintf(operationErrorWithCauseTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// ResponseDecodingError indicates JSON decoding failures.
type ResponseDecodingError struct {
	Operation OperationName
	Cause     error
}

// Error describes the decoding failure.
func (decodingError ResponseDecodingError) Error() string {
	return fmt.Sprintf(responseDecodingErrorTemplateConstant, decodingError.Operation, decodingError.Cause)
}

// Unwrap exposes the underlying JSON error.
func (decodingError ResponseDecodingError) Unwrap() error {
	return decodingError.Cause
}

// APIError reports a non-zero code in the response envelope.
type APIError struct {
	Code    int
	Message string
}

// Error describes the remote rejection.
func (apiError APIError) Error() string {
	message := apiError.Message
	if len(message) == 0 {
		message = unknownAPIMessageConstant
	}
	return fmt.Sprintf(apiErrorTemplateConstant, apiError.Code, message)
}

// HTTPStatusError reports a non-2xx HTTP status.
type HTTPStatusError struct {
	StatusCode int
	Status     string
}

// Error describes the HTTP failure.
func (statusError HTTPStatusError) Error() string {
	return fmt.Sprintf(httpStatusErrorTemplateConstant, statusError.StatusCode, statusError.Status)
}

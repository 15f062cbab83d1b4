package errors

import (
	"errors"
)

// As is a wrapper around errors.As for the package's Error type
func As(err error, target **Error) bool {
	return errors.As(err, target)
}

// Is reports whether err matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// GetCode extracts the code from an error. Plain errors report CodeInternal.
func GetCode(err error) Code {
	if err == nil {
		return CodeOK
	}

	var structured *Error
	if errors.As(err, &structured) {
		return structured.Code
	}

	return CodeInternal
}

// GetMessage extracts the user-facing message from an error
func GetMessage(err error) string {
	if err == nil {
		return ""
	}

	var structured *Error
	if errors.As(err, &structured) {
		return structured.Message
	}

	return err.Error()
}

// IsNotFound reports whether err carries CodeNotFound
func IsNotFound(err error) bool {
	return GetCode(err) == CodeNotFound
}

// IsInvalidArgument reports whether err carries CodeInvalidArgument
func IsInvalidArgument(err error) bool {
	return GetCode(err) == CodeInvalidArgument
}

// IsAlreadyExists reports whether err carries CodeAlreadyExists
func IsAlreadyExists(err error) bool {
	return GetCode(err) == CodeAlreadyExists
}

package shell

import (
	"errors"

	platformerrors "github.com/jmgilman/go/errors"
)

// Error codes reported by shell operations.
const (
	CodeNotFound      = platformerrors.CodeNotFound
	CodeInvalidInput  = platformerrors.CodeInvalidInput
	CodeCorrupt       platformerrors.ErrorCode = "CORRUPT"
	CodeTooLarge      platformerrors.ErrorCode = "TOO_LARGE"
	CodeWriteFailed   platformerrors.ErrorCode = "WRITE_FAILED"
	CodeInvalidTarget platformerrors.ErrorCode = "INVALID_TARGET"
)

var ErrUnrecognized = errors.New("unrecognized command")

func IsNotFound(err error) bool      { return platformerrors.GetCode(err) == CodeNotFound }
func IsCorrupt(err error) bool       { return platformerrors.GetCode(err) == CodeCorrupt }
func IsTooLarge(err error) bool      { return platformerrors.GetCode(err) == CodeTooLarge }
func IsWriteFailed(err error) bool   { return platformerrors.GetCode(err) == CodeWriteFailed }
func IsInvalidTarget(err error) bool { return platformerrors.GetCode(err) == CodeInvalidTarget }
func IsInvalidInput(err error) bool  { return platformerrors.GetCode(err) == CodeInvalidInput }

// describe renders an operation error as the single line shown to the user.
func describe(err error) string {
	var perr platformerrors.PlatformError
	if errors.As(err, &perr) {
		return perr.Message()
	}
	return err.Error()
}

func usageError(def *commandDef) error {
	return platformerrors.Newf(CodeInvalidInput, "Usage: %s", def.usage)
}

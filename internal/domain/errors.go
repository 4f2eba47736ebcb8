package domain

import "errors"

// Failure classes of the session layer. All of them are local to the
// command that triggered them and its issuing connection; none is fatal
// to the process.
var (
	ErrNotAuthorized   = errors.New("not authorized")
	ErrUserNotFound    = errors.New("user not found")
	ErrRoomNotFound    = errors.New("room not found")
	ErrMessageNotFound = errors.New("message not found")
	ErrTokenNotFound   = errors.New("token not found")
	ErrValidation      = errors.New("invalid payload")
)

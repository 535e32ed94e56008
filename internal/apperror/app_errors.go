package apperror

import "errors"

var (
	ErrUnknownGame      = errors.New("unknown game kind")
	ErrSessionCorrupted = errors.New("session snapshot is corrupted")
	ErrSessionNotFound  = errors.New("session not found")
	ErrMemberNotFound   = errors.New("membership not found")
	ErrDriveUnavailable = errors.New("drive is unavailable")
	ErrFolderNotFound   = errors.New("folder not found")
)

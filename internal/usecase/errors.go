package usecase

import "errors"

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrArchiveUnreadable = errors.New("archive unreadable")
)

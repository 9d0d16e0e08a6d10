package server

import "errors"

var (
	ErrFeedClosed       = errors.New("frame feed is closed")
	ErrFeedAlreadyBound = errors.New("frame feed is already listening")
)

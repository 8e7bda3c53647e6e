package mirror

import "errors"

var (
	ErrNoWriter        = errors.New("mirror.no_writer")
	ErrNoResponse      = errors.New("mirror.no_response_writer")
	ErrFlagWriteFailed = errors.New("mirror.flag_write_failed")
)

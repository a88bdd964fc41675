package user

import "errors"

var (
	ErrNotFound = errors.New("not found")
	ErrBadKey   = errors.New("bad record key")
)

func IsErrNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
func IsErrBadKey(err error) bool   { return errors.Is(err, ErrBadKey) }

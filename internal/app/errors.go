package app

import "errors"

// ErrRegistryClosed is returned by Get after Close.
var ErrRegistryClosed = errors.New("app: registry closed")

package http

import "errors"

var errMissingBearer = errors.New("missing bearer token")

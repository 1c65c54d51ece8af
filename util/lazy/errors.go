package lazy

import "errors"

var ErrClosed = errors.New("lazy: value closed")

package singleflight

import "errors"

// errPanicked is handed to every caller of a call whose function panicked.
var errPanicked = errors.New("singleflight: function panicked")

package ai

import "errors"

// ErrRecorderDisabled is returned when interaction history is requested but
// no repository is configured.
var ErrRecorderDisabled = errors.New("interaction history is disabled")

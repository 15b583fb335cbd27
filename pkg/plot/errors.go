package plot

import "errors"

// Validation failures abort the whole render: a misconfigured indicator
// must never produce a partial chart. Errors are wrapped with the
// offending indicator or theme name, test with errors.Is.
var (
	ErrUnknownIndicator   = errors.New("unknown indicator")
	ErrUnknownTheme       = errors.New("unknown theme")
	ErrUnknownRequest     = errors.New("indicator was never added")
	ErrMissingInputColumn = errors.New("missing input column")
	ErrInvalidParameter   = errors.New("invalid parameter")
)

package validation

import "errors"

var (
	ErrEmptySubmission = errors.New("either url or content is required")
	ErrAmbiguousSource = errors.New("url and content are mutually exclusive")
	ErrInvalidURL      = errors.New("url must be a valid http or https address")
	ErrTextTooLarge    = errors.New("content exceeds 1MB limit")
	ErrUnknownVariant  = errors.New("variant must be \"original\" or \"translated\"")
)

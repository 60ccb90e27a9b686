package template

import "errors"

// ErrTemplateUnavailable reports a template that could not be fetched.
var ErrTemplateUnavailable = errors.New("template unavailable")

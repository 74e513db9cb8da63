package notification

import (
	"errors"
	"regexp"
)

var (
	ErrFailedToSend     = errors.New("failed to send notification email")
	ErrInvalidConfig    = errors.New("invalid notification config")
	ErrInvalidRecipient = errors.New("invalid recipient email address")
	ErrEmptySubject     = errors.New("empty email subject")
	ErrEmptyBody        = errors.New("empty email body")
	ErrUnknownEvent     = errors.New("unknown notification event")
)

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

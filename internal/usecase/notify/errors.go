package notify

import "errors"

var (
	// ErrChannelDisabled is returned by Send on a disabled channel.
	ErrChannelDisabled = errors.New("channel is disabled")

	// ErrInvalidDigest is returned for a nil digest or one without URL or title.
	ErrInvalidDigest = errors.New("invalid digest data")
)

package hub

import "errors"

// ErrNotFound reports that the hub has no such artifact. Match with
// errors.Is.
var ErrNotFound = errors.New("hub: artifact not found")

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

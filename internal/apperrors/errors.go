package apperrors

import "fmt"

// ErrNotFound represents an error when a requested resource is not found.
type ErrNotFound struct {
	Resource string
	ID       interface{}
}

// Error implements the error interface.
func (e *ErrNotFound) Error() string {
	if e.ID != nil {
		return fmt.Sprintf("%s with ID %v not found", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is allows for error checking with errors.Is().
func (e *ErrNotFound) Is(target error) bool {
	_, ok := target.(*ErrNotFound)
	return ok
}

// NewNotFoundError creates a new ErrNotFound.
func NewNotFoundError(resource string, id interface{}) *ErrNotFound {
	return &ErrNotFound{
		Resource: resource,
		ID:       id,
	}
}

// NewItemNotFoundError creates a specific error for when an item is not known to the server.
func NewItemNotFoundError(itemID string) *ErrNotFound {
	return &ErrNotFound{
		Resource: "item",
		ID:       itemID,
	}
}

// ErrUnexpectedStatus is returned when the server answers with a status the
// endpoint does not document as success.
type ErrUnexpectedStatus struct {
	Endpoint   string
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *ErrUnexpectedStatus) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s returned status %d: %s", e.Endpoint, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s returned status %d", e.Endpoint, e.StatusCode)
}

// Is allows for error checking with errors.Is().
func (e *ErrUnexpectedStatus) Is(target error) bool {
	_, ok := target.(*ErrUnexpectedStatus)
	return ok
}

// ErrNoMediaSource is returned when a playback info response carries no
// usable media source.
type ErrNoMediaSource struct {
	ItemID        string
	MediaSourceID string
	ErrorCode     string
}

// Error implements the error interface.
func (e *ErrNoMediaSource) Error() string {
	switch {
	case e.ErrorCode != "":
		return fmt.Sprintf("no playable media source for item %s: server error %s", e.ItemID, e.ErrorCode)
	case e.MediaSourceID != "":
		return fmt.Sprintf("media source %s not found for item %s", e.MediaSourceID, e.ItemID)
	default:
		return fmt.Sprintf("no playable media source for item %s", e.ItemID)
	}
}

// Is allows for error checking with errors.Is().
func (e *ErrNoMediaSource) Is(target error) bool {
	_, ok := target.(*ErrNoMediaSource)
	return ok
}

// ErrNoNeighbor is returned when navigating to a previous or next episode
// that has not been resolved.
type ErrNoNeighbor struct {
	Direction string // "previous" or "next"
	ItemID    string
}

// Error implements the error interface.
func (e *ErrNoNeighbor) Error() string {
	return fmt.Sprintf("no %s episode for item %s", e.Direction, e.ItemID)
}

// Is allows for error checking with errors.Is().
func (e *ErrNoNeighbor) Is(target error) bool {
	_, ok := target.(*ErrNoNeighbor)
	return ok
}

package core

import "errors"

// Error codes for domain errors.
const (
	ErrCodeRoomNotFound     = "room_not_found"
	ErrCodeRoomFull         = "room_full"
	ErrCodeBadRequest       = "bad_request"
	ErrCodeStoreUnavailable = "store_unavailable"
)

var (
	// ErrRoomNotFound covers both "never existed" and "expired or destroyed";
	// readers cannot tell the difference.
	ErrRoomNotFound = errors.New("room not found")
	// ErrRoomFull means both participant slots are taken.
	ErrRoomFull = errors.New("room full")
	// ErrBadRequest covers malformed caller input.
	ErrBadRequest = errors.New("bad request")
)

// CodeOf maps a domain error to its wire-level error code. Anything that is
// not an expected user-facing outcome counts as a store failure; those must
// never collapse into room_not_found.
func CodeOf(err error) string {
	switch {
	case errors.Is(err, ErrRoomNotFound):
		return ErrCodeRoomNotFound
	case errors.Is(err, ErrRoomFull):
		return ErrCodeRoomFull
	case errors.Is(err, ErrBadRequest):
		return ErrCodeBadRequest
	default:
		return ErrCodeStoreUnavailable
	}
}

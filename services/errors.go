package services

import "errors"

// Error taxonomy shared by the REST and websocket transports. Handlers map
// these onto HTTP statuses or ack error codes; the services never touch the
// transport layer themselves.
var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrForbidden        = errors.New("forbidden")
	ErrNotFound         = errors.New("not found")
	ErrRequiresApproval = errors.New("requires approval")
)

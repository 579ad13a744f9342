package controllers

import "errors"

// Business-rule rejections surfaced at the operation boundary. None of
// these are retried; they map to 403/404/409/400 in the handlers.
var (
	ErrNoPermission     = errors.New("you do not have permission to perform this action")
	ErrTableOccupied    = errors.New("table is already occupied")
	ErrNoActiveSession  = errors.New("no active session for this table")
	ErrSessionNotActive = errors.New("session is not active")
	ErrItemUnavailable  = errors.New("menu item is not available")
	ErrInvalidStatus    = errors.New("invalid status value")
	ErrActiveSession    = errors.New("there is already an active session for this table")
)

package server

import "errors"

var (
	errBadPair       = errors.New("expected lat,lon")
	errBadCoordinate = errors.New("lat and lon must be decimal degrees")
	errOutOfRange    = errors.New("coordinate out of range")
)

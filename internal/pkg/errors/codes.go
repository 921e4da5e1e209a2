package errors

import "net/http"

var (
	ErrSummitNotFound = New(
		"SUMMIT_NOT_FOUND",
		"Summit not found",
		http.StatusNotFound,
	)

	ErrStoreUnavailable = New(
		"STORE_UNAVAILABLE",
		"Summit database is unavailable",
		http.StatusServiceUnavailable,
	)

	ErrDatasetNotFound = New(
		"DATASET_NOT_FOUND",
		"Summit dataset file is not published",
		http.StatusNotFound,
	)

	ErrRefreshFailed = New(
		"REFRESH_FAILED",
		"Failed to refresh summit database",
		http.StatusBadGateway,
	)

	ErrInvalidCoordinates = New(
		"INVALID_COORDINATES",
		"Invalid coordinates provided",
		http.StatusBadRequest,
	)

	ErrInvalidRadius = New(
		"INVALID_RADIUS",
		"Invalid radius value",
		http.StatusBadRequest,
	)

	ErrInvalidRequest = New(
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)

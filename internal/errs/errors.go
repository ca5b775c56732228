package errs

import (
	"errors"
	"net/http"
)

const (
	ErrStatusInternalServer = http.StatusInternalServerError
	ErrStatusClient         = http.StatusBadRequest
	ErrStatusNotFound       = http.StatusNotFound
	ErrStatusUnprocessable  = http.StatusUnprocessableEntity
	ErrBadGateway           = http.StatusBadGateway
	ErrServiceUnavailable   = http.StatusServiceUnavailable
)

var (
	ErrInternalServer  = errors.New("Internal server error")
	ErrClient          = errors.New("Bad request")
	ErrNotFound        = errors.New("Resource not found")
	ErrEmptyCart       = errors.New("Your cart is empty")
	ErrOutOfRange      = errors.New("Delivery is not available at this distance")
	ErrAddressNotFound = errors.New("Address not found. Please enter a more specific location.")
	ErrGeocoder        = errors.New("Error checking address location.")
	ErrNoAddress       = errors.New("Location found, but address unavailable. Please enter your address manually.")
	ErrGeocoderOffline = errors.New("Location lookup is temporarily unavailable")
	ErrInvalidLocation = errors.New("Invalid coordinates")
	ErrMissingDelivery = errors.New("Missing delivery details")
)

var errorMap = map[error]int{
	ErrInternalServer:  ErrStatusInternalServer,
	ErrClient:          ErrStatusClient,
	ErrNotFound:        ErrStatusNotFound,
	ErrEmptyCart:       ErrStatusClient,
	ErrOutOfRange:      ErrStatusUnprocessable,
	ErrAddressNotFound: ErrStatusUnprocessable,
	ErrGeocoder:        ErrBadGateway,
	ErrNoAddress:       ErrStatusUnprocessable,
	ErrGeocoderOffline: ErrServiceUnavailable,
	ErrInvalidLocation: ErrStatusClient,
	ErrMissingDelivery: ErrStatusClient,
}

// GetErrorStatusCode maps err (or any sentinel it wraps) to an HTTP status.
func GetErrorStatusCode(err error) int {
	for sentinel, code := range errorMap {
		if errors.Is(err, sentinel) {
			return code
		}
	}
	return errorMap[ErrInternalServer]
}

// Message returns the text of the sentinel err wraps, so wrapped details
// never reach the client.
func Message(err error) string {
	for sentinel := range errorMap {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return ErrInternalServer.Error()
}

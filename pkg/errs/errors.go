package errs

import (
	"errors"
	"net/http"

	"github.com/scrumdeck/room-sync/internal/domain"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")
)

func ToHTTP(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrRoomNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrVoteOptionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNotInRoom):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

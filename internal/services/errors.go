package services

import (
	"errors"

	apierrors "deliverydash/internal/errors"
)

// ErrViewNotFound is returned for view names other than company, couriers and restaurants
var ErrViewNotFound = errors.New("view not found")

func viewNotFound(name string) error {
	return apierrors.NewNotFoundError("view "+name, ErrViewNotFound).
		WithContext("view", name)
}

package usecase

import (
	"errors"

	"github.com/epl-data/xreflink/internal/domain/matching"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	// ErrEmptyTeamCatalog aborts a run before any snapshot is written.
	ErrEmptyTeamCatalog = matching.ErrEmptyTeamCatalog
)

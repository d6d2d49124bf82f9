package service

import (
	"database/sql"
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation errors are raised before the store is touched and all
	// wrap ErrValidation.
	ErrValidation         = errors.New("validation failed")
	ErrTournamentRequired = fmt.Errorf("%w: select a tournament first", ErrValidation)
	ErrTeamRequired       = fmt.Errorf("%w: select both teams", ErrValidation)
	ErrSameTeam           = fmt.Errorf("%w: a team cannot play itself", ErrValidation)
	ErrNameRequired       = fmt.Errorf("%w: name is required", ErrValidation)
	ErrInvalidDelta       = fmt.Errorf("%w: point adjustment must be +1 or -1", ErrValidation)
	ErrInvalidSide        = fmt.Errorf("%w: side must be team1 or team2", ErrValidation)
	ErrInvalidDateRange   = fmt.Errorf("%w: end date is before start date", ErrValidation)

	ErrConflict         = errors.New("conflict")
	ErrTeamNameConflict = fmt.Errorf("%w: team name is already in use", ErrConflict)
	ErrSlugConflict     = fmt.Errorf("%w: a tournament with this name already exists", ErrConflict)

	// Data-consistency anomalies: the operation is abandoned without writing.
	ErrMatchTeamsMissing = errors.New("match does not have both teams assigned")
	ErrIncompleteSets    = errors.New("match does not have three sets")
	ErrNotInTournament   = errors.New("team is not registered for this tournament")
	ErrPoolMismatch      = errors.New("pool belongs to another tournament")
)

// notFound maps sql.ErrNoRows to ErrNotFound, naming the missing entity.
func notFound(err error, entity string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", entity, ErrNotFound)
	}
	return err
}

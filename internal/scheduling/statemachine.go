package scheduling

import (
	"fleetHQ/internal/apperr"
	"fleetHQ/models"
)

var transitions = map[models.MissionStatus][]models.MissionStatus{
	models.MissionStatusDraft:      {models.MissionStatusScheduled, models.MissionStatusCancelled},
	models.MissionStatusScheduled:  {models.MissionStatusDraft, models.MissionStatusInProgress, models.MissionStatusCancelled},
	models.MissionStatusInProgress: {models.MissionStatusCompleted, models.MissionStatusAborted},
	models.MissionStatusCompleted:  nil,
	models.MissionStatusCancelled:  nil,
	models.MissionStatusAborted:    nil,
}

// CanTransition reports whether from -> to is allowed. Staying put always is.
func CanTransition(from, to models.MissionStatus) bool {
	if from == to {
		return from.Valid()
	}
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no transition leaves s.
func Terminal(s models.MissionStatus) bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}

type transition struct {
	from, to models.MissionStatus
}

// cascades is the drone status each mission transition imposes. Pairs not
// listed leave the drone alone.
var cascades = map[transition]models.DroneStatus{
	{models.MissionStatusDraft, models.MissionStatusInProgress}:     models.DroneStatusInMission,
	{models.MissionStatusScheduled, models.MissionStatusInProgress}: models.DroneStatusInMission,
	{models.MissionStatusCompleted, models.MissionStatusInProgress}: models.DroneStatusInMission,
	{models.MissionStatusCancelled, models.MissionStatusInProgress}: models.DroneStatusInMission,
	{models.MissionStatusAborted, models.MissionStatusInProgress}:   models.DroneStatusInMission,
	{models.MissionStatusInProgress, models.MissionStatusCompleted}: models.DroneStatusAvailable,
	{models.MissionStatusInProgress, models.MissionStatusAborted}:   models.DroneStatusAvailable,
}

// DroneCascade returns the drone status a mission transition imposes, or ""
// when the drone is left alone.
func DroneCascade(from, to models.MissionStatus) models.DroneStatus {
	return cascades[transition{from, to}]
}

// checkEdit applies the per-status edit restrictions to a patch.
func checkEdit(current models.MissionStatus, p MissionPatch) error {
	switch current {
	case models.MissionStatusCompleted:
		if p.Status == nil {
			return apperr.InvalidState("completed missions cannot be edited")
		}
		if p.FieldCount() > 1 {
			return apperr.InvalidState("only the status of a completed mission may be submitted")
		}
	case models.MissionStatusInProgress:
		if p.Status == nil || p.FieldCount() != 1 {
			return apperr.InvalidState("an in-progress mission accepts only a status change to completed or aborted")
		}
	}
	if p.Status != nil && !CanTransition(current, *p.Status) {
		if !p.Status.Valid() {
			return apperr.Validation("invalid mission status %q", *p.Status)
		}
		return apperr.InvalidState("cannot move mission from %s to %s", current, *p.Status)
	}
	return nil
}

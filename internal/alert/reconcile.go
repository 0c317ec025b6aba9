package alert

import "github.com/fekuna/omnipos-stock-service/internal/model"

type Action int

const (
	ActionNone Action = iota
	ActionCreate
	ActionResolve
)

func (a Action) String() string {
	switch a {
	case ActionCreate:
		return "create"
	case ActionResolve:
		return "resolve"
	}
	return "none"
}

// Decision is what reconciliation wants done to a product's alert rows.
// Note is set for resolutions.
type Decision struct {
	Action Action
	Note   string
}

// Decide maps the new stock level, the minimum and the currently active alert
// (nil when none) to a single action. It never asks for a second active alert
// and never touches resolved rows.
func Decide(active *model.LowStockAlert, newQuantity int, minStockLevel *int) Decision {
	if minStockLevel == nil || *minStockLevel <= 0 {
		if active != nil {
			return Decision{Action: ActionResolve, Note: model.AlertNoteMinimumRemoved}
		}
		return Decision{Action: ActionNone}
	}

	if newQuantity < *minStockLevel {
		if active == nil {
			return Decision{Action: ActionCreate}
		}
		return Decision{Action: ActionNone}
	}

	if active != nil {
		return Decision{Action: ActionResolve, Note: model.AlertNoteStockRestored}
	}
	return Decision{Action: ActionNone}
}

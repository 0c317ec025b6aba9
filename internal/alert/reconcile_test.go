package alert

import (
	"testing"

	"github.com/fekuna/omnipos-stock-service/internal/model"
	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestDecide(t *testing.T) {
	active := &model.LowStockAlert{ID: "a-1", Status: model.AlertStatusActive}

	cases := []struct {
		name     string
		active   *model.LowStockAlert
		quantity int
		min      *int
		want     Decision
	}{
		{"no minimum, active alert", active, 3, nil, Decision{ActionResolve, model.AlertNoteMinimumRemoved}},
		{"zero minimum, active alert", active, 3, intPtr(0), Decision{ActionResolve, model.AlertNoteMinimumRemoved}},
		{"negative minimum, active alert", active, 3, intPtr(-1), Decision{ActionResolve, model.AlertNoteMinimumRemoved}},
		{"no minimum, no alert", nil, 3, nil, Decision{Action: ActionNone}},
		{"zero minimum, no alert", nil, 0, intPtr(0), Decision{Action: ActionNone}},
		{"breach, no alert", nil, 9, intPtr(10), Decision{Action: ActionCreate}},
		{"breach at zero stock", nil, 0, intPtr(1), Decision{Action: ActionCreate}},
		{"breach, alert exists", active, 5, intPtr(10), Decision{Action: ActionNone}},
		{"restored to minimum", active, 10, intPtr(10), Decision{ActionResolve, model.AlertNoteStockRestored}},
		{"above minimum, alert", active, 20, intPtr(10), Decision{ActionResolve, model.AlertNoteStockRestored}},
		{"above minimum, no alert", nil, 10, intPtr(10), Decision{Action: ActionNone}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Decide(tc.active, tc.quantity, tc.min))
		})
	}
}

// Applying a decision and deciding again on the resulting state must be a no-op.
func TestDecideIsIdempotent(t *testing.T) {
	apply := func(active *model.LowStockAlert, d Decision) *model.LowStockAlert {
		switch d.Action {
		case ActionCreate:
			return &model.LowStockAlert{ID: "new", Status: model.AlertStatusActive}
		case ActionResolve:
			return nil
		}
		return active
	}

	inputs := []struct {
		active   *model.LowStockAlert
		quantity int
		min      *int
	}{
		{nil, 9, intPtr(10)},
		{&model.LowStockAlert{ID: "a"}, 10, intPtr(10)},
		{&model.LowStockAlert{ID: "a"}, 4, nil},
		{&model.LowStockAlert{ID: "a"}, 4, intPtr(10)},
		{nil, 40, intPtr(10)},
	}

	for _, in := range inputs {
		state := apply(in.active, Decide(in.active, in.quantity, in.min))
		second := Decide(state, in.quantity, in.min)
		assert.Equal(t, ActionNone, second.Action)
	}
}

func TestActionString(t *testing.T) {
	assert.Equal(t, "none", ActionNone.String())
	assert.Equal(t, "create", ActionCreate.String())
	assert.Equal(t, "resolve", ActionResolve.String())
}

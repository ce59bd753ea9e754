package repository

import (
	"fmt"

	"github.com/joseguilhermeromano/Pastel360/models"
)

// ItemUpdate pairs a persisted line with the patch to apply to it.
type ItemUpdate struct {
	Item  models.OrderItem
	Patch models.ItemPatch
}

// ReconcilePlan is the diff between an order's current lines and the desired
// set. It is executed updates first, then deletes, then inserts.
type ReconcilePlan struct {
	Updates []ItemUpdate
	Deletes []models.OrderItem
	Inserts []models.ItemSpec
}

// Reconcile diffs existing lines against desired entries. An existing line
// not named by any desired entry is deleted. Entries without an id become
// inserts in input order. Naming an id the order does not own is an error.
// When an id appears twice the last entry wins.
func Reconcile(existing []models.OrderItem, desired []models.ItemPatch) (ReconcilePlan, error) {
	var plan ReconcilePlan

	byID := make(map[uint]models.ItemPatch, len(desired))
	for _, d := range desired {
		if d.ID != nil {
			byID[*d.ID] = d
			continue
		}
		spec, ok := d.Spec()
		if !ok {
			return ReconcilePlan{}, ErrIncompleteOrderItem
		}
		plan.Inserts = append(plan.Inserts, spec)
	}

	owned := make(map[uint]struct{}, len(existing))
	for _, it := range existing {
		owned[it.ID] = struct{}{}
		if p, ok := byID[it.ID]; ok {
			plan.Updates = append(plan.Updates, ItemUpdate{Item: it, Patch: p})
		} else {
			plan.Deletes = append(plan.Deletes, it)
		}
	}

	for _, d := range desired {
		if d.ID == nil {
			continue
		}
		if _, ok := owned[*d.ID]; !ok {
			return ReconcilePlan{}, fmt.Errorf("%w: %d", ErrUnknownOrderItem, *d.ID)
		}
	}

	return plan, nil
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/joseguilhermeromano/Pastel360/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderRepository persists the order aggregate. Every mutation runs in one
// transaction and returns the hydrated order read back inside it.
type OrderRepository interface {
	Create(ctx context.Context, draft *models.OrderDraft) (*models.Order, error)
	Update(ctx context.Context, id uint, patch *models.OrderPatch) (*models.Order, error)
	FindByID(ctx context.Context, id uint) (*models.Order, error)
	FindAll(ctx context.Context) ([]models.Order, error)
	Delete(ctx context.Context, id uint) error
	ForceDelete(ctx context.Context, id uint) error
	Restore(ctx context.Context, id uint) (*models.Order, error)
	FindItem(ctx context.Context, id uint) (*models.OrderItem, error)
}

// GormOrderRepository implements OrderRepository using GORM.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository.
func NewGormOrderRepository(db *gorm.DB) OrderRepository {
	return &GormOrderRepository{db: db}
}

func unscoped(db *gorm.DB) *gorm.DB { return db.Unscoped() }

func byID(db *gorm.DB) *gorm.DB { return db.Order("id") }

// forUpdate row-locks the selected orders until the transaction ends, so
// concurrent writers on one order serialize.
func forUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

// hydrate preloads the customer and the live lines with their products.
// Soft-deleted customers and products still resolve so history stays readable.
func hydrate(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Customer", unscoped).
		Preload("Items", byID).
		Preload("Items.Product", unscoped)
}

func findHydrated(db *gorm.DB, id uint) (*models.Order, error) {
	var order models.Order
	if err := hydrate(db).First(&order, id).Error; err != nil {
		return nil, translate(err, ErrOrderNotFound)
	}
	return &order, nil
}

// recomputeTotal re-reads the live lines of the order and stores their sum.
func recomputeTotal(tx *gorm.DB, orderID uint) error {
	var items []models.OrderItem
	if err := tx.Where("order_id = ?", orderID).Find(&items).Error; err != nil {
		return err
	}
	return tx.Model(&models.Order{}).
		Where("id = ?", orderID).
		UpdateColumn("total_amount", models.SumLineTotals(items)).
		Error
}

func insertItems(tx *gorm.DB, orderID uint, specs []models.ItemSpec) error {
	for _, spec := range specs {
		item := models.NewOrderItem(orderID, spec)
		if err := tx.Omit(clause.Associations).Create(&item).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *GormOrderRepository) Create(ctx context.Context, draft *models.OrderDraft) (*models.Order, error) {
	var out *models.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order := models.Order{
			CustomerID: draft.CustomerID,
			Status:     draft.Status,
			Notes:      draft.Notes,
		}
		if order.Status == "" {
			order.Status = models.StatusPending
		}
		if err := tx.Omit(clause.Associations).Create(&order).Error; err != nil {
			return err
		}
		if err := insertItems(tx, order.ID, draft.Items); err != nil {
			return err
		}
		if err := recomputeTotal(tx, order.ID); err != nil {
			return err
		}

		var err error
		out, err = findHydrated(tx, order.ID)
		return err
	})
	if err != nil {
		return nil, wrapTx("create order", err)
	}
	return out, nil
}

func (r *GormOrderRepository) Update(ctx context.Context, id uint, patch *models.OrderPatch) (*models.Order, error) {
	var out *models.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := forUpdate(tx).Preload("Items", byID).First(&order, id).Error; err != nil {
			return translate(err, ErrOrderNotFound)
		}

		if cols := patch.Columns(); len(cols) > 0 {
			if err := tx.Model(&models.Order{}).Where("id = ?", id).Updates(cols).Error; err != nil {
				return err
			}
		}

		if patch.Items != nil {
			if err := applyItems(tx, &order, *patch.Items); err != nil {
				return err
			}
		}
		if err := recomputeTotal(tx, id); err != nil {
			return err
		}

		var err error
		out, err = findHydrated(tx, id)
		return err
	})
	if err != nil {
		return nil, wrapTx("update order", err)
	}
	return out, nil
}

func applyItems(tx *gorm.DB, order *models.Order, desired []models.ItemPatch) error {
	plan, err := Reconcile(order.Items, desired)
	if err != nil {
		return err
	}

	for _, u := range plan.Updates {
		item := u.Item
		cols := item.ApplyPatch(u.Patch)
		if len(cols) == 0 {
			continue
		}
		if err := tx.Model(&models.OrderItem{}).Where("id = ?", item.ID).Updates(cols).Error; err != nil {
			return err
		}
	}
	for _, d := range plan.Deletes {
		if err := tx.Delete(&models.OrderItem{}, d.ID).Error; err != nil {
			return err
		}
	}
	return insertItems(tx, order.ID, plan.Inserts)
}

func (r *GormOrderRepository) FindByID(ctx context.Context, id uint) (*models.Order, error) {
	return findHydrated(r.db.WithContext(ctx), id)
}

func (r *GormOrderRepository) FindAll(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := hydrate(r.db.WithContext(ctx)).Order("id").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Delete tombstones the order. Its lines are left untouched.
func (r *GormOrderRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Order{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// ForceDelete permanently removes the order and its lines, tombstoned or not.
func (r *GormOrderRepository) ForceDelete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := forUpdate(tx.Unscoped()).First(&order, id).Error; err != nil {
			return translate(err, ErrOrderNotFound)
		}
		if err := tx.Unscoped().Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&models.Order{}, id).Error
	})
	if err != nil {
		return wrapTx("force delete order", err)
	}
	return nil
}

// Restore clears the tombstone of a soft-deleted order.
func (r *GormOrderRepository) Restore(ctx context.Context, id uint) (*models.Order, error) {
	var out *models.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := forUpdate(tx.Unscoped()).First(&order, id).Error; err != nil {
			return translate(err, ErrOrderNotFound)
		}
		if order.DeletedAt.Valid {
			if err := tx.Unscoped().Model(&models.Order{}).Where("id = ?", id).Update("deleted_at", nil).Error; err != nil {
				return err
			}
		}

		var err error
		out, err = findHydrated(tx, id)
		return err
	})
	if err != nil {
		return nil, wrapTx("restore order", err)
	}
	return out, nil
}

func (r *GormOrderRepository) FindItem(ctx context.Context, id uint) (*models.OrderItem, error) {
	var item models.OrderItem
	if err := r.db.WithContext(ctx).Preload("Product", unscoped).First(&item, id).Error; err != nil {
		return nil, translate(err, ErrOrderItemNotFound)
	}
	return &item, nil
}

// wrapTx keeps the repository errors callers branch on and wraps anything
// else as a transaction failure.
func wrapTx(op string, err error) error {
	err = translate(err, ErrOrderNotFound)
	for _, known := range []error{ErrOrderNotFound, ErrUnknownOrderItem, ErrIncompleteOrderItem, ErrReferentialConstraint} {
		if errors.Is(err, known) {
			return err
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

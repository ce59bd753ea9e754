package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrOrderNotFound         = errors.New("order not found")
	ErrOrderItemNotFound     = errors.New("order item not found")
	ErrCustomerNotFound      = errors.New("customer not found")
	ErrProductNotFound       = errors.New("product not found")
	ErrUnknownOrderItem      = errors.New("order item does not belong to order")
	ErrIncompleteOrderItem   = errors.New("new order item requires product_id, quantity and unit_value")
	ErrReferentialConstraint = errors.New("referenced record does not exist")
	ErrDuplicateKey          = errors.New("duplicate key")
)

// translate maps gorm errors onto repository errors. notFound is returned for
// gorm.ErrRecordNotFound.
func translate(err error, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %v", ErrReferentialConstraint, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
	}
	return err
}

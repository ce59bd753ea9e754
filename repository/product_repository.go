package repository

import (
	"context"

	"github.com/joseguilhermeromano/Pastel360/models"
	"gorm.io/gorm"
)

// ProductRepository defines data-access operations for products.
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id uint) (*models.Product, error)
	FindAll(ctx context.Context) ([]models.Product, error)
	Delete(ctx context.Context, id uint) error
	// MissingIDs returns the ids among ids with no live product.
	MissingIDs(ctx context.Context, ids []uint) ([]uint, error)
	// CountSKUPrefix counts products, tombstoned included, whose SKU is prefix plus a three digit sequence.
	CountSKUPrefix(ctx context.Context, prefix string) (int64, error)
}

type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) ProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) Create(ctx context.Context, product *models.Product) error {
	return translate(r.db.WithContext(ctx).Create(product).Error, ErrProductNotFound)
}

func (r *GormProductRepository) Update(ctx context.Context, product *models.Product) error {
	return translate(r.db.WithContext(ctx).Save(product).Error, ErrProductNotFound)
}

func (r *GormProductRepository) FindByID(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, translate(err, ErrProductNotFound)
	}
	return &p, nil
}

func (r *GormProductRepository) FindAll(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).Order("id").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *GormProductRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Product{}, id)
	if result.Error != nil {
		return translate(result.Error, ErrProductNotFound)
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *GormProductRepository) MissingIDs(ctx context.Context, ids []uint) ([]uint, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []uint
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return nil, err
	}
	seen := make(map[uint]bool, len(found))
	for _, id := range found {
		seen[id] = true
	}
	var missing []uint
	for _, id := range ids {
		if !seen[id] {
			missing = append(missing, id)
			seen[id] = true
		}
	}
	return missing, nil
}

func (r *GormProductRepository) CountSKUPrefix(ctx context.Context, prefix string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Unscoped().
		Model(&models.Product{}).
		Where("sku LIKE ?", prefix+"-___").
		Count(&count).Error
	return count, err
}

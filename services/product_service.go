package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/joseguilhermeromano/Pastel360/apperrors"
	"github.com/joseguilhermeromano/Pastel360/cache"
	"github.com/joseguilhermeromano/Pastel360/logger"
	"github.com/joseguilhermeromano/Pastel360/models"
	awspkg "github.com/joseguilhermeromano/Pastel360/pkg/aws"
	"github.com/joseguilhermeromano/Pastel360/repository"
	"go.uber.org/zap"
)

const (
	MaxPhotoSize   = 5 << 20
	PhotoKeyPrefix = "products/"

	skuAttempts = 3
)

var allowedPhotoTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// PhotoStore persists product photos. *awspkg.S3Storage satisfies it.
type PhotoStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Get(ctx context.Context, key string) (*awspkg.Object, error)
	Delete(ctx context.Context, key string) error
}

// PhotoUpload is an incoming photo file.
type PhotoUpload struct {
	Filename string
	Size     int64
	Body     io.Reader
}

type ProductService interface {
	CreateProduct(ctx context.Context, in *models.ProductInput, photo *PhotoUpload) (*models.Product, *apperrors.Error)
	UpdateProduct(ctx context.Context, id uint, in *models.ProductInput, photo *PhotoUpload) (*models.Product, *apperrors.Error)
	GetProduct(ctx context.Context, id uint) (*models.Product, *apperrors.Error)
	ListProducts(ctx context.Context) ([]models.Product, *apperrors.Error)
	DeleteProduct(ctx context.Context, id uint) *apperrors.Error
	OpenPhoto(ctx context.Context, filename string) (*awspkg.Object, *apperrors.Error)
}

type productServiceImpl struct {
	repo    repository.ProductRepository
	photos  PhotoStore
	cache   cache.ProductCache
	metrics *awspkg.MetricsClient
	logger  *zap.Logger
}

// NewProductService builds the product service. A nil photos store rejects
// uploads, a nil cache disables caching.
func NewProductService(
	repo repository.ProductRepository,
	photos PhotoStore,
	productCache cache.ProductCache,
	metrics *awspkg.MetricsClient,
	logger *zap.Logger,
) ProductService {
	if productCache == nil {
		productCache = cache.Noop{}
	}
	return &productServiceImpl{
		repo:    repo,
		photos:  photos,
		cache:   productCache,
		metrics: metrics,
		logger:  logger,
	}
}

// NextSKU builds the SKU for name from the count of products already sharing
// its slug, e.g. "pastel-caipira-001".
func NextSKU(name string, existing int64) string {
	return fmt.Sprintf("%s-%03d", slug.Make(name), existing+1)
}

func (s *productServiceImpl) CreateProduct(ctx context.Context, in *models.ProductInput, photo *PhotoUpload) (*models.Product, *apperrors.Error) {
	if missing := in.MissingForCreate(); len(missing) > 0 {
		return nil, apperrors.Validation(invalidDataMessage, requiredDetails(missing))
	}
	if details := validateProductInput(in); len(details) > 0 {
		return nil, apperrors.Validation(invalidDataMessage, details)
	}

	product := &models.Product{Enable: true}
	in.Apply(product)

	if photo != nil {
		filename, appErr := s.storePhoto(ctx, photo)
		if appErr != nil {
			return nil, appErr
		}
		product.Photo = filename
	}

	if appErr := s.saveWithSKU(ctx, product, s.repo.Create); appErr != nil {
		s.discardPhoto(ctx, product.Photo)
		return nil, appErr
	}

	s.cache.Invalidate(ctx, product.ID)
	recordCount(s.metrics, s.logger, awspkg.MetricProductsCreated)
	logger.For(ctx, s.logger).Info("Product created", zap.Uint("product_id", product.ID), zap.String("sku", product.SKU))
	return product, nil
}

func (s *productServiceImpl) UpdateProduct(ctx context.Context, id uint, in *models.ProductInput, photo *PhotoUpload) (*models.Product, *apperrors.Error) {
	if details := validateProductInput(in); len(details) > 0 {
		return nil, apperrors.Validation(invalidDataMessage, details)
	}

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.repoError(ctx, "Failed to fetch product", err)
	}

	previousName := product.Name
	previousPhoto := product.Photo
	in.Apply(product)

	if photo != nil {
		filename, appErr := s.storePhoto(ctx, photo)
		if appErr != nil {
			return nil, appErr
		}
		product.Photo = filename
	}

	if product.Name != previousName {
		appErr := s.saveWithSKU(ctx, product, s.repo.Update)
		if appErr != nil {
			if product.Photo != previousPhoto {
				s.discardPhoto(ctx, product.Photo)
			}
			return nil, appErr
		}
	} else if err := s.repo.Update(ctx, product); err != nil {
		if product.Photo != previousPhoto {
			s.discardPhoto(ctx, product.Photo)
		}
		return nil, s.repoError(ctx, "Failed to update product", err)
	}

	if product.Photo != previousPhoto {
		s.discardPhoto(ctx, previousPhoto)
	}
	s.cache.Invalidate(ctx, product.ID)
	return product, nil
}

// saveWithSKU assigns the next free SKU and saves, retrying when a concurrent
// writer took the same sequence.
func (s *productServiceImpl) saveWithSKU(ctx context.Context, product *models.Product, save func(context.Context, *models.Product) error) *apperrors.Error {
	base := slug.Make(product.Name)
	count, err := s.repo.CountSKUPrefix(ctx, base)
	if err != nil {
		return s.repoError(ctx, "Failed to generate SKU", err)
	}

	for attempt := int64(0); attempt < skuAttempts; attempt++ {
		product.SKU = NextSKU(product.Name, count+attempt)
		err = save(ctx, product)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrDuplicateKey) {
			break
		}
	}
	return s.repoError(ctx, "Failed to save product", err)
}

func (s *productServiceImpl) GetProduct(ctx context.Context, id uint) (*models.Product, *apperrors.Error) {
	if p, ok := s.cache.Get(ctx, id); ok {
		recordCount(s.metrics, s.logger, awspkg.MetricCacheHits)
		return p, nil
	}
	recordCount(s.metrics, s.logger, awspkg.MetricCacheMisses)

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.repoError(ctx, "Failed to fetch product", err)
	}
	s.cache.Set(ctx, product)
	return product, nil
}

func (s *productServiceImpl) ListProducts(ctx context.Context) ([]models.Product, *apperrors.Error) {
	if products, ok := s.cache.GetList(ctx); ok {
		recordCount(s.metrics, s.logger, awspkg.MetricCacheHits)
		return products, nil
	}
	recordCount(s.metrics, s.logger, awspkg.MetricCacheMisses)

	products, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, s.repoError(ctx, "Failed to fetch products", err)
	}
	s.cache.SetList(ctx, products)
	return products, nil
}

func (s *productServiceImpl) DeleteProduct(ctx context.Context, id uint) *apperrors.Error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.repoError(ctx, "Failed to delete product", err)
	}
	s.cache.Invalidate(ctx, id)
	return nil
}

// OpenPhoto streams a stored photo by its file name.
func (s *productServiceImpl) OpenPhoto(ctx context.Context, filename string) (*awspkg.Object, *apperrors.Error) {
	name := path.Base(filename)
	if name != filename || name == "." || name == "/" || strings.HasPrefix(name, ".") {
		return nil, apperrors.NotFound("Image not found")
	}
	if s.photos == nil {
		return nil, apperrors.NotFound("Image not found")
	}

	obj, err := s.photos.Get(ctx, PhotoKeyPrefix+name)
	if err != nil {
		if errors.Is(err, awspkg.ErrObjectNotFound) {
			return nil, apperrors.NotFound("Image not found")
		}
		logger.For(ctx, s.logger).Error("Failed to read product photo", zap.String("filename", name), zap.Error(err))
		return nil, apperrors.Internal("Failed to read image", err)
	}
	return obj, nil
}

// storePhoto sniffs the upload, checks type and size, and writes it under a
// fresh uuid name. It returns the stored file name.
func (s *productServiceImpl) storePhoto(ctx context.Context, photo *PhotoUpload) (string, *apperrors.Error) {
	if photo.Size > MaxPhotoSize {
		return "", apperrors.Validation(invalidDataMessage, map[string]string{"photo": "The photo may not be greater than 5 MB."})
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(photo.Body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", apperrors.BadRequest("Failed to read photo", err)
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	ext, ok := allowedPhotoTypes[contentType]
	if !ok {
		return "", apperrors.Validation(invalidDataMessage, map[string]string{"photo": "The photo must be a file of type: jpeg, png, webp, gif."})
	}
	if s.photos == nil {
		return "", apperrors.New(http.StatusServiceUnavailable, "Photo storage is not configured", nil)
	}

	filename := uuid.NewString() + ext
	body := io.MultiReader(bytes.NewReader(head), photo.Body)
	if err := s.photos.Put(ctx, PhotoKeyPrefix+filename, contentType, body, photo.Size); err != nil {
		logger.For(ctx, s.logger).Error("Failed to store product photo", zap.Error(err))
		return "", apperrors.Internal("Failed to store photo", err)
	}
	return filename, nil
}

func (s *productServiceImpl) discardPhoto(ctx context.Context, filename string) {
	if filename == "" || s.photos == nil {
		return
	}
	if err := s.photos.Delete(ctx, PhotoKeyPrefix+filename); err != nil {
		logger.For(ctx, s.logger).Warn("Failed to delete product photo", zap.String("filename", filename), zap.Error(err))
	}
}

func validateProductInput(in *models.ProductInput) map[string]string {
	details := map[string]string{}
	if in.Name != nil && len(*in.Name) > 255 {
		details["name"] = "The name may not be greater than 255 characters."
	}
	if in.Price != nil && in.Price.IsNegative() {
		details["price"] = "The price must be at least 0."
	}
	if in.Stock != nil && *in.Stock < 0 {
		details["stock"] = "The stock must be at least 0."
	}
	if in.Name != nil && slug.Make(*in.Name) == "" {
		details["name"] = "The name must contain letters or digits."
	}
	return details
}

func (s *productServiceImpl) repoError(ctx context.Context, msg string, err error) *apperrors.Error {
	switch {
	case errors.Is(err, repository.ErrProductNotFound):
		return apperrors.NotFound("Product not found")
	case errors.Is(err, repository.ErrDuplicateKey):
		return apperrors.Conflict("The sku has already been taken.")
	}
	logger.For(ctx, s.logger).Error(msg, zap.Error(err))
	return apperrors.Internal(msg, err)
}

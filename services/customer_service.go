package services

import (
	"context"
	"errors"
	"strings"

	"github.com/joseguilhermeromano/Pastel360/apperrors"
	"github.com/joseguilhermeromano/Pastel360/logger"
	"github.com/joseguilhermeromano/Pastel360/models"
	"github.com/joseguilhermeromano/Pastel360/repository"
	"go.uber.org/zap"
)

type CustomerService interface {
	CreateCustomer(ctx context.Context, req *models.CustomerRequest) (*models.Customer, *apperrors.Error)
	UpdateCustomer(ctx context.Context, id uint, req *models.CustomerRequest) (*models.Customer, *apperrors.Error)
	GetCustomer(ctx context.Context, id uint) (*models.Customer, *apperrors.Error)
	ListCustomers(ctx context.Context) ([]models.Customer, *apperrors.Error)
	DeleteCustomer(ctx context.Context, id uint) *apperrors.Error
}

type customerServiceImpl struct {
	repo   repository.CustomerRepository
	logger *zap.Logger
}

func NewCustomerService(repo repository.CustomerRepository, logger *zap.Logger) CustomerService {
	return &customerServiceImpl{repo: repo, logger: logger}
}

func (s *customerServiceImpl) CreateCustomer(ctx context.Context, req *models.CustomerRequest) (*models.Customer, *apperrors.Error) {
	if missing := req.MissingForCreate(); len(missing) > 0 {
		return nil, apperrors.Validation(invalidDataMessage, requiredDetails(missing))
	}

	customer := &models.Customer{}
	if err := req.Apply(customer); err != nil {
		return nil, apperrors.Validation(invalidDataMessage, map[string]string{"birthdate": "The birthdate is not a valid date."})
	}
	if err := s.repo.Create(ctx, customer); err != nil {
		return nil, s.repoError(ctx, "Failed to create customer", err)
	}
	logger.For(ctx, s.logger).Info("Customer created", zap.Uint("customer_id", customer.ID))
	return customer, nil
}

func (s *customerServiceImpl) UpdateCustomer(ctx context.Context, id uint, req *models.CustomerRequest) (*models.Customer, *apperrors.Error) {
	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.repoError(ctx, "Failed to fetch customer", err)
	}
	if err := req.Apply(customer); err != nil {
		return nil, apperrors.Validation(invalidDataMessage, map[string]string{"birthdate": "The birthdate is not a valid date."})
	}
	if err := s.repo.Update(ctx, customer); err != nil {
		return nil, s.repoError(ctx, "Failed to update customer", err)
	}
	return customer, nil
}

func (s *customerServiceImpl) GetCustomer(ctx context.Context, id uint) (*models.Customer, *apperrors.Error) {
	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.repoError(ctx, "Failed to fetch customer", err)
	}
	return customer, nil
}

func (s *customerServiceImpl) ListCustomers(ctx context.Context) ([]models.Customer, *apperrors.Error) {
	customers, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, s.repoError(ctx, "Failed to fetch customers", err)
	}
	return customers, nil
}

func (s *customerServiceImpl) DeleteCustomer(ctx context.Context, id uint) *apperrors.Error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.repoError(ctx, "Failed to delete customer", err)
	}
	return nil
}

func (s *customerServiceImpl) repoError(ctx context.Context, msg string, err error) *apperrors.Error {
	switch {
	case errors.Is(err, repository.ErrCustomerNotFound):
		return apperrors.NotFound("Customer not found")
	case errors.Is(err, repository.ErrDuplicateKey):
		return apperrors.Conflict("The mail has already been taken.")
	}
	logger.For(ctx, s.logger).Error(msg, zap.Error(err))
	return apperrors.Internal(msg, err)
}

func requiredDetails(fields []string) map[string]string {
	details := make(map[string]string, len(fields))
	for _, f := range fields {
		details[f] = "The " + strings.ReplaceAll(f, "_", " ") + " field is required."
	}
	return details
}

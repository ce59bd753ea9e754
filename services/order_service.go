package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joseguilhermeromano/Pastel360/apperrors"
	"github.com/joseguilhermeromano/Pastel360/logger"
	"github.com/joseguilhermeromano/Pastel360/models"
	"github.com/joseguilhermeromano/Pastel360/notification"
	awspkg "github.com/joseguilhermeromano/Pastel360/pkg/aws"
	"github.com/joseguilhermeromano/Pastel360/repository"
	"go.uber.org/zap"
)

const invalidDataMessage = "The given data was invalid."

// OrderService defines the order use cases.
type OrderService interface {
	CreateOrder(ctx context.Context, draft *models.OrderDraft) (*models.Order, *apperrors.Error)
	UpdateOrder(ctx context.Context, id uint, patch *models.OrderPatch) (*models.Order, *apperrors.Error)
	GetOrder(ctx context.Context, id uint) (*models.Order, *apperrors.Error)
	ListOrders(ctx context.Context) ([]models.Order, *apperrors.Error)
	DeleteOrder(ctx context.Context, id uint, force bool) *apperrors.Error
	RestoreOrder(ctx context.Context, id uint) (*models.Order, *apperrors.Error)
	GetOrderItem(ctx context.Context, id uint) (*models.OrderItem, *apperrors.Error)
}

type orderServiceImpl struct {
	orders     repository.OrderRepository
	customers  repository.CustomerRepository
	products   repository.ProductRepository
	dispatcher notification.Dispatcher
	metrics    *awspkg.MetricsClient
	logger     *zap.Logger
}

func NewOrderService(
	orders repository.OrderRepository,
	customers repository.CustomerRepository,
	products repository.ProductRepository,
	dispatcher notification.Dispatcher,
	metrics *awspkg.MetricsClient,
	logger *zap.Logger,
) OrderService {
	return &orderServiceImpl{
		orders:     orders,
		customers:  customers,
		products:   products,
		dispatcher: dispatcher,
		metrics:    metrics,
		logger:     logger,
	}
}

func (s *orderServiceImpl) CreateOrder(ctx context.Context, draft *models.OrderDraft) (*models.Order, *apperrors.Error) {
	if errs := draft.Validate(); len(errs) > 0 {
		return nil, apperrors.Validation(invalidDataMessage, errs)
	}

	productIDs := make([]uint, 0, len(draft.Items))
	for _, it := range draft.Items {
		productIDs = append(productIDs, it.ProductID)
	}
	if appErr := s.checkReferences(ctx, &draft.CustomerID, productIDs); appErr != nil {
		return nil, appErr
	}

	order, err := s.orders.Create(ctx, draft)
	if err != nil {
		return nil, s.repoError(ctx, "Failed to create order", err)
	}

	logger.For(ctx, s.logger).Info("Order created",
		zap.Uint("order_id", order.ID),
		zap.Uint("customer_id", order.CustomerID),
		zap.String("total_amount", order.TotalAmount.StringFixed(models.MoneyPlaces)),
	)
	s.notifyCreated(ctx, order)
	s.recordMetric(awspkg.MetricOrdersCreated)

	return order, nil
}

// notifyCreated enqueues the confirmation once the order is committed. A
// transport failure is logged and never fails the creation.
func (s *orderServiceImpl) notifyCreated(ctx context.Context, order *models.Order) {
	recipient := ""
	if order.Customer != nil {
		recipient = order.Customer.Mail
	}

	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := s.dispatcher.Enqueue(nctx, recipient, order); err != nil {
		logger.For(ctx, s.logger).Warn("Failed to enqueue order notification",
			zap.Uint("order_id", order.ID),
			zap.String("recipient", recipient),
			zap.Error(err),
		)
		s.recordMetric(awspkg.MetricNotificationsFailed)
		return
	}
	s.recordMetric(awspkg.MetricNotificationsQueued)
}

func (s *orderServiceImpl) UpdateOrder(ctx context.Context, id uint, patch *models.OrderPatch) (*models.Order, *apperrors.Error) {
	if errs := patch.Validate(); len(errs) > 0 {
		return nil, apperrors.Validation(invalidDataMessage, errs)
	}

	var productIDs []uint
	if patch.Items != nil {
		for _, it := range *patch.Items {
			if it.ProductID != nil {
				productIDs = append(productIDs, *it.ProductID)
			}
		}
	}
	if appErr := s.checkReferences(ctx, patch.CustomerID, productIDs); appErr != nil {
		return nil, appErr
	}

	order, err := s.orders.Update(ctx, id, patch)
	if err != nil {
		return nil, s.repoError(ctx, "Failed to update order", err)
	}
	logger.For(ctx, s.logger).Info("Order updated", zap.Uint("order_id", order.ID), zap.String("status", string(order.Status)))
	return order, nil
}

func (s *orderServiceImpl) GetOrder(ctx context.Context, id uint) (*models.Order, *apperrors.Error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, s.repoError(ctx, "Failed to fetch order", err)
	}
	return order, nil
}

func (s *orderServiceImpl) ListOrders(ctx context.Context) ([]models.Order, *apperrors.Error) {
	orders, err := s.orders.FindAll(ctx)
	if err != nil {
		return nil, s.repoError(ctx, "Failed to fetch orders", err)
	}
	return orders, nil
}

func (s *orderServiceImpl) DeleteOrder(ctx context.Context, id uint, force bool) *apperrors.Error {
	var err error
	if force {
		err = s.orders.ForceDelete(ctx, id)
	} else {
		err = s.orders.Delete(ctx, id)
	}
	if err != nil {
		return s.repoError(ctx, "Failed to delete order", err)
	}
	logger.For(ctx, s.logger).Info("Order deleted", zap.Uint("order_id", id), zap.Bool("force", force))
	s.recordMetric(awspkg.MetricOrdersDeleted)
	return nil
}

func (s *orderServiceImpl) RestoreOrder(ctx context.Context, id uint) (*models.Order, *apperrors.Error) {
	order, err := s.orders.Restore(ctx, id)
	if err != nil {
		return nil, s.repoError(ctx, "Failed to restore order", err)
	}
	return order, nil
}

func (s *orderServiceImpl) GetOrderItem(ctx context.Context, id uint) (*models.OrderItem, *apperrors.Error) {
	item, err := s.orders.FindItem(ctx, id)
	if err != nil {
		return nil, s.repoError(ctx, "Failed to fetch order item", err)
	}
	return item, nil
}

// checkReferences reports missing customers and products as field errors.
func (s *orderServiceImpl) checkReferences(ctx context.Context, customerID *uint, productIDs []uint) *apperrors.Error {
	errs := map[string]string{}

	if customerID != nil {
		ok, err := s.customers.Exists(ctx, *customerID)
		if err != nil {
			return s.repoError(ctx, "Failed to validate customer", err)
		}
		if !ok {
			errs["customer_id"] = "The selected customer id is invalid."
		}
	}

	missing, err := s.products.MissingIDs(ctx, productIDs)
	if err != nil {
		return s.repoError(ctx, "Failed to validate products", err)
	}
	for _, id := range missing {
		errs[fmt.Sprintf("product_id.%d", id)] = "The selected product id is invalid."
	}

	if len(errs) > 0 {
		return apperrors.Validation(invalidDataMessage, errs)
	}
	return nil
}

func (s *orderServiceImpl) repoError(ctx context.Context, msg string, err error) *apperrors.Error {
	switch {
	case errors.Is(err, repository.ErrOrderNotFound):
		return apperrors.NotFound("Order not found")
	case errors.Is(err, repository.ErrOrderItemNotFound):
		return apperrors.NotFound("Order item not found")
	case errors.Is(err, repository.ErrUnknownOrderItem):
		return apperrors.Validation(invalidDataMessage, map[string]string{"items": err.Error()})
	case errors.Is(err, repository.ErrIncompleteOrderItem):
		return apperrors.Validation(invalidDataMessage, map[string]string{"items": err.Error()})
	case errors.Is(err, repository.ErrReferentialConstraint):
		return apperrors.Validation(invalidDataMessage, map[string]string{"references": "A referenced customer or product does not exist."})
	}
	logger.For(ctx, s.logger).Error(msg, zap.Error(err))
	return apperrors.Internal(msg, err)
}

func (s *orderServiceImpl) recordMetric(name string) {
	recordCount(s.metrics, s.logger, name)
}

package services

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/joseguilhermeromano/Pastel360/models"
	awspkg "github.com/joseguilhermeromano/Pastel360/pkg/aws"
	"github.com/joseguilhermeromano/Pastel360/repository"
	"github.com/joseguilhermeromano/Pastel360/sender"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

//go:embed templates/order_created.html
var templateFS embed.FS

var ErrInvalidMessage = errors.New("invalid notification message")

type NotificationService interface {
	SendOrderCreated(ctx context.Context, msg *models.OrderCreatedMessage) error
	GetLogs(ctx context.Context, filter models.NotificationFilter) ([]models.NotificationLog, int64, error)
}

type NotificationConfig struct {
	// AppURL is the public base URL used for the "view order" link. Empty disables the link.
	AppURL      string
	MaxAttempts int
	Backoff     time.Duration
}

type orderCreatedView struct {
	OrderID      uint
	CustomerName string
	CreatedAt    string
	Items        []models.OrderCreatedItem
	TotalAmount  decimal.Decimal
	OrderURL     string
}

type notificationService struct {
	repo        repository.NotificationRepository
	emailSender sender.EmailSender
	tmpl        *template.Template
	cfg         NotificationConfig
	metrics     *awspkg.MetricsClient
	logger      *zap.Logger
}

func NewNotificationService(
	repo repository.NotificationRepository,
	emailSender sender.EmailSender,
	cfg NotificationConfig,
	metrics *awspkg.MetricsClient,
	logger *zap.Logger,
) (NotificationService, error) {
	tmpl, err := template.New("order_created.html").
		Funcs(template.FuncMap{"brl": FormatBRL}).
		ParseFS(templateFS, "templates/order_created.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse order_created template: %w", err)
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.Backoff < 0 {
		cfg.Backoff = 0
	}
	return &notificationService{
		repo:        repo,
		emailSender: emailSender,
		tmpl:        tmpl,
		cfg:         cfg,
		metrics:     metrics,
		logger:      logger,
	}, nil
}

func OrderCreatedSubject(orderID uint) string {
	return fmt.Sprintf("Detalhes do seu pedido #%d", orderID)
}

// SendOrderCreated renders and delivers the confirmation email. Delivery
// failures are recorded in the notification log rather than returned. It
// errors on malformed messages, render failures and a ctx that ends mid-retry.
func (s *notificationService) SendOrderCreated(ctx context.Context, msg *models.OrderCreatedMessage) error {
	if msg == nil || msg.EventType != models.EventOrderCreated {
		return fmt.Errorf("%w: unexpected event type", ErrInvalidMessage)
	}
	if strings.TrimSpace(msg.Recipient) == "" {
		return fmt.Errorf("%w: missing recipient for order %d", ErrInvalidMessage, msg.OrderID)
	}

	body, err := s.render(msg)
	if err != nil {
		return err
	}

	return s.sendWithRetry(ctx, msg, OrderCreatedSubject(msg.OrderID), body)
}

func (s *notificationService) render(msg *models.OrderCreatedMessage) (string, error) {
	created := msg.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	view := orderCreatedView{
		OrderID:      msg.OrderID,
		CustomerName: msg.CustomerName,
		CreatedAt:    created.Format("02/01/2006 15:04"),
		Items:        msg.Items,
		TotalAmount:  msg.TotalAmount,
	}
	if s.cfg.AppURL != "" {
		view.OrderURL = fmt.Sprintf("%s/orders/%d", strings.TrimRight(s.cfg.AppURL, "/"), msg.OrderID)
	}

	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("template render failed: %w", err)
	}
	return buf.String(), nil
}

// sendWithRetry returns an error only when ctx ends before delivery, leaving
// the message for redelivery without a log entry.
func (s *notificationService) sendWithRetry(ctx context.Context, msg *models.OrderCreatedMessage, subject, body string) error {
	var lastErr error
	var messageID string
	attempts := 0

	for attempt := 0; attempt < s.cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				lastErr = ctx.Err()
			case <-time.After(time.Duration(attempt) * s.cfg.Backoff):
			}
			if ctx.Err() != nil {
				break
			}
		}

		attempts++
		var result sender.SendResult
		result, lastErr = s.emailSender.SendEmail(ctx, msg.Recipient, subject, body)
		if lastErr == nil {
			messageID = result.MessageID
			break
		}

		s.logger.Warn("send attempt failed",
			zap.Uint("order_id", msg.OrderID),
			zap.Int("attempt", attempt+1),
			zap.Error(lastErr),
		)
	}

	if lastErr != nil && ctx.Err() != nil {
		s.logger.Warn("notification interrupted before delivery",
			zap.Uint("order_id", msg.OrderID),
			zap.Int("attempts", attempts),
			zap.Error(lastErr),
		)
		return ctx.Err()
	}

	status := models.NotificationSent
	errMsg := ""
	metric := awspkg.MetricNotificationsSent
	if lastErr != nil {
		status = models.NotificationFailed
		errMsg = lastErr.Error()
		metric = awspkg.MetricNotificationsFailed
	}

	s.logger.Info("notification processed",
		zap.Uint("order_id", msg.OrderID),
		zap.String("recipient", msg.Recipient),
		zap.String("status", status),
		zap.Int("attempts", attempts),
		zap.String("message_id", messageID),
	)

	entry := &models.NotificationLog{
		OrderID:   msg.OrderID,
		EventType: msg.EventType,
		Recipient: msg.Recipient,
		Channel:   models.ChannelEmail,
		Status:    status,
		Error:     errMsg,
		Attempts:  attempts,
		MessageID: messageID,
	}
	if err := s.repo.SaveLog(context.WithoutCancel(ctx), entry); err != nil {
		s.logger.Error("failed to save notification log", zap.Error(err))
	}

	if s.metrics.IsEnabled() {
		if err := s.metrics.RecordCount(context.WithoutCancel(ctx), metric, nil); err != nil {
			s.logger.Debug("failed to record metric", zap.Error(err))
		}
	}
	return nil
}

func (s *notificationService) GetLogs(ctx context.Context, filter models.NotificationFilter) ([]models.NotificationLog, int64, error) {
	return s.repo.GetLogs(ctx, filter)
}

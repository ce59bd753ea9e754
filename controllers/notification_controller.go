package controllers

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/joseguilhermeromano/Pastel360/models"
	"github.com/joseguilhermeromano/Pastel360/services"
	"go.uber.org/zap"
)

type NotificationController struct {
	notificationService services.NotificationService
	logger              *zap.Logger
}

func NewNotificationController(svc services.NotificationService, logger *zap.Logger) *NotificationController {
	return &NotificationController{notificationService: svc, logger: logger}
}

const (
	maxPageSize     = 100
	defaultPage     = 1
	defaultPageSize = 20
)

func parsePaginationParams(ctx *gin.Context) (int, int) {
	page := defaultPage
	pageSize := defaultPageSize

	if p, err := strconv.Atoi(ctx.DefaultQuery("page", "1")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(ctx.DefaultQuery("page_size", "20")); err == nil && l > 0 {
		pageSize = l
		if pageSize > maxPageSize {
			pageSize = maxPageSize
		}
	}
	return page, pageSize
}

// GetNotificationLogs lists delivery records, optionally filtered by order_id and status.
func (nc *NotificationController) GetNotificationLogs(ctx *gin.Context) {
	var orderID uint64
	if raw := ctx.Query("order_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid order_id"})
			return
		}
		orderID = parsed
	}

	page, pageSize := parsePaginationParams(ctx)

	filter := models.NotificationFilter{
		OrderID:  uint(orderID),
		Status:   ctx.Query("status"),
		Page:     page,
		PageSize: pageSize,
	}

	logs, total, err := nc.notificationService.GetLogs(ctx.Request.Context(), filter)
	if err != nil {
		nc.logger.Error("failed to get notification logs", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	totalPages := int(math.Ceil(float64(total) / float64(pageSize)))

	ctx.JSON(http.StatusOK, gin.H{
		"data":        logs,
		"total":       total,
		"page":        page,
		"page_size":   pageSize,
		"total_pages": totalPages,
	})
}

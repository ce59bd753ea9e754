package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/joseguilhermeromano/Pastel360/apperrors"
	"github.com/joseguilhermeromano/Pastel360/models"
	"github.com/joseguilhermeromano/Pastel360/services"
)

type OrderController struct {
	orderService services.OrderService
}

func NewOrderController(orderService services.OrderService) *OrderController {
	return &OrderController{orderService: orderService}
}

// CreateOrder handles order creation requests
func (oc *OrderController) CreateOrder(ctx *gin.Context) {
	var req models.OrderDraft
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	order, appErr := oc.orderService.CreateOrder(ctx.Request.Context(), &req)
	if appErr != nil {
		respondError(ctx, appErr)
		return
	}

	ctx.JSON(http.StatusCreated, models.NewOrderResponse(order))
}

func (oc *OrderController) GetOrders(ctx *gin.Context) {
	orders, appErr := oc.orderService.ListOrders(ctx.Request.Context())
	if appErr != nil {
		respondError(ctx, appErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"orders": models.NewOrderResponses(orders)})
}

func (oc *OrderController) GetOrderByID(ctx *gin.Context) {
	id, ok := parseID(ctx, "order")
	if !ok {
		return
	}

	order, appErr := oc.orderService.GetOrder(ctx.Request.Context(), id)
	if appErr != nil {
		respondError(ctx, appErr)
		return
	}
	ctx.JSON(http.StatusOK, models.NewOrderResponse(order))
}

// UpdateOrder serves both PUT and PATCH; omitted fields are left unchanged.
func (oc *OrderController) UpdateOrder(ctx *gin.Context) {
	id, ok := parseID(ctx, "order")
	if !ok {
		return
	}

	var req models.OrderPatch
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	order, appErr := oc.orderService.UpdateOrder(ctx.Request.Context(), id, &req)
	if appErr != nil {
		respondError(ctx, appErr)
		return
	}
	ctx.JSON(http.StatusOK, models.NewOrderResponse(order))
}

// DeleteOrder soft deletes, or removes the order and its items for good with ?force=true.
func (oc *OrderController) DeleteOrder(ctx *gin.Context) {
	id, ok := parseID(ctx, "order")
	if !ok {
		return
	}

	force := false
	if raw := ctx.Query("force"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(ctx, apperrors.BadRequest("Invalid force flag", err))
			return
		}
		force = parsed
	}

	if appErr := oc.orderService.DeleteOrder(ctx.Request.Context(), id, force); appErr != nil {
		respondError(ctx, appErr)
		return
	}
	ctx.Status(http.StatusNoContent)
}

func (oc *OrderController) RestoreOrder(ctx *gin.Context) {
	id, ok := parseID(ctx, "order")
	if !ok {
		return
	}

	order, appErr := oc.orderService.RestoreOrder(ctx.Request.Context(), id)
	if appErr != nil {
		respondError(ctx, appErr)
		return
	}
	ctx.JSON(http.StatusOK, models.NewOrderResponse(order))
}

func (oc *OrderController) GetOrderItem(ctx *gin.Context) {
	id, ok := parseID(ctx, "order item")
	if !ok {
		return
	}

	item, appErr := oc.orderService.GetOrderItem(ctx.Request.Context(), id)
	if appErr != nil {
		respondError(ctx, appErr)
		return
	}
	ctx.JSON(http.StatusOK, models.NewOrderItemResponse(item))
}

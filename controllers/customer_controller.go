package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joseguilhermeromano/Pastel360/models"
	"github.com/joseguilhermeromano/Pastel360/services"
)

type CustomerController struct {
	customerService services.CustomerService
}

func NewCustomerController(svc services.CustomerService) *CustomerController {
	return &CustomerController{customerService: svc}
}

func (cc *CustomerController) CreateCustomer(ctx *gin.Context) {
	var req models.CustomerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	customer, appErr := cc.customerService.CreateCustomer(ctx.Request.Context(), &req)
	if appErr != nil {
		respondError(ctx, appErr)
		return
	}
	ctx.JSON(http.StatusCreated, customer)
}

func (cc *CustomerController) GetCustomers(ctx *gin.Context) {
	customers, appErr := cc.customerService.ListCustomers(ctx.Request.Context())
	if appErr != nil {
		respondError(ctx, appErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"customers": customers})
}

func (cc *CustomerController) GetCustomerByID(ctx *gin.Context) {
	id, ok := parseID(ctx, "customer")
	if !ok {
		return
	}

	customer, appErr := cc.customerService.GetCustomer(ctx.Request.Context(), id)
	if appErr != nil {
		respondError(ctx, appErr)
		return
	}
	ctx.JSON(http.StatusOK, customer)
}

func (cc *CustomerController) UpdateCustomer(ctx *gin.Context) {
	id, ok := parseID(ctx, "customer")
	if !ok {
		return
	}

	var req models.CustomerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	customer, appErr := cc.customerService.UpdateCustomer(ctx.Request.Context(), id, &req)
	if appErr != nil {
		respondError(ctx, appErr)
		return
	}
	ctx.JSON(http.StatusOK, customer)
}

func (cc *CustomerController) DeleteCustomer(ctx *gin.Context) {
	id, ok := parseID(ctx, "customer")
	if !ok {
		return
	}

	if appErr := cc.customerService.DeleteCustomer(ctx.Request.Context(), id); appErr != nil {
		respondError(ctx, appErr)
		return
	}
	ctx.Status(http.StatusNoContent)
}

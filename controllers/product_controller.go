package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joseguilhermeromano/Pastel360/apperrors"
	"github.com/joseguilhermeromano/Pastel360/models"
	"github.com/joseguilhermeromano/Pastel360/services"
	"github.com/shopspring/decimal"
)

// productForm is the multipart payload for product create and update.
type productForm struct {
	Name        *string `form:"name" binding:"omitempty,max=255"`
	Description *string `form:"description"`
	Price       *string `form:"price"`
	Stock       *int    `form:"stock" binding:"omitempty,min=0"`
	Enable      *bool   `form:"enable"`
}

func (f *productForm) input() (*models.ProductInput, *apperrors.Error) {
	in := &models.ProductInput{
		Name:        f.Name,
		Description: f.Description,
		Stock:       f.Stock,
		Enable:      f.Enable,
	}
	if f.Price != nil && strings.TrimSpace(*f.Price) != "" {
		price, err := decimal.NewFromString(strings.TrimSpace(*f.Price))
		if err != nil {
			return nil, apperrors.Validation("The given data was invalid.", map[string]string{"price": "The price must be a number."})
		}
		in.Price = &price
	}
	return in, nil
}

type ProductController struct {
	productService services.ProductService
}

func NewProductController(svc services.ProductService) *ProductController {
	return &ProductController{productService: svc}
}

// bindProduct reads the form fields and the optional photo file. The
// returned close func must be called once the upload has been consumed.
func bindProduct(ctx *gin.Context) (*models.ProductInput, *services.PhotoUpload, func(), bool) {
	noop := func() {}

	var form productForm
	if err := ctx.ShouldBind(&form); err != nil {
		respondBindError(ctx, err)
		return nil, nil, noop, false
	}
	in, appErr := form.input()
	if appErr != nil {
		respondError(ctx, appErr)
		return nil, nil, noop, false
	}

	header, err := ctx.FormFile("photo")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return in, nil, noop, true
		}
		respondError(ctx, apperrors.BadRequest("Invalid photo upload", err))
		return nil, nil, noop, false
	}
	file, err := header.Open()
	if err != nil {
		respondError(ctx, apperrors.BadRequest("Invalid photo upload", err))
		return nil, nil, noop, false
	}

	photo := &services.PhotoUpload{Filename: header.Filename, Size: header.Size, Body: file}
	return in, photo, func() { _ = file.Close() }, true
}

func (pc *ProductController) CreateProduct(ctx *gin.Context) {
	in, photo, done, ok := bindProduct(ctx)
	defer done()
	if !ok {
		return
	}

	product, appErr := pc.productService.CreateProduct(ctx.Request.Context(), in, photo)
	if appErr != nil {
		respondError(ctx, appErr)
		return
	}
	ctx.JSON(http.StatusCreated, models.NewProductResponse(product))
}

func (pc *ProductController) GetProducts(ctx *gin.Context) {
	products, appErr := pc.productService.ListProducts(ctx.Request.Context())
	if appErr != nil {
		respondError(ctx, appErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"products": models.NewProductResponses(products)})
}

func (pc *ProductController) GetProductByID(ctx *gin.Context) {
	id, ok := parseID(ctx, "product")
	if !ok {
		return
	}

	product, appErr := pc.productService.GetProduct(ctx.Request.Context(), id)
	if appErr != nil {
		respondError(ctx, appErr)
		return
	}
	ctx.JSON(http.StatusOK, models.NewProductResponse(product))
}

func (pc *ProductController) UpdateProduct(ctx *gin.Context) {
	id, ok := parseID(ctx, "product")
	if !ok {
		return
	}

	in, photo, done, ok := bindProduct(ctx)
	defer done()
	if !ok {
		return
	}

	product, appErr := pc.productService.UpdateProduct(ctx.Request.Context(), id, in, photo)
	if appErr != nil {
		respondError(ctx, appErr)
		return
	}
	ctx.JSON(http.StatusOK, models.NewProductResponse(product))
}

func (pc *ProductController) DeleteProduct(ctx *gin.Context) {
	id, ok := parseID(ctx, "product")
	if !ok {
		return
	}

	if appErr := pc.productService.DeleteProduct(ctx.Request.Context(), id); appErr != nil {
		respondError(ctx, appErr)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// GetImage streams a stored product photo.
func (pc *ProductController) GetImage(ctx *gin.Context) {
	obj, appErr := pc.productService.OpenPhoto(ctx.Request.Context(), ctx.Param("filename"))
	if appErr != nil {
		respondError(ctx, appErr)
		return
	}
	defer obj.Body.Close()

	contentType := obj.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	ctx.DataFromReader(http.StatusOK, obj.ContentLength, contentType, obj.Body, map[string]string{
		"Cache-Control": "public, max-age=86400",
	})
}

package services_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/joseguilhermeromano/Pastel360/models"
	"github.com/joseguilhermeromano/Pastel360/repository"
	"github.com/joseguilhermeromano/Pastel360/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func productInput(name string) *models.ProductInput {
	return &models.ProductInput{
		Name:        ptr(name),
		Description: ptr("Massa crocante"),
		Price:       ptr(dec("8.5")),
		Stock:       ptr(10),
	}
}

func TestNextSKU(t *testing.T) {
	assert.Equal(t, "pastel-caipira-001", services.NextSKU("Pastel Caipira", 0))
	assert.Equal(t, "pastel-de-acai-012", services.NextSKU("Pastel de Açaí", 11))
}

func TestCreateProduct_GeneratesSKUAndDefaultsEnable(t *testing.T) {
	repo := &mockProductRepo{skuCount: 2}
	c := newMemCache()
	svc := services.NewProductService(repo, newMemPhotoStore(), c, nil, zap.NewNop())

	p, appErr := svc.CreateProduct(context.Background(), productInput("Pastel de Carne"), nil)
	require.Nil(t, appErr)
	assert.Equal(t, "pastel-de-carne-003", p.SKU)
	assert.True(t, p.Enable)
	assert.Equal(t, "8.50", p.Price.StringFixed(2))
	assert.Equal(t, []uint{5}, c.invalidated)
}

func TestCreateProduct_RetriesTakenSKU(t *testing.T) {
	repo := &mockProductRepo{saveErrs: []error{repository.ErrDuplicateKey, nil}}
	svc := services.NewProductService(repo, nil, nil, nil, zap.NewNop())

	p, appErr := svc.CreateProduct(context.Background(), productInput("Queijo"), nil)
	require.Nil(t, appErr)
	assert.Equal(t, []string{"queijo-001", "queijo-002"}, repo.saved)
	assert.Equal(t, "queijo-002", p.SKU)
}

func TestCreateProduct_ExplicitDisable(t *testing.T) {
	in := productInput("Frango")
	in.Enable = ptr(false)
	svc := services.NewProductService(&mockProductRepo{}, nil, nil, nil, zap.NewNop())

	p, appErr := svc.CreateProduct(context.Background(), in, nil)
	require.Nil(t, appErr)
	assert.False(t, p.Enable)
}

func TestCreateProduct_StoresPhoto(t *testing.T) {
	store := newMemPhotoStore()
	svc := services.NewProductService(&mockProductRepo{}, store, nil, nil, zap.NewNop())

	body := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 1024)...)
	p, appErr := svc.CreateProduct(context.Background(), productInput("Frango"),
		&services.PhotoUpload{Filename: "frango.png", Size: int64(len(body)), Body: bytes.NewReader(body)})
	require.Nil(t, appErr)
	assert.True(t, strings.HasSuffix(p.Photo, ".png"))

	key := services.PhotoKeyPrefix + p.Photo
	assert.Equal(t, body, store.objects[key])
	assert.Equal(t, "image/png", store.types[key])
}

func TestCreateProduct_RejectsPhotos(t *testing.T) {
	cases := []struct {
		name string
		body []byte
		size int64
	}{
		{"wrong type", []byte("plain text, not an image"), 24},
		{"too large", pngHeader, services.MaxPhotoSize + 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newMemPhotoStore()
			repo := &mockProductRepo{}
			svc := services.NewProductService(repo, store, nil, nil, zap.NewNop())

			_, appErr := svc.CreateProduct(context.Background(), productInput("Frango"),
				&services.PhotoUpload{Size: tc.size, Body: bytes.NewReader(tc.body)})
			require.NotNil(t, appErr)
			assert.Equal(t, http.StatusUnprocessableEntity, appErr.Code)
			assert.Contains(t, appErr.Details, "photo")
			assert.Empty(t, store.objects)
			assert.Empty(t, repo.saved)
		})
	}
}

func TestCreateProduct_MissingFields(t *testing.T) {
	svc := services.NewProductService(&mockProductRepo{}, nil, nil, nil, zap.NewNop())

	_, appErr := svc.CreateProduct(context.Background(), &models.ProductInput{Name: ptr("Frango")}, nil)
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusUnprocessableEntity, appErr.Code)
	assert.Contains(t, appErr.Details, "price")
}

func TestUpdateProduct_KeepsSKUUnlessNameChanges(t *testing.T) {
	repo := &mockProductRepo{product: &models.Product{ID: 5, Name: "Queijo", SKU: "queijo-001", Enable: true}}
	svc := services.NewProductService(repo, nil, nil, nil, zap.NewNop())

	p, appErr := svc.UpdateProduct(context.Background(), 5, &models.ProductInput{Stock: ptr(3)}, nil)
	require.Nil(t, appErr)
	assert.Equal(t, "queijo-001", p.SKU)
	assert.Equal(t, 3, p.Stock)

	repo.skuCount = 1
	p, appErr = svc.UpdateProduct(context.Background(), 5, &models.ProductInput{Name: ptr("Queijo Minas")}, nil)
	require.Nil(t, appErr)
	assert.Equal(t, "queijo-minas-002", p.SKU)
}

func TestUpdateProduct_ReplacesPhoto(t *testing.T) {
	store := newMemPhotoStore()
	store.objects["products/old.png"] = pngHeader
	repo := &mockProductRepo{product: &models.Product{ID: 5, Name: "Queijo", Photo: "old.png"}}
	svc := services.NewProductService(repo, store, nil, nil, zap.NewNop())

	p, appErr := svc.UpdateProduct(context.Background(), 5, &models.ProductInput{},
		&services.PhotoUpload{Size: int64(len(pngHeader)), Body: bytes.NewReader(pngHeader)})
	require.Nil(t, appErr)
	assert.NotEqual(t, "old.png", p.Photo)
	assert.Equal(t, []string{"products/old.png"}, store.deleted)
}

func TestGetProduct_UsesCache(t *testing.T) {
	repo := &mockProductRepo{product: &models.Product{ID: 5, Name: "Queijo"}}
	svc := services.NewProductService(repo, nil, newMemCache(), nil, zap.NewNop())

	_, appErr := svc.GetProduct(context.Background(), 5)
	require.Nil(t, appErr)
	p, appErr := svc.GetProduct(context.Background(), 5)
	require.Nil(t, appErr)
	assert.Equal(t, "Queijo", p.Name)
	assert.Equal(t, 1, repo.findCalls)
}

func TestDeleteProduct_InvalidatesCache(t *testing.T) {
	c := newMemCache()
	c.list = []models.Product{{ID: 5}}
	svc := services.NewProductService(&mockProductRepo{}, nil, c, nil, zap.NewNop())

	require.Nil(t, svc.DeleteProduct(context.Background(), 5))
	assert.Nil(t, c.list)
}

func TestOpenPhoto(t *testing.T) {
	store := newMemPhotoStore()
	store.objects["products/abc.png"] = pngHeader
	store.types["products/abc.png"] = "image/png"
	svc := services.NewProductService(&mockProductRepo{}, store, nil, nil, zap.NewNop())

	obj, appErr := svc.OpenPhoto(context.Background(), "abc.png")
	require.Nil(t, appErr)
	defer obj.Body.Close()
	b, err := io.ReadAll(obj.Body)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, b)

	for _, name := range []string{"missing.png", "../secrets.env", ".env"} {
		_, appErr = svc.OpenPhoto(context.Background(), name)
		require.NotNil(t, appErr, name)
		assert.Equal(t, http.StatusNotFound, appErr.Code, name)
	}
}

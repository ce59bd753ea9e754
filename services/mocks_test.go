package services_test

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/joseguilhermeromano/Pastel360/models"
	awspkg "github.com/joseguilhermeromano/Pastel360/pkg/aws"
	"github.com/joseguilhermeromano/Pastel360/repository"
	"github.com/joseguilhermeromano/Pastel360/sender"
	"github.com/shopspring/decimal"
)

// ---- orders ----

type mockOrderRepo struct {
	order     *models.Order
	item      *models.OrderItem
	orders    []models.Order
	err       error
	deleted   []uint
	forced    []uint
	created   *models.OrderDraft
	patched   *models.OrderPatch
	createdCt int
}

func (m *mockOrderRepo) Create(_ context.Context, d *models.OrderDraft) (*models.Order, error) {
	m.created = d
	m.createdCt++
	return m.order, m.err
}
func (m *mockOrderRepo) Update(_ context.Context, _ uint, p *models.OrderPatch) (*models.Order, error) {
	m.patched = p
	return m.order, m.err
}
func (m *mockOrderRepo) FindByID(_ context.Context, _ uint) (*models.Order, error) {
	return m.order, m.err
}
func (m *mockOrderRepo) FindAll(_ context.Context) ([]models.Order, error) {
	return m.orders, m.err
}
func (m *mockOrderRepo) Delete(_ context.Context, id uint) error {
	m.deleted = append(m.deleted, id)
	return m.err
}
func (m *mockOrderRepo) ForceDelete(_ context.Context, id uint) error {
	m.forced = append(m.forced, id)
	return m.err
}
func (m *mockOrderRepo) Restore(_ context.Context, _ uint) (*models.Order, error) {
	return m.order, m.err
}
func (m *mockOrderRepo) FindItem(_ context.Context, _ uint) (*models.OrderItem, error) {
	return m.item, m.err
}

// ---- customers ----

type mockCustomerRepo struct {
	customer  *models.Customer
	customers []models.Customer
	exists    bool
	existsErr error
	createErr error
	updateErr error
	findErr   error
	deleteErr error
	created   *models.Customer
	updated   *models.Customer
}

func (m *mockCustomerRepo) Create(_ context.Context, c *models.Customer) error {
	m.created = c
	if m.createErr == nil {
		c.ID = 1
	}
	return m.createErr
}
func (m *mockCustomerRepo) Update(_ context.Context, c *models.Customer) error {
	m.updated = c
	return m.updateErr
}
func (m *mockCustomerRepo) FindByID(_ context.Context, _ uint) (*models.Customer, error) {
	return m.customer, m.findErr
}
func (m *mockCustomerRepo) FindAll(_ context.Context) ([]models.Customer, error) {
	return m.customers, m.findErr
}
func (m *mockCustomerRepo) Delete(_ context.Context, _ uint) error {
	return m.deleteErr
}
func (m *mockCustomerRepo) Exists(_ context.Context, _ uint) (bool, error) {
	return m.exists, m.existsErr
}

// ---- products ----

type mockProductRepo struct {
	product   *models.Product
	products  []models.Product
	missing   []uint
	skuCount  int64
	saveErrs  []error
	findErr   error
	deleteErr error
	saved     []string
	findCalls int
	listCalls int
}

func (m *mockProductRepo) nextSaveErr() error {
	if len(m.saveErrs) == 0 {
		return nil
	}
	err := m.saveErrs[0]
	m.saveErrs = m.saveErrs[1:]
	return err
}

func (m *mockProductRepo) Create(_ context.Context, p *models.Product) error {
	m.saved = append(m.saved, p.SKU)
	err := m.nextSaveErr()
	if err == nil {
		p.ID = 5
	}
	return err
}
func (m *mockProductRepo) Update(_ context.Context, p *models.Product) error {
	m.saved = append(m.saved, p.SKU)
	return m.nextSaveErr()
}
func (m *mockProductRepo) FindByID(_ context.Context, _ uint) (*models.Product, error) {
	m.findCalls++
	if m.findErr != nil {
		return nil, m.findErr
	}
	cp := *m.product
	return &cp, nil
}
func (m *mockProductRepo) FindAll(_ context.Context) ([]models.Product, error) {
	m.listCalls++
	return m.products, m.findErr
}
func (m *mockProductRepo) Delete(_ context.Context, _ uint) error {
	return m.deleteErr
}
func (m *mockProductRepo) MissingIDs(_ context.Context, _ []uint) ([]uint, error) {
	return m.missing, nil
}
func (m *mockProductRepo) CountSKUPrefix(_ context.Context, _ string) (int64, error) {
	return m.skuCount, nil
}

// ---- product cache ----

type memCache struct {
	items       map[uint]*models.Product
	list        []models.Product
	invalidated []uint
}

func newMemCache() *memCache { return &memCache{items: map[uint]*models.Product{}} }

func (c *memCache) Get(_ context.Context, id uint) (*models.Product, bool) {
	p, ok := c.items[id]
	return p, ok
}
func (c *memCache) Set(_ context.Context, p *models.Product) { c.items[p.ID] = p }
func (c *memCache) GetList(_ context.Context) ([]models.Product, bool) {
	return c.list, c.list != nil
}
func (c *memCache) SetList(_ context.Context, products []models.Product) { c.list = products }
func (c *memCache) Invalidate(_ context.Context, id uint) {
	delete(c.items, id)
	c.list = nil
	c.invalidated = append(c.invalidated, id)
}

// ---- photos ----

type memPhotoStore struct {
	objects map[string][]byte
	types   map[string]string
	deleted []string
	putErr  error
}

func newMemPhotoStore() *memPhotoStore {
	return &memPhotoStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (s *memPhotoStore) Put(_ context.Context, key, contentType string, body io.Reader, _ int64) error {
	if s.putErr != nil {
		return s.putErr
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.objects[key] = b
	s.types[key] = contentType
	return nil
}
func (s *memPhotoStore) Get(_ context.Context, key string) (*awspkg.Object, error) {
	b, ok := s.objects[key]
	if !ok {
		return nil, awspkg.ErrObjectNotFound
	}
	return &awspkg.Object{Body: io.NopCloser(bytes.NewReader(b)), ContentType: s.types[key], ContentLength: int64(len(b))}, nil
}
func (s *memPhotoStore) Delete(_ context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	delete(s.objects, key)
	return nil
}

// ---- notifications ----

type mockDispatcher struct {
	mu         sync.Mutex
	calls      int
	recipients []string
	err        error
}

func (m *mockDispatcher) Enqueue(_ context.Context, recipient string, _ *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.recipients = append(m.recipients, recipient)
	return m.err
}

type mockEmailSender struct {
	errs     []error
	calls    int
	to       string
	subject  string
	body     string
	resultID string
}

func (m *mockEmailSender) SendEmail(_ context.Context, to, subject, body string) (sender.SendResult, error) {
	m.calls++
	m.to, m.subject, m.body = to, subject, body
	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		if err != nil {
			return sender.SendResult{}, err
		}
	}
	return sender.SendResult{MessageID: m.resultID}, nil
}

type mockNotificationRepo struct {
	logs    []*models.NotificationLog
	saveErr error
	filter  models.NotificationFilter
}

func (m *mockNotificationRepo) SaveLog(_ context.Context, l *models.NotificationLog) error {
	m.logs = append(m.logs, l)
	return m.saveErr
}
func (m *mockNotificationRepo) GetLogs(_ context.Context, f models.NotificationFilter) ([]models.NotificationLog, int64, error) {
	m.filter = f
	out := make([]models.NotificationLog, 0, len(m.logs))
	for _, l := range m.logs {
		out = append(out, *l)
	}
	return out, int64(len(out)), nil
}

var _ repository.OrderRepository = (*mockOrderRepo)(nil)
var _ repository.CustomerRepository = (*mockCustomerRepo)(nil)
var _ repository.ProductRepository = (*mockProductRepo)(nil)
var _ repository.NotificationRepository = (*mockNotificationRepo)(nil)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr[T any](v T) *T { return &v }

func hydratedOrder() *models.Order {
	return &models.Order{
		ID:          42,
		CustomerID:  1,
		Status:      models.StatusPending,
		TotalAmount: dec("24.50"),
		Customer:    &models.Customer{ID: 1, Name: "Ana", Mail: "ana@example.com"},
		Items: []models.OrderItem{
			{ID: 1, OrderID: 42, ProductID: 1, Quantity: 2, UnitValue: dec("8.50"), TotalValue: dec("17.00")},
			{ID: 2, OrderID: 42, ProductID: 2, Quantity: 1, UnitValue: dec("7.50"), TotalValue: dec("7.50")},
		},
	}
}

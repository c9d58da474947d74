package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/DRSN-tech/online-store/internal/domain"
	"github.com/DRSN-tech/online-store/pkg/e"
)

// fakeStore — общее хранилище всех фейковых репозиториев одного теста.
type fakeStore struct {
	mu       sync.Mutex
	seq      int64
	products map[int64]domain.Product
	users    map[int64]domain.User
	reviews  []domain.Review
	orders   []domain.Order
	events   []OutboxEvent
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products: make(map[int64]domain.Product),
		users:    make(map[int64]domain.User),
	}
}

func (s *fakeStore) nextID() int64 {
	s.seq++
	return s.seq
}

func (s *fakeStore) addProduct(p *domain.Product) *domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *p
	stored.ID = s.nextID()
	stored.CreatedAt = time.Now()
	s.products[stored.ID] = stored
	return &stored
}

// snapshot копирует состояние для отката фейковой транзакции.
func (s *fakeStore) snapshot() *fakeStore {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := &fakeStore{
		seq:      s.seq,
		products: make(map[int64]domain.Product, len(s.products)),
		users:    make(map[int64]domain.User, len(s.users)),
		reviews:  append([]domain.Review(nil), s.reviews...),
		orders:   append([]domain.Order(nil), s.orders...),
		events:   append([]OutboxEvent(nil), s.events...),
	}
	for id, p := range s.products {
		copied.products[id] = p
	}
	for id, u := range s.users {
		copied.users[id] = u
	}
	return copied
}

func (s *fakeStore) restore(snap *fakeStore) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq = snap.seq
	s.products = snap.products
	s.users = snap.users
	s.reviews = snap.reviews
	s.orders = snap.orders
	s.events = snap.events
}

// fakeTrManager сериализует транзакции и откатывает хранилище при ошибке,
// как это делает настоящая БД.
type fakeTrManager struct {
	txMu  sync.Mutex
	store *fakeStore
}

func (m *fakeTrManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	snap := m.store.snapshot()
	if err := fn(ctx); err != nil {
		m.store.restore(snap)
		return err
	}
	return nil
}

type fakeProductRepo struct {
	store *fakeStore
}

func (f *fakeProductRepo) List(ctx context.Context) ([]domain.Product, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	var result []domain.Product
	for _, p := range f.store.products {
		if !p.IsArchived {
			result = append(result, p)
		}
	}
	return result, nil
}

func (f *fakeProductRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	p, ok := f.store.products[id]
	if !ok || p.IsArchived {
		return nil, e.ErrProductNotFound
	}
	return &p, nil
}

func (f *fakeProductRepo) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	return f.store.addProduct(product), nil
}

func (f *fakeProductRepo) Update(ctx context.Context, id int64, upd *ProductUpdate) (*domain.Product, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	p, ok := f.store.products[id]
	if !ok || p.IsArchived {
		return nil, e.ErrProductNotFound
	}

	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Manufacturer != nil {
		p.Manufacturer = *upd.Manufacturer
	}
	if upd.Category != nil {
		p.Category = *upd.Category
	}
	if upd.Description != nil {
		p.Description = *upd.Description
	}
	if upd.ImageURL != nil {
		p.ImageURL = *upd.ImageURL
	}
	if upd.Price != nil {
		p.Price = *upd.Price
	}
	if upd.Stock != nil {
		p.Stock = *upd.Stock
	}

	f.store.products[id] = p
	return &p, nil
}

func (f *fakeProductRepo) Archive(ctx context.Context, id int64) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	p, ok := f.store.products[id]
	if !ok || p.IsArchived {
		return e.ErrProductNotFound
	}
	p.IsArchived = true
	f.store.products[id] = p
	return nil
}

func (f *fakeProductRepo) SetImageURL(ctx context.Context, id int64, url string) (*domain.Product, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	p, ok := f.store.products[id]
	if !ok || p.IsArchived {
		return nil, e.ErrProductNotFound
	}
	p.ImageURL = url
	f.store.products[id] = p
	return &p, nil
}

func (f *fakeProductRepo) DecrementStock(ctx context.Context, id int64, quantity int64) (*domain.Product, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	p, ok := f.store.products[id]
	if !ok || p.IsArchived {
		return nil, e.ErrProductNotFound
	}
	if p.Stock < quantity {
		return nil, e.NewInsufficientStockError(p.ID, p.Name, p.Stock)
	}

	p.Stock -= quantity
	f.store.products[id] = p
	return &p, nil
}

type fakeUserRepo struct {
	store *fakeStore
}

func (f *fakeUserRepo) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	for _, existing := range f.store.users {
		if existing.Username == user.Username {
			return nil, e.ErrUsernameTaken
		}
	}

	stored := *user
	stored.ID = f.store.nextID()
	stored.CreatedAt = time.Now()
	f.store.users[stored.ID] = stored
	return &stored, nil
}

func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	for _, u := range f.store.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, e.ErrUserNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	u, ok := f.store.users[id]
	if !ok {
		return nil, e.ErrUserNotFound
	}
	return &u, nil
}

type fakeReviewRepo struct {
	store *fakeStore
}

func (f *fakeReviewRepo) Create(ctx context.Context, review *domain.Review) (*domain.Review, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	stored := *review
	stored.ID = f.store.nextID()
	stored.CreatedAt = time.Now()
	f.store.reviews = append(f.store.reviews, stored)
	return &stored, nil
}

func (f *fakeReviewRepo) ListByProduct(ctx context.Context, productID int64) ([]domain.Review, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	var result []domain.Review
	for _, r := range f.store.reviews {
		if r.ProductID == productID {
			result = append(result, r)
		}
	}
	return result, nil
}

type fakeOrderRepo struct {
	store *fakeStore
}

func (f *fakeOrderRepo) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	if order.IdempotencyKey != "" {
		for _, existing := range f.store.orders {
			if existing.IdempotencyKey == order.IdempotencyKey {
				return nil, e.ErrDuplicateOrder
			}
		}
	}

	stored := *order
	stored.ID = f.store.nextID()
	stored.CreatedAt = time.Now()
	f.store.orders = append(f.store.orders, stored)
	return &stored, nil
}

func (f *fakeOrderRepo) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	for _, o := range f.store.orders {
		if o.IdempotencyKey == key {
			return &o, nil
		}
	}
	return nil, e.ErrOrderNotFound
}

func (f *fakeOrderRepo) List(ctx context.Context) ([]domain.Order, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	result := make([]domain.Order, 0, len(f.store.orders))
	for i := len(f.store.orders) - 1; i >= 0; i-- {
		result = append(result, f.store.orders[i])
	}
	return result, nil
}

type fakeOutboxRepo struct {
	store *fakeStore
}

func (f *fakeOutboxRepo) Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	stored := *event
	stored.ID = f.store.nextID()
	stored.CreatedAt = time.Now()
	f.store.events = append(f.store.events, stored)
	return &stored, nil
}

func (f *fakeOutboxRepo) GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	var result []*OutboxEvent
	for i := range f.store.events {
		if len(result) == limit {
			break
		}
		if f.store.events[i].Status == Pending {
			f.store.events[i].Status = Processing
			picked := f.store.events[i]
			result = append(result, &picked)
		}
	}
	return result, nil
}

func (f *fakeOutboxRepo) MarkAsProcessed(ctx context.Context, id int64) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	for i := range f.store.events {
		if f.store.events[i].ID == id && f.store.events[i].Status == Processing {
			now := time.Now()
			f.store.events[i].Status = Processed
			f.store.events[i].ProcessedAt = &now
		}
	}
	return nil
}

// fakeCacheRepo хранит кэш в памяти и запоминает удалённые ключи.
type fakeCacheRepo struct {
	mu      sync.Mutex
	items   map[int64]ProductInfo
	deleted []int64
}

func newFakeCacheRepo() *fakeCacheRepo {
	return &fakeCacheRepo{items: make(map[int64]ProductInfo)}
}

func (f *fakeCacheRepo) GetProduct(ctx context.Context, id int64) (*ProductInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	info, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	return &info, nil
}

func (f *fakeCacheRepo) SetProduct(ctx context.Context, product *ProductInfo) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.items[product.ID] = *product
	return nil
}

func (f *fakeCacheRepo) DeleteProducts(ctx context.Context, ids []int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, id := range ids {
		delete(f.items, id)
		f.deleted = append(f.deleted, id)
	}
	return nil
}

// fakeImagesInfra выдаёт детерминированные ключи и запоминает компенсации.
type fakeImagesInfra struct {
	mu        sync.Mutex
	uploadErr error
	uploaded  []string
	cleanedUp []string
	uploadSeq int
}

func (f *fakeImagesInfra) UploadImage(ctx context.Context, req *UploadImageReq) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.uploadErr != nil {
		return "", f.uploadErr
	}

	f.uploadSeq++
	key := fmt.Sprintf("products/%d/%d.jpg", req.ProductID, f.uploadSeq)
	f.uploaded = append(f.uploaded, key)
	return key, nil
}

func (f *fakeImagesInfra) CleanupImage(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.cleanedUp = append(f.cleanedUp, key)
}

// nopLogger подавляет вывод в тестах.
type nopLogger struct{}

func (nopLogger) Debugf(format string, args ...interface{})            {}
func (nopLogger) Infof(format string, args ...interface{})             {}
func (nopLogger) Warnf(format string, args ...interface{})             {}
func (nopLogger) Errorf(err error, format string, args ...interface{}) {}

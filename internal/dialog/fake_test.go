package dialog

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/m3rciful/catalogbot/core/telegram/state"
	"github.com/m3rciful/catalogbot/internal/catalog"
)

type updateCall struct {
	ID    int64
	Input catalog.ProductInput
}

// fakeCatalog is an in-memory product store that records every call.
type fakeCatalog struct {
	mu       sync.Mutex
	products map[int64]catalog.Product
	nextID   int64

	listErr, getErr, createErr, updateErr, deleteErr error

	// getHook runs before GetProduct answers, outside the lock.
	getHook func(id int64)

	calls   []string
	created []catalog.ProductInput
	updated []updateCall
}

func newFakeCatalog(products ...catalog.Product) *fakeCatalog {
	f := &fakeCatalog{products: map[int64]catalog.Product{}, nextID: 100}
	for _, p := range products {
		f.products[p.ID] = p
	}
	return f
}

func (f *fakeCatalog) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeCatalog) ListProducts(context.Context) ([]catalog.Product, error) {
	f.record("list")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]catalog.Product, 0, len(f.products))
	for id := int64(0); id <= f.nextID; id++ {
		if p, ok := f.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeCatalog) GetProduct(_ context.Context, id int64) (catalog.Product, error) {
	f.record("get")
	if f.getHook != nil {
		f.getHook(id)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return catalog.Product{}, f.getErr
	}
	p, ok := f.products[id]
	if !ok {
		return catalog.Product{}, catalog.ErrNotFound
	}
	return p, nil
}

func (f *fakeCatalog) CreateProduct(_ context.Context, in catalog.ProductInput) (catalog.Product, error) {
	f.record("create")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, in)
	if f.createErr != nil {
		return catalog.Product{}, f.createErr
	}
	f.nextID++
	p := catalog.Product{ID: f.nextID, Name: in.Name, Description: in.Description, Price: in.Price}
	f.products[p.ID] = p
	return p, nil
}

func (f *fakeCatalog) UpdateProduct(_ context.Context, id int64, in catalog.ProductInput) (catalog.Product, error) {
	f.record("update")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = append(f.updated, updateCall{ID: id, Input: in})
	if f.updateErr != nil {
		return catalog.Product{}, f.updateErr
	}
	if _, ok := f.products[id]; !ok {
		return catalog.Product{}, catalog.ErrNotFound
	}
	p := catalog.Product{ID: id, Name: in.Name, Description: in.Description, Price: in.Price}
	f.products[id] = p
	return p, nil
}

func (f *fakeCatalog) DeleteProduct(_ context.Context, id int64) error {
	f.record("delete")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.products[id]; !ok {
		return catalog.ErrNotFound
	}
	delete(f.products, id)
	return nil
}

// failingStore wraps a store and fails the selected operations.
type failingStore struct {
	state.Store
	failGet, failSave bool
}

var errStoreDown = errors.New("store unavailable")

func (s *failingStore) Get(ctx context.Context, userID int64) (*state.Session, bool, error) {
	if s.failGet {
		return nil, false, errStoreDown
	}
	return s.Store.Get(ctx, userID)
}

func (s *failingStore) Save(ctx context.Context, userID int64, sess *state.Session) error {
	if s.failSave {
		return errStoreDown
	}
	return s.Store.Save(ctx, userID, sess)
}

// slowStore widens the window between reading a session and writing it back.
type slowStore struct {
	state.Store
	delay time.Duration
}

func (s *slowStore) Get(ctx context.Context, userID int64) (*state.Session, bool, error) {
	sess, ok, err := s.Store.Get(ctx, userID)
	time.Sleep(s.delay)
	return sess, ok, err
}

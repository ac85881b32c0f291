package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/invoice-dashboard/internal/model"
	"github.com/iliyamo/invoice-dashboard/internal/queue"
	"github.com/iliyamo/invoice-dashboard/internal/repository"
	"github.com/iliyamo/invoice-dashboard/internal/seed"
	"github.com/iliyamo/invoice-dashboard/internal/seed/seedtest"
)

type fakeStore struct {
	created   []*model.Invoice
	updateErr error
	deleteErr error
	createErr error
}

func (s *fakeStore) CreateInvoice(_ context.Context, inv *model.Invoice) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created = append(s.created, inv)
	return nil
}

func (s *fakeStore) UpdateInvoice(context.Context, uuid.UUID, uuid.UUID, int64, model.InvoiceStatus) error {
	return s.updateErr
}

func (s *fakeStore) DeleteInvoice(context.Context, uuid.UUID) error { return s.deleteErr }

type recordingInvalidator struct {
	paths []string
	err   error
}

func (r *recordingInvalidator) Invalidate(_ context.Context, paths ...string) error {
	r.paths = append(r.paths, paths...)
	return r.err
}

type recordingPublisher struct {
	events []queue.InvoiceEvent
	err    error
}

func (r *recordingPublisher) Publish(_ context.Context, ev queue.InvoiceEvent) error {
	r.events = append(r.events, ev)
	return r.err
}

var fixedNow = time.Date(2024, 3, 15, 22, 30, 0, 0, time.UTC)

func newTestActions(store InvoiceStore) (*InvoiceActions, *recordingInvalidator, *recordingPublisher) {
	inv := &recordingInvalidator{}
	pub := &recordingPublisher{}
	a := NewInvoiceActions(store, inv, pub)
	a.Now = func() time.Time { return fixedNow }
	return a, inv, pub
}

func validInput() InvoiceInput {
	return InvoiceInput{CustomerID: seed.Customers[0].ID.String(), Amount: "157.95", Status: "pending"}
}

func TestCreate_StoresCentsAndToday(t *testing.T) {
	store := &fakeStore{}
	a, inv, pub := newTestActions(store)

	res := a.Create(context.Background(), validInput())

	require.True(t, res.OK)
	assert.Equal(t, KindNone, res.Kind)
	assert.Equal(t, InvoicesPath, res.Redirect)
	require.Len(t, store.created, 1)
	assert.Equal(t, int64(15795), store.created[0].Amount)
	assert.Equal(t, "2024-03-15", store.created[0].Date.String())
	assert.Equal(t, model.StatusPending, store.created[0].Status)
	assert.Equal(t, store.created[0].ID.String(), res.InvoiceID)

	assert.Equal(t, []string{InvoicesPath, DashboardPath}, inv.paths)
	require.Len(t, pub.events, 1)
	assert.Equal(t, queue.ActionCreated, pub.events[0].Action)
	assert.Equal(t, int64(15795), pub.events[0].AmountCents)
}

func TestCreate_Validation(t *testing.T) {
	cases := map[string]struct {
		in     InvoiceInput
		fields []string
	}{
		"empty":           {InvoiceInput{}, []string{"customerId", "amount", "status"}},
		"bad customer":    {InvoiceInput{CustomerID: "abc", Amount: "10", Status: "paid"}, []string{"customerId"}},
		"unparsable":      {InvoiceInput{CustomerID: seed.Customers[0].ID.String(), Amount: "ten", Status: "paid"}, []string{"amount"}},
		"zero amount":     {InvoiceInput{CustomerID: seed.Customers[0].ID.String(), Amount: "0", Status: "paid"}, []string{"amount"}},
		"negative amount": {InvoiceInput{CustomerID: seed.Customers[0].ID.String(), Amount: "-5", Status: "paid"}, []string{"amount"}},
		"unknown status":  {InvoiceInput{CustomerID: seed.Customers[0].ID.String(), Amount: "5", Status: "overdue"}, []string{"status"}},
		"sub-cent amount": {InvoiceInput{CustomerID: seed.Customers[0].ID.String(), Amount: "5.001", Status: "paid"}, []string{"amount"}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			store := &fakeStore{}
			a, inv, pub := newTestActions(store)

			res := a.Create(context.Background(), tc.in)

			assert.False(t, res.OK)
			assert.Equal(t, KindValidation, res.Kind)
			assert.Equal(t, "Missing Fields. Failed to Create Invoice.", res.Message)
			for _, f := range tc.fields {
				assert.NotEmpty(t, res.Errors[f], f)
			}
			assert.Len(t, res.Errors, len(tc.fields))
			assert.Empty(t, store.created)
			assert.Empty(t, inv.paths)
			assert.Empty(t, pub.events)
		})
	}
}

func TestCreate_StorageError(t *testing.T) {
	a, inv, _ := newTestActions(&fakeStore{createErr: errors.New("disk full")})

	res := a.Create(context.Background(), validInput())

	assert.Equal(t, KindStorage, res.Kind)
	assert.Equal(t, "Database Error: Failed to Create Invoice.", res.Message)
	assert.Empty(t, inv.paths)
}

func TestCreate_PostCommitFailuresAreIgnored(t *testing.T) {
	store := &fakeStore{}
	inv := &recordingInvalidator{err: errors.New("redis down")}
	pub := &recordingPublisher{err: errors.New("broker down")}
	a := NewInvoiceActions(store, inv, pub)

	res := a.Create(context.Background(), validInput())

	assert.True(t, res.OK)
	assert.Len(t, store.created, 1)
}

func TestUpdate(t *testing.T) {
	id := uuid.New()

	a, _, pub := newTestActions(&fakeStore{})
	res := a.Update(context.Background(), id, validInput())
	assert.True(t, res.OK)
	assert.Equal(t, InvoicesPath, res.Redirect)
	require.Len(t, pub.events, 1)
	assert.Equal(t, queue.ActionUpdated, pub.events[0].Action)

	a, _, _ = newTestActions(&fakeStore{updateErr: repository.ErrInvoiceNotFound})
	res = a.Update(context.Background(), id, validInput())
	assert.Equal(t, KindNotFound, res.Kind)

	a, _, _ = newTestActions(&fakeStore{updateErr: &repository.FetchError{Op: "failed to update invoice"}})
	res = a.Update(context.Background(), id, validInput())
	assert.Equal(t, KindStorage, res.Kind)
	assert.Equal(t, "Database Error: Failed to Update Invoice.", res.Message)

	a, _, _ = newTestActions(&fakeStore{})
	res = a.Update(context.Background(), id, InvoiceInput{CustomerID: seed.Customers[0].ID.String(), Status: "paid"})
	assert.Equal(t, KindValidation, res.Kind)
	assert.Equal(t, "Missing Fields. Failed to Update Invoice.", res.Message)
	assert.NotEmpty(t, res.Errors["amount"])
}

func TestDelete(t *testing.T) {
	a, inv, pub := newTestActions(&fakeStore{})
	res := a.Delete(context.Background(), uuid.New())
	assert.True(t, res.OK)
	assert.Equal(t, "Deleted Invoice.", res.Message)
	assert.Equal(t, []string{InvoicesPath, DashboardPath}, inv.paths)
	require.Len(t, pub.events, 1)
	assert.Equal(t, queue.ActionDeleted, pub.events[0].Action)
	assert.Empty(t, pub.events[0].CustomerID)

	a, _, _ = newTestActions(&fakeStore{deleteErr: errors.New("locked")})
	res = a.Delete(context.Background(), uuid.New())
	assert.Equal(t, KindStorage, res.Kind)
	assert.Equal(t, "Database Error: Failed to Delete Invoice.", res.Message)
}

func TestActions_AgainstSeededDatabase(t *testing.T) {
	db := seedtest.Open(t)
	repo := repository.NewInvoiceRepo(db)
	a, _, _ := newTestActions(repo)
	ctx := context.Background()

	res := a.Create(ctx, InvoiceInput{CustomerID: seed.Customers[4].ID.String(), Amount: "12.34", Status: "paid"})
	require.True(t, res.OK, res.Message)

	stored, err := repo.GetInvoice(ctx, uuid.MustParse(res.InvoiceID))
	require.NoError(t, err)
	assert.Equal(t, int64(1234), stored.Amount)
	assert.Equal(t, "2024-03-15", stored.Date.String())

	res = a.Update(ctx, uuid.New(), validInput())
	assert.Equal(t, KindNotFound, res.Kind)

	res = a.Delete(ctx, uuid.New())
	assert.True(t, res.OK)
	assert.Equal(t, "Deleted Invoice.", res.Message)
}

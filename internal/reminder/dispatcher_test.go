package reminder

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urbantrend/cart-recall/internal/model"
	"github.com/urbantrend/cart-recall/internal/repo"
)

type fakeUserRepo struct {
	mu sync.Mutex

	eligible    []model.User
	eligibleErr error

	recordErr   error
	recordedIDs []int64
}

var _ repo.UserRepository = (*fakeUserRepo)(nil)

func (f *fakeUserRepo) FindEligibleUsers(ctx context.Context, threshold time.Duration) ([]model.User, error) {
	return f.eligible, f.eligibleErr
}

func (f *fakeUserRepo) UpdateLastSeen(ctx context.Context, contact string) error {
	return errors.New("not implemented")
}

func (f *fakeUserRepo) RecordReminderSent(ctx context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.recordErr != nil {
		return f.recordErr
	}
	f.recordedIDs = append(f.recordedIDs, userID)
	return nil
}

func (f *fakeUserRepo) ListUsers(ctx context.Context) ([]model.User, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeUserRepo) recorded() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.recordedIDs...)
}

type fakeCatalog struct {
	mu sync.Mutex

	products map[int64]model.Product
	errFor   map[int64]error

	gotIDs [][]int64
}

var _ repo.CatalogRepository = (*fakeCatalog)(nil)

func (f *fakeCatalog) FindProductsByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.gotIDs = append(f.gotIDs, append([]int64(nil), ids...))

	var out []model.Product
	for _, id := range ids {
		if err, bad := f.errFor[id]; bad {
			return nil, err
		}
		if p, ok := f.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeCatalog) FindFAQEntries(ctx context.Context) ([]model.FAQEntry, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeCatalog) lookups() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.gotIDs)
}

type fakeSender struct {
	mu sync.Mutex

	err   error
	sends []sentText
}

type sentText struct {
	contact string
	text    string
}

func (f *fakeSender) SendText(ctx context.Context, contact, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.sends = append(f.sends, sentText{contact: contact, text: text})
	return "remote-1", nil
}

func (f *fakeSender) sent() []sentText {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentText(nil), f.sends...)
}

func mustPrice(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func anaFixture(t *testing.T) (model.User, *fakeCatalog) {
	t.Helper()

	ana := model.User{
		ID:          7,
		Name:        "Ana",
		Contact:     "+5511999990000",
		LastSeen:    time.Now().Add(-6 * 24 * time.Hour),
		CartItemIDs: []int64{10, 11},
	}

	catalog := &fakeCatalog{products: map[int64]model.Product{
		10: {ID: 10, Name: "Camisa", Price: mustPrice(t, "49.90"), Link: "https://loja.example/p/10"},
		11: {ID: 11, Name: "Calça", Price: mustPrice(t, "89.90"), Link: "https://loja.example/p/11"},
	}}

	return ana, catalog
}

func TestDispatch_EndToEnd_RecordsAfterSend(t *testing.T) {
	t.Parallel()

	ana, catalog := anaFixture(t)
	users := &fakeUserRepo{}
	sender := &fakeSender{}

	var hookUserID int64
	var hookRemoteID string

	d := NewDispatcher(users, catalog, sender, 5*24*time.Hour, 2).
		WithRecordedHook(func(ctx context.Context, userID int64, remoteID string, sentAt time.Time) {
			hookUserID = userID
			hookRemoteID = remoteID
		})

	res := d.Dispatch(context.Background(), ana)
	require.Equal(t, StatusRecorded, res.Status)

	sends := sender.sent()
	require.Len(t, sends, 1)
	assert.Equal(t, ana.Contact, sends[0].contact)
	assert.Contains(t, sends[0].text, "Olá Ana")
	assert.Contains(t, sends[0].text, "Camisa")
	assert.Contains(t, sends[0].text, "49.90")
	assert.Contains(t, sends[0].text, "Calça")
	assert.Contains(t, sends[0].text, "89.90")
	assert.Contains(t, sends[0].text, "5 dias")

	assert.Equal(t, []int64{7}, users.recorded())
	assert.Equal(t, int64(7), hookUserID)
	assert.Equal(t, "remote-1", hookRemoteID)

	// One batch lookup per user, not one per item.
	require.Equal(t, 1, catalog.lookups())
	assert.Equal(t, []int64{10, 11}, catalog.gotIDs[0])
}

func TestDispatch_EmptyCart_SkipsWithoutStoreOrTransportCalls(t *testing.T) {
	t.Parallel()

	users := &fakeUserRepo{}
	catalog := &fakeCatalog{}
	sender := &fakeSender{}

	d := NewDispatcher(users, catalog, sender, 5*24*time.Hour, 1)

	res := d.Dispatch(context.Background(), model.User{ID: 1, Name: "Bia", Contact: "+55"})
	require.Equal(t, StatusSkipped, res.Status)
	assert.Equal(t, "empty cart", res.Reason)

	assert.Zero(t, catalog.lookups())
	assert.Empty(t, sender.sent())
	assert.Empty(t, users.recorded())
}

func TestDispatch_StaleCatalog_Skips(t *testing.T) {
	t.Parallel()

	users := &fakeUserRepo{}
	catalog := &fakeCatalog{products: map[int64]model.Product{}}
	sender := &fakeSender{}

	d := NewDispatcher(users, catalog, sender, 5*24*time.Hour, 1)

	res := d.Dispatch(context.Background(), model.User{ID: 1, Name: "Bia", Contact: "+55", CartItemIDs: []int64{99}})
	require.Equal(t, StatusSkipped, res.Status)
	assert.Equal(t, "no products resolved", res.Reason)

	assert.Empty(t, sender.sent())
	assert.Empty(t, users.recorded())
}

func TestDispatch_SendFailure_LeavesStateUntouched(t *testing.T) {
	t.Parallel()

	ana, catalog := anaFixture(t)
	users := &fakeUserRepo{}
	sender := &fakeSender{err: errors.New("transport down")}

	d := NewDispatcher(users, catalog, sender, 5*24*time.Hour, 1)

	res := d.Dispatch(context.Background(), ana)
	require.Equal(t, StatusFailed, res.Status)
	assert.ErrorContains(t, res.Err, "transport down")

	// No record: the user remains eligible for the next cycle.
	assert.Empty(t, users.recorded())
}

func TestDispatch_AlreadyRecorded_IsSkipNotFailure(t *testing.T) {
	t.Parallel()

	ana, catalog := anaFixture(t)
	users := &fakeUserRepo{recordErr: repo.ErrAlreadyRecorded}
	sender := &fakeSender{}

	d := NewDispatcher(users, catalog, sender, 5*24*time.Hour, 1)

	res := d.Dispatch(context.Background(), ana)
	require.Equal(t, StatusSkipped, res.Status)
	assert.Equal(t, "already recorded", res.Reason)
}

func TestDispatch_RecordFailure_IsFailure(t *testing.T) {
	t.Parallel()

	ana, catalog := anaFixture(t)
	users := &fakeUserRepo{recordErr: errors.New("store down")}
	sender := &fakeSender{}

	d := NewDispatcher(users, catalog, sender, 5*24*time.Hour, 1)

	res := d.Dispatch(context.Background(), ana)
	require.Equal(t, StatusFailed, res.Status)
	assert.ErrorContains(t, res.Err, "store down")
}

func TestCycle_DetectorError_AbortsWholeCycle(t *testing.T) {
	t.Parallel()

	users := &fakeUserRepo{eligibleErr: errors.New("store unreachable")}
	catalog := &fakeCatalog{}
	sender := &fakeSender{}

	d := NewDispatcher(users, catalog, sender, 5*24*time.Hour, 2)

	err := d.Cycle(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "store unreachable")

	assert.Zero(t, catalog.lookups())
	assert.Empty(t, sender.sent())
}

func TestCycle_PerUserFailureIsIsolated(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	catalog := &fakeCatalog{
		products: map[int64]model.Product{
			1: {ID: 1, Name: "Boné", Price: mustPrice(t, "29.90"), Link: "https://loja.example/p/1"},
			3: {ID: 3, Name: "Meia", Price: mustPrice(t, "9.90"), Link: "https://loja.example/p/3"},
		},
		errFor: map[int64]error{2: boom},
	}

	users := &fakeUserRepo{eligible: []model.User{
		{ID: 101, Name: "Ana", Contact: "+551", CartItemIDs: []int64{1}},
		{ID: 102, Name: "Bruno", Contact: "+552", CartItemIDs: []int64{2}},
		{ID: 103, Name: "Carla", Contact: "+553", CartItemIDs: []int64{3}},
	}}
	sender := &fakeSender{}

	d := NewDispatcher(users, catalog, sender, 5*24*time.Hour, 2)

	err := d.Cycle(context.Background())
	require.NoError(t, err)

	recorded := users.recorded()
	assert.ElementsMatch(t, []int64{101, 103}, recorded)
	assert.Len(t, sender.sent(), 2)
}

func TestCycle_EmptyEligibleSet_NoWork(t *testing.T) {
	t.Parallel()

	users := &fakeUserRepo{}
	catalog := &fakeCatalog{}
	sender := &fakeSender{}

	d := NewDispatcher(users, catalog, sender, 5*24*time.Hour, 2)

	require.NoError(t, d.Cycle(context.Background()))
	assert.Zero(t, catalog.lookups())
	assert.Empty(t, sender.sent())
}

func TestDispatch_WindowDaysFloorsToOne(t *testing.T) {
	t.Parallel()

	users := &fakeUserRepo{}
	catalog := &fakeCatalog{products: map[int64]model.Product{
		1: {ID: 1, Name: "Boné", Price: mustPrice(t, "29.90"), Link: "https://loja.example/p/1"},
	}}
	sender := &fakeSender{}

	d := NewDispatcher(users, catalog, sender, time.Hour, 1)

	res := d.Dispatch(context.Background(), model.User{ID: 1, Name: "Bia", Contact: "+55", CartItemIDs: []int64{1}})
	require.Equal(t, StatusRecorded, res.Status)

	sends := sender.sent()
	require.Len(t, sends, 1)
	assert.True(t, strings.Contains(sends[0].text, "1 dias") || strings.Contains(sends[0].text, "1 dia"))
}

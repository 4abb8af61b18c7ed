package console

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/giftshop-console/internal/model"
	"github.com/d60-Lab/giftshop-console/internal/repository"
	"github.com/d60-Lab/giftshop-console/internal/session"
	"github.com/d60-Lab/giftshop-console/internal/status"
)

type updateCall struct {
	orderID    int64
	status     status.OrderStatus
	trackingID *string
}

// fakeOrderRepo 可编程的订单仓储桩
type fakeOrderRepo struct {
	mu        sync.Mutex
	listCalls []repository.OrderQuery
	listFn    func(call int, q repository.OrderQuery) ([]model.Order, int64, error)
	getFn     func(orderID int64) (*model.Order, error)
	updateErr error
	updates   []updateCall
}

func (f *fakeOrderRepo) List(_ context.Context, q repository.OrderQuery) ([]model.Order, int64, error) {
	f.mu.Lock()
	f.listCalls = append(f.listCalls, q)
	call := len(f.listCalls)
	fn := f.listFn
	f.mu.Unlock()
	if fn != nil {
		return fn(call, q)
	}
	return []model.Order{{ID: 1, Status: "pending"}}, 1, nil
}

func (f *fakeOrderRepo) Get(_ context.Context, orderID int64) (*model.Order, error) {
	if f.getFn != nil {
		return f.getFn(orderID)
	}
	return &model.Order{ID: orderID}, nil
}

func (f *fakeOrderRepo) UpdateStatus(_ context.Context, orderID int64, s status.OrderStatus, trackingID *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, updateCall{orderID: orderID, status: s, trackingID: trackingID})
	return f.updateErr
}

func (f *fakeOrderRepo) calls() []repository.OrderQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]repository.OrderQuery, len(f.listCalls))
	copy(out, f.listCalls)
	return out
}

func newTestController(repo *fakeOrderRepo, elevated bool) *ListController {
	return NewListController(repo, session.StaticRoleProvider(elevated), 10*time.Millisecond)
}

func TestFetchReplacesCache(t *testing.T) {
	repo := &fakeOrderRepo{}
	c := newTestController(repo, false)

	c.Fetch(context.Background())
	require.Len(t, c.Orders(), 1)
	assert.EqualValues(t, 1, c.Total())
	assert.NoError(t, c.LoadErr())
}

func TestFetchFailureKeepsPriorCache(t *testing.T) {
	repo := &fakeOrderRepo{}
	c := newTestController(repo, false)
	ctx := context.Background()

	c.Fetch(ctx)
	require.Len(t, c.Orders(), 1)

	repo.mu.Lock()
	repo.listFn = func(int, repository.OrderQuery) ([]model.Order, int64, error) {
		return nil, 0, errors.New("backend down")
	}
	repo.mu.Unlock()

	c.Fetch(ctx)
	assert.Len(t, c.Orders(), 1, "prior data remains visible")
	assert.Error(t, c.LoadErr())

	// 恢复后错误标记清除
	repo.mu.Lock()
	repo.listFn = nil
	repo.mu.Unlock()
	c.Fetch(ctx)
	assert.NoError(t, c.LoadErr())
}

func TestFiltersResetPageToOne(t *testing.T) {
	repo := &fakeOrderRepo{}
	c := newTestController(repo, false)
	ctx := context.Background()

	c.ChangePage(ctx, 5, 20)
	require.Equal(t, 5, c.Page())

	c.ChangeStatusFilter(ctx, status.Shipped)
	assert.Equal(t, 1, c.Page())

	c.ChangePage(ctx, 3, 20)
	c.SearchNow(ctx, "alice", "")
	assert.Equal(t, 1, c.Page())

	calls := repo.calls()
	last := calls[len(calls)-1]
	assert.Equal(t, 1, last.Page)
	assert.Equal(t, "alice", last.CustomerName)
}

func TestClearFilters(t *testing.T) {
	repo := &fakeOrderRepo{}
	c := newTestController(repo, false)
	ctx := context.Background()

	c.SearchNow(ctx, "alice", "0300")
	c.ChangeStatusFilter(ctx, status.Pending)
	c.ClearFilters(ctx)

	calls := repo.calls()
	last := calls[len(calls)-1]
	assert.Equal(t, repository.OrderQuery{Page: 1, Limit: 20}, last)
}

func TestPageFromOffset(t *testing.T) {
	assert.Equal(t, 1, PageFromOffset(0, 20))
	assert.Equal(t, 2, PageFromOffset(20, 20))
	assert.Equal(t, 3, PageFromOffset(45, 20))
	assert.Equal(t, 1, PageFromOffset(10, 0))
}

func TestSearchDebounce(t *testing.T) {
	repo := &fakeOrderRepo{}
	c := NewListController(repo, session.StaticRoleProvider(false), 50*time.Millisecond)
	ctx := context.Background()

	// 快速连续输入只应触发一次查询
	c.Search(ctx, "a", "")
	c.Search(ctx, "al", "")
	c.Search(ctx, "ali", "")

	assert.Empty(t, repo.calls(), "no fetch before quiet window")

	require.Eventually(t, func() bool {
		return len(repo.calls()) == 1
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, "ali", repo.calls()[0].CustomerName)
}

func TestStaleFetchDiscarded(t *testing.T) {
	// 请求 #1 慢、请求 #2 快：#2 先返回，#1 后到必须被丢弃
	gates := map[int]chan struct{}{1: make(chan struct{}), 2: make(chan struct{})}
	started := make(chan int, 2)

	repo := &fakeOrderRepo{}
	repo.listFn = func(call int, q repository.OrderQuery) ([]model.Order, int64, error) {
		started <- call
		<-gates[call]
		return []model.Order{{ID: int64(call), CustomerName: fmt.Sprintf("result-%d", call)}}, int64(call), nil
	}
	c := newTestController(repo, false)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.Fetch(ctx)
	}()
	require.Equal(t, 1, <-started)

	wg.Add(1)
	go func() {
		defer wg.Done()
		c.Fetch(ctx)
	}()
	require.Equal(t, 2, <-started)

	close(gates[2]) // #2 先返回
	require.Eventually(t, func() bool { return c.Total() == 2 }, time.Second, time.Millisecond)

	close(gates[1]) // 过期的 #1 后到
	wg.Wait()

	require.Len(t, c.Orders(), 1)
	assert.EqualValues(t, 2, c.Total(), "latest-initiated fetch wins")
	assert.Equal(t, "result-2", c.Orders()[0].CustomerName)
}

func TestOpenStatusDialogUsesRole(t *testing.T) {
	repo := &fakeOrderRepo{}
	order := model.Order{ID: 7, Status: "delivered"}

	c := newTestController(repo, false)
	c.OpenStatusDialog(context.Background(), order)
	opts := c.Dialog().Options()
	require.Len(t, opts, 2)
	assert.True(t, opts[1].Disabled)

	c = newTestController(repo, true)
	c.OpenStatusDialog(context.Background(), order)
	opts = c.Dialog().Options()
	require.Len(t, opts, 2)
	assert.False(t, opts[1].Disabled)
}

func TestSubmitStatusChangeCommitsAndRefetches(t *testing.T) {
	repo := &fakeOrderRepo{}
	c := newTestController(repo, false)
	ctx := context.Background()

	c.OpenStatusDialog(ctx, model.Order{ID: 7, Status: "processing"})
	err := c.SubmitStatusChange(ctx, "shipped", "ABC123")
	require.NoError(t, err)

	repo.mu.Lock()
	require.Len(t, repo.updates, 1)
	upd := repo.updates[0]
	repo.mu.Unlock()
	assert.EqualValues(t, 7, upd.orderID)
	assert.Equal(t, status.Shipped, upd.status)
	require.NotNil(t, upd.trackingID)
	assert.Equal(t, "ABC123", *upd.trackingID)

	assert.Equal(t, DialogClosed, c.Dialog().State())
	assert.Len(t, repo.calls(), 1, "list refetched after successful commit")
}

func TestSubmitStatusChangeOmitsEmptyTracking(t *testing.T) {
	repo := &fakeOrderRepo{}
	c := newTestController(repo, false)
	ctx := context.Background()

	c.OpenStatusDialog(ctx, model.Order{ID: 3, Status: "pending"})
	require.NoError(t, c.SubmitStatusChange(ctx, "processing", ""))

	repo.mu.Lock()
	defer repo.mu.Unlock()
	require.Len(t, repo.updates, 1)
	assert.Nil(t, repo.updates[0].trackingID)
}

func TestValidationFailureMakesNoNetworkCall(t *testing.T) {
	repo := &fakeOrderRepo{}
	c := newTestController(repo, false)
	ctx := context.Background()

	c.OpenStatusDialog(ctx, model.Order{ID: 3, Status: "processing"})
	err := c.SubmitStatusChange(ctx, "shipped", "   ")
	assert.ErrorIs(t, err, ErrTrackingIDRequired)

	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.Empty(t, repo.updates)
	assert.Empty(t, repo.listCalls, "no refetch on local validation failure")
}

func TestCommitFailureKeepsDialogOpenNoRefetch(t *testing.T) {
	repo := &fakeOrderRepo{updateErr: errors.New("order gone")}
	c := newTestController(repo, false)
	ctx := context.Background()

	c.OpenStatusDialog(ctx, model.Order{ID: 9, Status: "processing"})
	err := c.SubmitStatusChange(ctx, "shipped", "T-1")
	require.Error(t, err)

	assert.Equal(t, DialogOpen, c.Dialog().State())
	assert.Equal(t, "T-1", c.Dialog().TrackingID(), "submitted values retained for retry")
	assert.Empty(t, repo.calls(), "list untouched until a successful commit")
}

func TestExpandDetail(t *testing.T) {
	repo := &fakeOrderRepo{getFn: func(id int64) (*model.Order, error) {
		return &model.Order{ID: id, CustomerName: "Bob"}, nil
	}}
	c := newTestController(repo, false)

	require.NoError(t, c.ExpandDetail(context.Background(), 42))
	require.NotNil(t, c.Detail())
	assert.EqualValues(t, 42, c.Detail().ID)
}

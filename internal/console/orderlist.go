package console

import (
	"context"
	"sync"
	"time"

	"github.com/d60-Lab/giftshop-console/internal/model"
	"github.com/d60-Lab/giftshop-console/internal/repository"
	"github.com/d60-Lab/giftshop-console/internal/session"
	"github.com/d60-Lab/giftshop-console/internal/status"
)

// DefaultDebounce 自由输入搜索的防抖间隔
const DefaultDebounce = 300 * time.Millisecond

// OrderRepository 列表控制器需要的订单仓储能力（消费方接口）
type OrderRepository interface {
	List(ctx context.Context, q repository.OrderQuery) ([]model.Order, int64, error)
	Get(ctx context.Context, orderID int64) (*model.Order, error)
	UpdateStatus(ctx context.Context, orderID int64, s status.OrderStatus, trackingID *string) error
}

// ListController 订单列表视图控制器：分页/过滤/搜索与状态变更编排。
// 缓存的列表与详情只归本控制器所有；刷新时整体替换，从不原地打补丁。
type ListController struct {
	mu    sync.Mutex
	repo  OrderRepository
	roles session.RoleProvider

	debounce time.Duration
	timer    *time.Timer

	page  int // 1-based
	rows  int
	total int64

	orders  []model.Order
	detail  *model.Order
	loadErr error

	searchName   string
	searchPhone  string
	statusFilter status.OrderStatus

	// 单调递增的请求序号；只有最近发起的请求结果会被采纳
	fetchSeq uint64

	dialog *Dialog
	target *model.Order
}

// NewListController 创建列表控制器；debounce<=0 时使用 DefaultDebounce
func NewListController(repo OrderRepository, roles session.RoleProvider, debounce time.Duration) *ListController {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &ListController{
		repo:     repo,
		roles:    roles,
		debounce: debounce,
		page:     1,
		rows:     20,
		dialog:   NewDialog(),
	}
}

// Fetch 按当前条件查询一页订单。
// 成功则整体替换缓存；失败保留旧数据并记录非致命的加载错误。
// 过期响应（发起后又有新请求）直接丢弃，保证最近发起者胜出。
func (c *ListController) Fetch(ctx context.Context) {
	c.mu.Lock()
	c.fetchSeq++
	seq := c.fetchSeq
	q := repository.OrderQuery{
		Page:          c.page,
		Limit:         c.rows,
		CustomerName:  c.searchName,
		CustomerPhone: c.searchPhone,
		Status:        c.statusFilter,
	}
	c.mu.Unlock()

	orders, total, err := c.repo.List(ctx, q)

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.fetchSeq {
		return // 已被更新的请求取代
	}
	if err != nil {
		c.loadErr = err
		return
	}
	c.orders = orders
	c.total = total
	c.loadErr = nil
}

// Search 更新搜索条件并重置到第一页；防抖触发查询（自由输入场景）
func (c *ListController) Search(ctx context.Context, name, phone string) {
	c.mu.Lock()
	c.searchName = name
	c.searchPhone = phone
	c.page = 1
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.debounce, func() {
		c.Fetch(ctx)
	})
	c.mu.Unlock()
}

// SearchNow 更新搜索条件并立即查询（回车/显式提交场景）
func (c *ListController) SearchNow(ctx context.Context, name, phone string) {
	c.mu.Lock()
	c.searchName = name
	c.searchPhone = phone
	c.page = 1
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()
	c.Fetch(ctx)
}

// ChangeStatusFilter 设置状态过滤并重置到第一页
func (c *ListController) ChangeStatusFilter(ctx context.Context, s status.OrderStatus) {
	c.mu.Lock()
	c.statusFilter = s
	c.page = 1
	c.mu.Unlock()
	c.Fetch(ctx)
}

// ChangePage 翻页
func (c *ListController) ChangePage(ctx context.Context, page, rows int) {
	c.mu.Lock()
	if page < 1 {
		page = 1
	}
	if rows < 1 {
		rows = c.rows
	}
	c.page = page
	c.rows = rows
	c.mu.Unlock()
	c.Fetch(ctx)
}

// ClearFilters 清空全部过滤条件并回到第一页
func (c *ListController) ClearFilters(ctx context.Context) {
	c.mu.Lock()
	c.searchName = ""
	c.searchPhone = ""
	c.statusFilter = ""
	c.page = 1
	c.mu.Unlock()
	c.Fetch(ctx)
}

// PageFromOffset 由零基偏移量换算 1-based 页码
func PageFromOffset(offset, rows int) int {
	if rows < 1 {
		return 1
	}
	return offset/rows + 1
}

// ExpandDetail 拉取单个订单的完整详情用于展开视图
func (c *ListController) ExpandDetail(ctx context.Context, orderID int64) error {
	detail, err := c.repo.Get(ctx, orderID)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.detail = detail
	c.mu.Unlock()
	return nil
}

// OpenStatusDialog 记住目标订单并打开状态变更对话框
func (c *ListController) OpenStatusDialog(ctx context.Context, order model.Order) {
	c.mu.Lock()
	defer c.mu.Unlock()
	o := order
	c.target = &o
	tracking := ""
	if order.TrackingID != nil {
		tracking = *order.TrackingID
	}
	c.dialog.Open(order.Status, tracking, c.roles.HasElevatedPrivilege(ctx))
}

// SubmitStatusChange 校验对话框输入并提交状态变更
func (c *ListController) SubmitStatusChange(ctx context.Context, selectedStatus, trackingInput string) error {
	c.mu.Lock()
	req, err := c.dialog.Submit(selectedStatus, trackingInput)
	c.mu.Unlock()
	if err != nil {
		return err
	}
	return c.OnTransitionConfirmed(ctx, req)
}

// OnTransitionConfirmed 执行权威提交：成功则关闭对话框并重新拉取列表
// （从不乐观更新本地缓存）；失败则把错误交还对话框，列表保持原样。
func (c *ListController) OnTransitionConfirmed(ctx context.Context, req TransitionRequest) error {
	c.mu.Lock()
	target := c.target
	c.mu.Unlock()
	if target == nil {
		return ErrNoTransitionSelected
	}

	var tracking *string
	if req.TrackingID != "" {
		t := req.TrackingID
		tracking = &t
	}

	if err := c.repo.UpdateStatus(ctx, target.ID, req.Status, tracking); err != nil {
		c.mu.Lock()
		c.dialog.CommitFailed(err)
		c.mu.Unlock()
		return err
	}

	c.mu.Lock()
	c.dialog.Cancel()
	c.target = nil
	c.mu.Unlock()
	c.Fetch(ctx)
	return nil
}

// CancelStatusDialog 关闭对话框，不提交任何变更
func (c *ListController) CancelStatusDialog() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dialog.Cancel()
	c.target = nil
}

// Dialog 暴露对话框控制器（只读使用）
func (c *ListController) Dialog() *Dialog { return c.dialog }

// Orders 当前缓存的一页订单
func (c *ListController) Orders() []model.Order {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.orders
}

// Detail 当前展开的订单详情；未展开为 nil
func (c *ListController) Detail() *model.Order {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.detail
}

// Page 当前页码（1-based）
func (c *ListController) Page() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

// Rows 当前每页条数
func (c *ListController) Rows() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rows
}

// Total 服务端总条数
func (c *ListController) Total() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

// LoadErr 最近一次列表加载失败；成功后清空
func (c *ListController) LoadErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadErr
}

// Package console implements the interactive core of the admin console:
// the order status dialog state machine and the paginated order list view.
package console

import (
	"errors"
	"strings"

	"github.com/d60-Lab/giftshop-console/internal/status"
)

// 本地校验失败；只体现在对话框内联提示上，不产生网络请求
var (
	ErrNoTransitionSelected   = errors.New("no transition available")
	ErrTrackingIDRequired     = errors.New("tracking id required for shipped")
	ErrCompletionNotPermitted = errors.New("you cannot set status to completed")
)

// DialogState 对话框状态机的三个状态
type DialogState int

const (
	DialogClosed DialogState = iota
	DialogOpen
	DialogSubmitting
)

// StatusOption 下拉框中的一个可选状态
type StatusOption struct {
	Label    string
	Value    status.OrderStatus
	Disabled bool // completed 在无权限时可见但禁用
}

// TransitionRequest 校验通过后产出的状态变更请求；
// TrackingID 为空串表示未提供。
type TransitionRequest struct {
	Status     status.OrderStatus
	TrackingID string
}

// Dialog 状态变更对话框控制器。
// 所有校验失败都是可恢复的本地状态，永不 panic。
type Dialog struct {
	state       DialogState
	canComplete bool

	current    status.OrderStatus // 规范化后的当前状态；未知则为空
	options    []StatusOption
	selected   status.OrderStatus
	trackingID string
	err        error
}

// NewDialog 创建处于 Closed 状态的对话框
func NewDialog() *Dialog {
	return &Dialog{state: DialogClosed}
}

// Open 打开对话框并构建选项菜单：[当前状态] ++ Reachable(当前状态)，去重。
// currentStatus 大小写不敏感；未知状态得到空菜单而非报错。
func (d *Dialog) Open(currentStatus, trackingID string, canComplete bool) {
	d.canComplete = canComplete
	d.trackingID = trackingID
	d.err = nil
	d.current = ""
	d.selected = ""
	d.options = nil

	if cur, ok := status.Parse(currentStatus); ok {
		d.current = cur
		d.options = d.buildOptions(cur)
		d.selected = cur // 默认选中当前状态，允许幂等重存
	}
	d.state = DialogOpen
}

func (d *Dialog) buildOptions(current status.OrderStatus) []StatusOption {
	allowed := append([]status.OrderStatus{current}, status.Reachable(current)...)
	seen := make(map[status.OrderStatus]struct{}, len(allowed))
	opts := make([]StatusOption, 0, len(allowed))
	for _, s := range allowed {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		opt := StatusOption{Label: status.Label(s), Value: s}
		if s == status.Completed && !d.canComplete {
			opt.Label += " (restricted)"
			opt.Disabled = true
		}
		opts = append(opts, opt)
	}
	return opts
}

// Submit 校验所选转换并产出 TransitionRequest。
// 校验顺序：已选择状态 -> shipped 必须有运单号 -> completed 必须有提升权限。
// 失败时保持 Open 并记录内联错误，不产出请求。
func (d *Dialog) Submit(selectedStatus, trackingInput string) (TransitionRequest, error) {
	if d.state != DialogOpen {
		return TransitionRequest{}, ErrNoTransitionSelected
	}
	d.err = nil
	d.trackingID = trackingInput

	selected, ok := status.Parse(selectedStatus)
	if !ok {
		return d.fail(ErrNoTransitionSelected)
	}
	d.selected = selected

	tracking := strings.TrimSpace(trackingInput)
	if selected == status.Shipped && tracking == "" {
		return d.fail(ErrTrackingIDRequired)
	}
	if selected == status.Completed && !d.canComplete {
		return d.fail(ErrCompletionNotPermitted)
	}

	d.state = DialogSubmitting
	return TransitionRequest{Status: selected, TrackingID: tracking}, nil
}

func (d *Dialog) fail(err error) (TransitionRequest, error) {
	d.err = err
	return TransitionRequest{}, err
}

// CommitFailed 远端提交失败：回到 Open，保留已填写的值供用户修正后重试
func (d *Dialog) CommitFailed(err error) {
	d.state = DialogOpen
	d.err = err
}

// Cancel 从任意状态关闭对话框；不产出状态变更请求
func (d *Dialog) Cancel() {
	d.state = DialogClosed
	d.err = nil
}

// State 当前状态机状态
func (d *Dialog) State() DialogState { return d.state }

// Options 当前选项菜单（未知状态时为空）
func (d *Dialog) Options() []StatusOption { return d.options }

// Selected 当前选中项
func (d *Dialog) Selected() status.OrderStatus { return d.selected }

// TrackingID 当前填写的运单号
func (d *Dialog) TrackingID() string { return d.trackingID }

// Err 最近一次校验或提交失败的内联错误；无错误时为 nil
func (d *Dialog) Err() error { return d.err }

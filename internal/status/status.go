package status

import "strings"

// OrderStatus 订单生命周期状态
type OrderStatus string

const (
	Pending    OrderStatus = "pending"    // 待处理
	Processing OrderStatus = "processing" // 处理中
	Shipped    OrderStatus = "shipped"    // 已发货
	Delivered  OrderStatus = "delivered"  // 已送达
	Returned   OrderStatus = "returned"   // 已退货
	Cancelled  OrderStatus = "cancelled"  // 已取消
	Completed  OrderStatus = "completed"  // 已完成
)

// All 按固定顺序返回全部状态
func All() []OrderStatus {
	return []OrderStatus{Pending, Processing, Shipped, Delivered, Returned, Cancelled, Completed}
}

// Parse 解析外部输入的状态值；大小写不敏感，统一转为小写。
// 未知值返回 ("", false)，不报错。
func Parse(raw string) (OrderStatus, bool) {
	s := OrderStatus(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case Pending, Processing, Shipped, Delivered, Returned, Cancelled, Completed:
		return s, true
	default:
		return "", false
	}
}

func (s OrderStatus) String() string { return string(s) }

// IsValid 判断是否为已知状态（要求已是小写规范形式）
func (s OrderStatus) IsValid() bool {
	_, ok := Parse(string(s))
	return ok && OrderStatus(strings.ToLower(string(s))) == s
}

// Reachable 返回从 s 可直接到达的状态集合（有序）。
// 纯函数；未知状态返回空集，永不 panic。自身不包含在内，
// 自转换（幂等重存）由调用方在构造选项时补上。
func Reachable(s OrderStatus) []OrderStatus {
	switch s {
	case Pending:
		return []OrderStatus{Processing, Cancelled}
	case Processing:
		return []OrderStatus{Pending, Shipped, Cancelled}
	case Shipped:
		return []OrderStatus{Delivered, Returned}
	case Delivered:
		return []OrderStatus{Completed}
	case Returned:
		return nil
	case Cancelled:
		// cancelled 订单允许重新打开
		return []OrderStatus{Pending, Processing}
	case Completed:
		return nil
	default:
		return nil
	}
}

// CanTransition 判断 from -> to 是否允许；同状态重存始终允许。
func CanTransition(from, to OrderStatus) bool {
	if from == to {
		return true
	}
	for _, s := range Reachable(from) {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal 判断是否为终态（无任何可达状态）
func IsTerminal(s OrderStatus) bool {
	return s.IsValid() && len(Reachable(s)) == 0
}

// Label 返回首字母大写的展示形式
func Label(s OrderStatus) string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[0])) + string(s[1:])
}

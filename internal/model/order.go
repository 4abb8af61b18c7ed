package model

import (
	"time"
)

// Order 订单模型
type Order struct {
	ID              int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	CustomerID      int64     `json:"customerId" gorm:"index;not null"`
	CustomerName    string    `json:"customerName" gorm:"type:varchar(128);index;not null"`
	CustomerPhone   string    `json:"customerPhone" gorm:"type:varchar(32);index;not null"`
	CustomerAddress string    `json:"customerAddress" gorm:"type:varchar(256)"`
	CustomerCity    string    `json:"customerCity" gorm:"type:varchar(64)"`
	Status          string    `json:"status" gorm:"type:varchar(16);index;not null;default:'pending'"` // 统一小写，取值见 internal/status
	IsCOD           bool      `json:"isCOD" gorm:"not null;default:true"`
	Bill            float64   `json:"bill" gorm:"type:decimal(10,2);not null"`
	CODFee          float64   `json:"codFee" gorm:"type:decimal(10,2);not null;default:0"`
	DeliveryFee     float64   `json:"deliveryFee" gorm:"type:decimal(10,2);not null;default:0"`
	TotalBill       float64   `json:"totalBill" gorm:"type:decimal(10,2);not null"`
	PaymentRef      *string   `json:"paymentRef,omitempty" gorm:"type:varchar(64)"`
	Notes           *string   `json:"notes,omitempty" gorm:"type:text"`
	TrackingID      *string   `json:"trackingId,omitempty" gorm:"type:varchar(64)"`
	CreatedAt       time.Time `json:"createdAt" gorm:"index;not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time `json:"updatedAt" gorm:"not null;default:CURRENT_TIMESTAMP"`

	Items []OrderItem `json:"items" gorm:"foreignKey:OrderID"`
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

// OrderItem 订单行项目
type OrderItem struct {
	ID              int64    `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderID         int64    `json:"orderId" gorm:"index:idx_item_order;not null"`
	ProductName     string   `json:"productName" gorm:"type:varchar(128);not null"`
	VariationType   *string  `json:"variationType,omitempty" gorm:"type:varchar(64)"`
	VariationValue  *string  `json:"variationValue,omitempty" gorm:"type:varchar(64)"`
	CategoryName    *string  `json:"categoryName,omitempty" gorm:"type:varchar(64)"`
	SubCategoryName *string  `json:"subCategoryName,omitempty" gorm:"type:varchar(64)"`
	PurchasePrice   float64  `json:"purchasePrice" gorm:"type:decimal(10,2);not null"`
	Price           float64  `json:"price" gorm:"type:decimal(10,2);not null"`
	Quantity        int      `json:"quantity" gorm:"not null"`
	Weight          *float64 `json:"weight,omitempty" gorm:"type:decimal(8,3)"`
}

func (OrderItem) TableName() string { return "order_items" }

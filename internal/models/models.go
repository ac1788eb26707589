package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	UserTypeShop  = "shop"
	UserTypeBuyer = "buyer"
)

type OrderState string

const (
	OrderStateBasket    OrderState = "basket"
	OrderStateNew       OrderState = "new"
	OrderStateConfirmed OrderState = "confirmed"
	OrderStateAssembled OrderState = "assembled"
	OrderStateSent      OrderState = "sent"
	OrderStateDelivered OrderState = "delivered"
	OrderStateCanceled  OrderState = "canceled"
)

// User rows are provisioned by the identity provider; this service only reads them.
type User struct {
	ID        uint      `gorm:"primaryKey"                   json:"id"`
	Email     string    `gorm:"size:254;uniqueIndex;not null" json:"email"`
	Name      string    `gorm:"size:150;not null"            json:"name"`
	Company   string    `gorm:"size:40"                      json:"company"`
	Position  string    `gorm:"size:40"                      json:"position"`
	Type      string    `gorm:"size:5;not null;default:buyer" json:"type"`
	CreatedAt time.Time `json:"-"`
}

type Shop struct {
	ID     uint   `gorm:"primaryKey"                  json:"id"`
	Name   string `gorm:"size:50;uniqueIndex;not null" json:"name"`
	URL    string `gorm:"size:255"                    json:"url"`
	UserID *uint  `gorm:"index"                       json:"user_id,omitempty"`
	State  bool   `gorm:"not null"                    json:"state"`

	Categories []Category `gorm:"many2many:category_shops;" json:"-"`
}

// Category ids come from supplier feeds and are shared by every shop.
type Category struct {
	ID   uint   `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name string `gorm:"size:40;not null"               json:"name"`

	Shops []Shop `gorm:"many2many:category_shops;" json:"-"`
}

type Product struct {
	ID         uint      `gorm:"primaryKey"                                      json:"id"`
	Name       string    `gorm:"size:80;not null;uniqueIndex:idx_product_name_category" json:"name"`
	CategoryID uint      `gorm:"not null;uniqueIndex:idx_product_name_category"  json:"category_id"`
	Category   *Category `json:"category,omitempty"`
}

// ProductInfo is one shop's listing (SKU) of a product.
type ProductInfo struct {
	ID         uint            `gorm:"primaryKey"                               json:"id"`
	ProductID  uint            `gorm:"not null;index"                           json:"product_id"`
	Product    *Product        `gorm:"constraint:OnDelete:CASCADE"              json:"product,omitempty"`
	ShopID     uint            `gorm:"not null;uniqueIndex:idx_shop_external"   json:"shop_id"`
	Shop       *Shop           `gorm:"constraint:OnDelete:CASCADE"              json:"shop,omitempty"`
	ExternalID uint            `gorm:"not null;uniqueIndex:idx_shop_external"   json:"external_id"`
	Model      string          `gorm:"size:80"                                  json:"model"`
	Price      decimal.Decimal `gorm:"type:decimal(12,2);not null"              json:"price"`
	PriceRRC   decimal.Decimal `gorm:"column:price_rrc;type:decimal(12,2);not null" json:"price_rrc"`
	Quantity   uint            `gorm:"not null"                                 json:"quantity"`

	ProductParameters []ProductParameter `gorm:"constraint:OnDelete:CASCADE" json:"product_parameters"`
}

type Parameter struct {
	ID   uint   `gorm:"primaryKey"                  json:"id"`
	Name string `gorm:"size:40;uniqueIndex;not null" json:"name"`
}

type ProductParameter struct {
	ID            uint       `gorm:"primaryKey"                               json:"-"`
	ProductInfoID uint       `gorm:"not null;uniqueIndex:idx_info_parameter"  json:"-"`
	ParameterID   uint       `gorm:"not null;uniqueIndex:idx_info_parameter"  json:"-"`
	Parameter     *Parameter `gorm:"constraint:OnDelete:CASCADE"              json:"parameter,omitempty"`
	Value         string     `gorm:"size:100;not null"                        json:"value"`
}

type Contact struct {
	ID        uint   `gorm:"primaryKey"         json:"id"`
	UserID    uint   `gorm:"not null;index"     json:"user"`
	City      string `gorm:"size:50;not null"   json:"city"`
	Street    string `gorm:"size:100;not null"  json:"street"`
	House     string `gorm:"size:15"            json:"house"`
	Structure string `gorm:"size:15"            json:"structure"`
	Building  string `gorm:"size:15"            json:"building"`
	Apartment string `gorm:"size:15"            json:"apartment"`
	Phone     string `gorm:"size:20;not null"   json:"phone"`
}

// Order.TotalSum is derived from the lines on every read and never stored.
type Order struct {
	ID        uint       `gorm:"primaryKey"                                                     json:"id"`
	UserID    uint       `gorm:"not null;index:idx_orders_user;uniqueIndex:idx_orders_one_basket,where:state = 'basket'" json:"user_id"`
	CreatedAt time.Time  `json:"dt"`
	State     OrderState `gorm:"size:15;not null;index:idx_orders_state"                       json:"state"`
	ContactID *uint      `json:"-"`
	Contact   *Contact   `gorm:"constraint:OnDelete:SET NULL"                                   json:"contact"`

	OrderedItems []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"ordered_items"`

	TotalSum decimal.Decimal `gorm:"-" json:"total_sum"`
}

type OrderItem struct {
	ID            uint         `gorm:"primaryKey"                                  json:"id"`
	OrderID       uint         `gorm:"not null;uniqueIndex:idx_order_product_info" json:"order"`
	ProductInfoID uint         `gorm:"not null;uniqueIndex:idx_order_product_info" json:"product_info_id"`
	ProductInfo   *ProductInfo `gorm:"constraint:OnDelete:CASCADE"                 json:"product_info,omitempty"`
	Quantity      uint         `gorm:"not null;check:quantity>0"                   json:"quantity"`
}

// ImportRun is written outside the import transaction so failed runs are kept too.
type ImportRun struct {
	ID         uint       `gorm:"primaryKey"      json:"id"`
	UserID     uint       `gorm:"not null;index"  json:"user_id"`
	ShopID     *uint      `json:"shop_id,omitempty"`
	Shop       *Shop      `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	URL        string     `gorm:"size:255"        json:"url"`
	StartedAt  time.Time  `gorm:"not null"        json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Success    bool       `gorm:"not null"        json:"success"`
	Message    string     `gorm:"size:500"        json:"message"`
	Categories int        `json:"categories"`
	Goods      int        `json:"goods"`
	Parameters int        `json:"parameters"`
}

// All lists every entity in dependency order for AutoMigrate.
func All() []any {
	return []any{
		&User{}, &Shop{}, &Category{}, &Product{}, &ProductInfo{}, &Parameter{},
		&ProductParameter{}, &Contact{}, &Order{}, &OrderItem{}, &ImportRun{},
	}
}

// LineTotal is quantity times the SKU's current price.
func (i OrderItem) LineTotal() decimal.Decimal {
	if i.ProductInfo == nil {
		return decimal.Zero
	}
	return i.ProductInfo.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ComputeTotal fills TotalSum from the loaded lines.
func (o *Order) ComputeTotal() {
	total := decimal.Zero
	for _, it := range o.OrderedItems {
		total = total.Add(it.LineTotal())
	}
	o.TotalSum = total
}

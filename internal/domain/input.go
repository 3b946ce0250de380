package domain

import "github.com/shopspring/decimal"

// Input types are the write whitelists of each resource. Only fields with a
// `db` tag reach SQL, and nil pointers mean "not sent", so the same type
// serves full creates and partial updates.

type UserInput struct {
	FirstName   *string `json:"firstName" db:"first_name" validate:"omitempty,max=100"`
	LastName    *string `json:"lastName" db:"last_name" validate:"omitempty,max=100"`
	UserName    *string `json:"userName" db:"user_name" validate:"omitempty,min=3,max=100"`
	Email       *string `json:"email" db:"email" validate:"omitempty,email,max=255"`
	PhoneNumber *string `json:"phoneNumber" db:"phone_number" validate:"omitempty,max=32"`
	UserID      *string `json:"userID" db:"user_id" validate:"omitempty,max=32"`
	DateOfBirth *Date   `json:"dateOfBirth" db:"date_of_birth"`
	Address     *string `json:"address" db:"address" validate:"omitempty,max=255"`
	Password    *string `json:"password" db:"-" validate:"omitempty,min=6,max=72"`
}

type ProductInput struct {
	ProductName    *string          `json:"productName" db:"product_name" validate:"omitempty,max=255"`
	Barcode        *string          `json:"barcode" db:"barcode" validate:"omitempty,max=64"`
	Brand          *string          `json:"brand" db:"brand" validate:"omitempty,max=100"`
	CategoryNumber *int64           `json:"categoryNumber" db:"category_number" validate:"omitempty,gt=0"`
	BuyingPrice    *decimal.Decimal `json:"buyingPrice" db:"buying_price" validate:"omitempty,gte=0"`
	SellingPrice   *decimal.Decimal `json:"sellingPrice" db:"selling_price" validate:"omitempty,gte=0"`
	InStock        *int             `json:"inStock" db:"in_stock" validate:"omitempty,gte=0"`

	// Descriptions are only honored on create.
	Descriptions []DescriptionInput `json:"descriptions" db:"-" validate:"omitempty,dive"`
}

type ProductImageInput struct {
	ProductNumber *int64  `json:"productNumber" db:"product_id" validate:"omitempty,gt=0"`
	FileName      *string `json:"fileName" db:"file_name" validate:"omitempty,max=255"`
	URL           *string `json:"url" db:"url" validate:"omitempty,max=500"`
	SortOrder     *int    `json:"sortOrder" db:"sort_order" validate:"omitempty,gte=0"`
}

type DescriptionPatch struct {
	Title     *string `json:"title" db:"title" validate:"omitempty,max=50"`
	Text      *string `json:"text" db:"text" validate:"omitempty,max=300"`
	SortOrder *int    `json:"sortOrder" db:"sort_order" validate:"omitempty,gte=0"`
}

type OrderInput struct {
	UserNumber      *int64           `json:"userNumber" db:"user_number" validate:"omitempty,gt=0"`
	OrderStatus     *OrderStatus     `json:"orderStatus" db:"order_status" validate:"omitempty,oneof=open ordered canceled closed"`
	TotalPrice      *decimal.Decimal `json:"totalPrice" db:"total_price" validate:"omitempty,gte=0"`
	PaymentID       *int64           `json:"paymentID" db:"payment_id" validate:"omitempty,gt=0"`
	ArrayOfProducts *string          `json:"arrayOfProducts" db:"array_of_products" validate:"omitempty,json"`
}

type PaymentInput struct {
	UserNumber     *int64  `json:"userNumber" db:"user_number" validate:"omitempty,gt=0"`
	CardHolderName *string `json:"cardHolderName" db:"card_holder_name" validate:"omitempty,max=26"`
	CardNumber     *string `json:"cardNumber" db:"card_number" validate:"omitempty,numeric,min=12,max=19"`
	ExpiryMonth    *int    `json:"expiryMonth" db:"expiry_month" validate:"omitempty,min=1,max=12"`
	ExpiryYear     *int    `json:"expiryYear" db:"expiry_year" validate:"omitempty,min=2000,max=2100"`
	BillingAddress *string `json:"billingAddress" db:"billing_address" validate:"omitempty,max=255"`
	IsDefault      *int    `json:"isDefault" db:"is_default" validate:"omitempty,oneof=0 1"`
}

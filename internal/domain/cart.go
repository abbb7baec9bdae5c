package domain

// Money is a backend-computed amount. The amount stays a decimal string
// because tax and discount rules are opaque to this service; it never does
// arithmetic on prices.
type Money struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

// CartCost carries the backend-computed totals for a cart. TotalTax is nil
// until the backend has a taxable total to report.
type CartCost struct {
	Subtotal Money  `json:"subtotalAmount"`
	Total    Money  `json:"totalAmount"`
	TotalTax *Money `json:"totalTaxAmount,omitempty"`
}

type SelectedOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Image struct {
	URL     string `json:"url"`
	AltText string `json:"altText,omitempty"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
}

// Merchandise is the display snapshot of a purchasable variant captured at
// query time. It is not guaranteed fresh; only the ID is stable.
type Merchandise struct {
	ID              string           `json:"id"`
	Title           string           `json:"title"`
	ProductTitle    string           `json:"productTitle"`
	ProductHandle   string           `json:"productHandle"`
	Price           Money            `json:"price"`
	Image           *Image           `json:"image,omitempty"`
	SelectedOptions []SelectedOption `json:"selectedOptions,omitempty"`
}

// CartLine is one merchandise selection with a quantity. The ID is assigned
// by the commerce backend and is required to target update/remove calls.
type CartLine struct {
	ID          string      `json:"id"`
	Quantity    int         `json:"quantity"`
	Merchandise Merchandise `json:"merchandise"`
}

// Cart is one shopper's pending order as last reported by the commerce
// backend. Every field including TotalQuantity and Cost is backend-computed;
// this service never derives any of them. Line order is backend-defined.
type Cart struct {
	ID            string     `json:"id"`
	CheckoutURL   string     `json:"checkoutUrl"`
	TotalQuantity int        `json:"totalQuantity"`
	Cost          CartCost   `json:"cost"`
	Lines         []CartLine `json:"lines"`
}

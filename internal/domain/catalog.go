package domain

type ProductOption struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

type ProductVariant struct {
	ID               string           `json:"id"`
	Title            string           `json:"title"`
	AvailableForSale bool             `json:"availableForSale"`
	Price            Money            `json:"price"`
	CompareAtPrice   *Money           `json:"compareAtPrice,omitempty"`
	SelectedOptions  []SelectedOption `json:"selectedOptions,omitempty"`
	Image            *Image           `json:"image,omitempty"`
}

type PriceRange struct {
	MinVariantPrice Money `json:"minVariantPrice"`
	MaxVariantPrice Money `json:"maxVariantPrice"`
}

type Product struct {
	ID               string           `json:"id"`
	Handle           string           `json:"handle"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	Vendor           string           `json:"vendor,omitempty"`
	Tags             []string         `json:"tags,omitempty"`
	AvailableForSale bool             `json:"availableForSale"`
	FeaturedImage    *Image           `json:"featuredImage,omitempty"`
	Images           []Image          `json:"images,omitempty"`
	Options          []ProductOption  `json:"options,omitempty"`
	Variants         []ProductVariant `json:"variants,omitempty"`
	PriceRange       PriceRange       `json:"priceRange"`
}

type Collection struct {
	ID          string    `json:"id"`
	Handle      string    `json:"handle"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Image       *Image    `json:"image,omitempty"`
	Products    []Product `json:"products,omitempty"`
}

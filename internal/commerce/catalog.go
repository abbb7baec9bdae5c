package commerce

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nextagencyio/decoupled-commerce/internal/domain"
)

type productNode struct {
	ID               string   `json:"id"`
	Handle           string   `json:"handle"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	AvailableForSale bool     `json:"availableForSale"`
	Vendor           string   `json:"vendor"`
	Tags             []string `json:"tags"`
	FeaturedImage    *domain.Image `json:"featuredImage"`
	Images           struct {
		Edges []struct {
			Node domain.Image `json:"node"`
		} `json:"edges"`
	} `json:"images"`
	Options  []domain.ProductOption `json:"options"`
	Variants struct {
		Edges []struct {
			Node domain.ProductVariant `json:"node"`
		} `json:"edges"`
	} `json:"variants"`
	PriceRange domain.PriceRange `json:"priceRange"`
}

func (n *productNode) toDomain() domain.Product {
	p := domain.Product{
		ID:               n.ID,
		Handle:           n.Handle,
		Title:            n.Title,
		Description:      n.Description,
		AvailableForSale: n.AvailableForSale,
		Vendor:           n.Vendor,
		Tags:             n.Tags,
		FeaturedImage:    n.FeaturedImage,
		Options:          n.Options,
		PriceRange:       n.PriceRange,
	}
	for _, edge := range n.Images.Edges {
		p.Images = append(p.Images, edge.Node)
	}
	for _, edge := range n.Variants.Edges {
		p.Variants = append(p.Variants, edge.Node)
	}
	return p
}

type collectionNode struct {
	ID          string        `json:"id"`
	Handle      string        `json:"handle"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Image       *domain.Image `json:"image"`
	Products    struct {
		Edges []struct {
			Node productNode `json:"node"`
		} `json:"edges"`
	} `json:"products"`
}

func (n *collectionNode) toDomain() domain.Collection {
	c := domain.Collection{
		ID:          n.ID,
		Handle:      n.Handle,
		Title:       n.Title,
		Description: n.Description,
		Image:       n.Image,
	}
	for _, edge := range n.Products.Edges {
		c.Products = append(c.Products, edge.Node.toDomain())
	}
	return c
}

// Products lists the first n products from the catalog.
func (c *Client) Products(ctx context.Context, first int) ([]domain.Product, error) {
	data, err := c.Execute(ctx, productsQuery, map[string]any{"first": first}, CacheDefault)
	if err != nil {
		return nil, err
	}
	var envelope struct {
		Products struct {
			Edges []struct {
				Node productNode `json:"node"`
			} `json:"edges"`
		} `json:"products"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	out := make([]domain.Product, 0, len(envelope.Products.Edges))
	for _, edge := range envelope.Products.Edges {
		out = append(out, edge.Node.toDomain())
	}
	return out, nil
}

// ProductByHandle loads a single product; domain.ErrNotFound when absent.
func (c *Client) ProductByHandle(ctx context.Context, handle string) (*domain.Product, error) {
	data, err := c.Execute(ctx, productByHandleQuery, map[string]any{"handle": handle}, CacheDefault)
	if err != nil {
		return nil, err
	}
	var envelope struct {
		Product *productNode `json:"product"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("decode product: %w", err)
	}
	if envelope.Product == nil {
		return nil, domain.ErrNotFound
	}
	p := envelope.Product.toDomain()
	return &p, nil
}

// Collections lists the first n collections, without their products.
func (c *Client) Collections(ctx context.Context, first int) ([]domain.Collection, error) {
	data, err := c.Execute(ctx, collectionsQuery, map[string]any{"first": first}, CacheDefault)
	if err != nil {
		return nil, err
	}
	var envelope struct {
		Collections struct {
			Edges []struct {
				Node collectionNode `json:"node"`
			} `json:"edges"`
		} `json:"collections"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("decode collections: %w", err)
	}
	out := make([]domain.Collection, 0, len(envelope.Collections.Edges))
	for _, edge := range envelope.Collections.Edges {
		out = append(out, edge.Node.toDomain())
	}
	return out, nil
}

// CollectionByHandle loads one collection with its products;
// domain.ErrNotFound when absent.
func (c *Client) CollectionByHandle(ctx context.Context, handle string) (*domain.Collection, error) {
	data, err := c.Execute(ctx, collectionByHandleQuery, map[string]any{"handle": handle}, CacheDefault)
	if err != nil {
		return nil, err
	}
	var envelope struct {
		Collection *collectionNode `json:"collection"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("decode collection: %w", err)
	}
	if envelope.Collection == nil {
		return nil, domain.ErrNotFound
	}
	col := envelope.Collection.toDomain()
	return &col, nil
}

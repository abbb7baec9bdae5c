// Package demo serves an embedded mock catalog and blog so the storefront
// can run without either upstream configured. It is read-only; cart
// operations need a real commerce backend and stay disabled in demo mode.
package demo

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nextagencyio/decoupled-commerce/internal/domain"
)

//go:embed data/*.json
var dataFS embed.FS

// Catalog holds the decoded mock data.
type Catalog struct {
	products    []domain.Product
	collections []domain.Collection
	articles    []domain.Article
}

// Load decodes the embedded mock data once at startup.
func Load() (*Catalog, error) {
	var c Catalog
	if err := decode("data/products.json", &struct {
		Products *[]domain.Product `json:"products"`
	}{&c.products}); err != nil {
		return nil, err
	}
	if err := decode("data/collections.json", &struct {
		Collections *[]domain.Collection `json:"collections"`
	}{&c.collections}); err != nil {
		return nil, err
	}
	if err := decode("data/blog.json", &struct {
		Articles *[]domain.Article `json:"articles"`
	}{&c.articles}); err != nil {
		return nil, err
	}
	return &c, nil
}

func decode(name string, into any) error {
	raw, err := dataFS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, into); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

func (c *Catalog) Products(first int) []domain.Product {
	if first > len(c.products) {
		first = len(c.products)
	}
	return c.products[:first]
}

func (c *Catalog) ProductByHandle(handle string) (*domain.Product, error) {
	for i := range c.products {
		if strings.EqualFold(c.products[i].Handle, handle) {
			return &c.products[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (c *Catalog) Collections(first int) []domain.Collection {
	if first > len(c.collections) {
		first = len(c.collections)
	}
	return c.collections[:first]
}

func (c *Catalog) CollectionByHandle(handle string) (*domain.Collection, error) {
	for i := range c.collections {
		if strings.EqualFold(c.collections[i].Handle, handle) {
			return &c.collections[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (c *Catalog) Articles(first int) []domain.Article {
	if first > len(c.articles) {
		first = len(c.articles)
	}
	return c.articles[:first]
}

func (c *Catalog) ArticleByPath(path string) (*domain.Article, error) {
	for i := range c.articles {
		if c.articles[i].Path == path {
			return &c.articles[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

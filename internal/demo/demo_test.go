package demo

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nextagencyio/decoupled-commerce/internal/domain"
)

func TestLoadEmbeddedData(t *testing.T) {
	catalog, err := Load()
	require.NoError(t, err)
	require.NotEmpty(t, catalog.Products(100))
	require.NotEmpty(t, catalog.Collections(100))
	require.NotEmpty(t, catalog.Articles(100))
}

func TestProductsRespectsFirst(t *testing.T) {
	catalog, err := Load()
	require.NoError(t, err)

	require.Len(t, catalog.Products(1), 1)
	all := catalog.Products(1000)
	require.Greater(t, len(all), 1)
}

func TestProductByHandle(t *testing.T) {
	catalog, err := Load()
	require.NoError(t, err)

	p, err := catalog.ProductByHandle("canvas-tote")
	require.NoError(t, err)
	require.Equal(t, "Canvas Tote", p.Title)
	require.NotEmpty(t, p.Variants)

	_, err = catalog.ProductByHandle("no-such-product")
	require.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestArticleByPath(t *testing.T) {
	catalog, err := Load()
	require.NoError(t, err)

	a, err := catalog.ArticleByPath("/blog/welcome")
	require.NoError(t, err)
	require.Equal(t, "Welcome to the Demo Store", a.Title)

	_, err = catalog.ArticleByPath("/blog/missing")
	require.True(t, errors.Is(err, domain.ErrNotFound))
}

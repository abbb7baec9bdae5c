package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nextagencyio/decoupled-commerce/internal/domain"
)

func firstParam(c *gin.Context, def, max int) int {
	raw := c.Query("first")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	if n > max {
		return max
	}
	return n
}

func listProductsHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		first := firstParam(c, 12, 100)

		if deps.DemoMode {
			c.JSON(http.StatusOK, gin.H{"products": deps.Demo.Products(first)})
			return
		}
		if deps.Commerce == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commerce backend not configured"})
			return
		}

		products, err := deps.Commerce.Products(c.Request.Context(), first)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "commerce backend unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"products": products})
	}
}

func productHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		handle := c.Param("handle")

		if deps.DemoMode {
			product, err := deps.Demo.ProductByHandle(handle)
			if err != nil {
				c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
				return
			}
			c.JSON(http.StatusOK, product)
			return
		}
		if deps.Commerce == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commerce backend not configured"})
			return
		}

		product, err := deps.Commerce.ProductByHandle(c.Request.Context(), handle)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
				return
			}
			c.JSON(http.StatusBadGateway, gin.H{"error": "commerce backend unavailable"})
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

func listCollectionsHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		first := firstParam(c, 4, 50)

		if deps.DemoMode {
			c.JSON(http.StatusOK, gin.H{"collections": deps.Demo.Collections(first)})
			return
		}
		if deps.Commerce == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commerce backend not configured"})
			return
		}

		collections, err := deps.Commerce.Collections(c.Request.Context(), first)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "commerce backend unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"collections": collections})
	}
}

func collectionHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		handle := c.Param("handle")

		if deps.DemoMode {
			collection, err := deps.Demo.CollectionByHandle(handle)
			if err != nil {
				c.JSON(http.StatusNotFound, gin.H{"error": "collection not found"})
				return
			}
			c.JSON(http.StatusOK, collection)
			return
		}
		if deps.Commerce == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commerce backend not configured"})
			return
		}

		collection, err := deps.Commerce.CollectionByHandle(c.Request.Context(), handle)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "collection not found"})
				return
			}
			c.JSON(http.StatusBadGateway, gin.H{"error": "commerce backend unavailable"})
			return
		}
		c.JSON(http.StatusOK, collection)
	}
}

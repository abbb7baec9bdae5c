package httpserver

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nextagencyio/decoupled-commerce/internal/domain"
)

func listArticlesHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		first := firstParam(c, 10, 100)

		if deps.DemoMode {
			c.JSON(http.StatusOK, gin.H{"articles": deps.Demo.Articles(first)})
			return
		}
		if deps.Content == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "content backend not configured"})
			return
		}

		articles, err := deps.Content.Articles(c.Request.Context(), first)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "content backend unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"articles": articles})
	}
}

func articleHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Param("path")

		if deps.DemoMode {
			article, err := deps.Demo.ArticleByPath(path)
			if err != nil {
				c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
				return
			}
			c.JSON(http.StatusOK, article)
			return
		}
		if deps.Content == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "content backend not configured"})
			return
		}

		article, err := deps.Content.ArticleByPath(c.Request.Context(), path)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
				return
			}
			c.JSON(http.StatusBadGateway, gin.H{"error": "content backend unavailable"})
			return
		}
		c.JSON(http.StatusOK, article)
	}
}

func pageHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if deps.Content == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "content backend not configured"})
			return
		}

		page, err := deps.Content.PageByPath(c.Request.Context(), c.Param("path"))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "page not found"})
				return
			}
			c.JSON(http.StatusBadGateway, gin.H{"error": "content backend unavailable"})
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

// contentProxyHandler forwards a raw GraphQL body to the CMS with the
// service's bearer token so CMS credentials never reach the browser.
func contentProxyHandler(deps Deps, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if deps.Content == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "content backend not configured"})
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
			return
		}

		raw, status, err := deps.Content.Forward(c.Request.Context(), body)
		if err != nil && len(raw) == 0 {
			logger.Printf("graphql proxy: %v", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "content backend unavailable"})
			return
		}
		// Upstream errors with a body pass through unchanged; the client
		// sees what the CMS said.
		c.Data(status, "application/json", raw)
	}
}

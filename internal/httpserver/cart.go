package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nextagencyio/decoupled-commerce/internal/commerce"
)

func cartSnapshotHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, sessionStore(c, deps).Snapshot())
	}
}

type addLineRequest struct {
	MerchandiseID string `json:"merchandiseId" binding:"required"`
	Quantity      int    `json:"quantity" binding:"omitempty,gte=1"`
}

func addToCartHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addLineRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.Quantity == 0 {
			req.Quantity = 1
		}

		store := sessionStore(c, deps)
		if err := store.AddToCart(c.Request.Context(), req.MerchandiseID, req.Quantity); err != nil {
			renderCartError(c, err)
			return
		}
		c.JSON(http.StatusOK, store.Snapshot())
	}
}

type updateLineRequest struct {
	Quantity *int `json:"quantity" binding:"required,gte=0"`
}

func updateLineHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateLineRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		store := sessionStore(c, deps)
		if err := store.UpdateQuantity(c.Request.Context(), c.Param("lineID"), *req.Quantity); err != nil {
			renderCartError(c, err)
			return
		}
		c.JSON(http.StatusOK, store.Snapshot())
	}
}

func removeLineHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		store := sessionStore(c, deps)
		if err := store.RemoveFromCart(c.Request.Context(), c.Param("lineID")); err != nil {
			renderCartError(c, err)
			return
		}
		c.JSON(http.StatusOK, store.Snapshot())
	}
}

type drawerRequest struct {
	Action string `json:"action" binding:"required,oneof=open close toggle"`
}

func drawerHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req drawerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		store := sessionStore(c, deps)
		switch req.Action {
		case "open":
			store.OpenDrawer()
		case "close":
			store.CloseDrawer()
		case "toggle":
			store.ToggleDrawer()
		}
		c.JSON(http.StatusOK, store.Snapshot())
	}
}

// renderCartError maps the store's error taxonomy onto HTTP. User errors
// are the one kind the shopper can act on, so they carry the field/message
// pairs through.
func renderCartError(c *gin.Context, err error) {
	var userErrs *commerce.UserErrorList
	if errors.As(err, &userErrs) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"userErrors": userErrs.Errors})
		return
	}
	var transport *commerce.TransportError
	if errors.As(err, &transport) {
		c.JSON(http.StatusBadGateway, gin.H{"error": "commerce backend unavailable"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

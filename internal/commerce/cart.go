package commerce

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nextagencyio/decoupled-commerce/internal/domain"
)

// CartLineInput selects a merchandise variant and a quantity for create/add.
type CartLineInput struct {
	MerchandiseID string `json:"merchandiseId"`
	Quantity      int    `json:"quantity"`
}

// Wire shapes for cart payloads. The storefront API wraps list fields in
// edges/node connections; these are flattened into domain types at this
// boundary so nothing downstream touches raw JSON.

type cartLineNode struct {
	ID          string `json:"id"`
	Quantity    int    `json:"quantity"`
	Merchandise struct {
		ID      string `json:"id"`
		Title   string `json:"title"`
		Product struct {
			Title         string        `json:"title"`
			Handle        string        `json:"handle"`
			FeaturedImage *domain.Image `json:"featuredImage"`
		} `json:"product"`
		Price           domain.Money            `json:"price"`
		SelectedOptions []domain.SelectedOption `json:"selectedOptions"`
	} `json:"merchandise"`
}

type cartNode struct {
	ID            string `json:"id"`
	CheckoutURL   string `json:"checkoutUrl"`
	TotalQuantity int    `json:"totalQuantity"`
	Cost          struct {
		SubtotalAmount domain.Money  `json:"subtotalAmount"`
		TotalAmount    domain.Money  `json:"totalAmount"`
		TotalTaxAmount *domain.Money `json:"totalTaxAmount"`
	} `json:"cost"`
	Lines struct {
		Edges []struct {
			Node cartLineNode `json:"node"`
		} `json:"edges"`
	} `json:"lines"`
}

type cartMutationPayload struct {
	Cart       *cartNode   `json:"cart"`
	UserErrors []UserError `json:"userErrors"`
}

func (n *cartNode) toDomain() *domain.Cart {
	cart := &domain.Cart{
		ID:            n.ID,
		CheckoutURL:   n.CheckoutURL,
		TotalQuantity: n.TotalQuantity,
		Cost: domain.CartCost{
			Subtotal: n.Cost.SubtotalAmount,
			Total:    n.Cost.TotalAmount,
			TotalTax: n.Cost.TotalTaxAmount,
		},
		Lines: make([]domain.CartLine, 0, len(n.Lines.Edges)),
	}
	for _, edge := range n.Lines.Edges {
		line := edge.Node
		cart.Lines = append(cart.Lines, domain.CartLine{
			ID:       line.ID,
			Quantity: line.Quantity,
			Merchandise: domain.Merchandise{
				ID:              line.Merchandise.ID,
				Title:           line.Merchandise.Title,
				ProductTitle:    line.Merchandise.Product.Title,
				ProductHandle:   line.Merchandise.Product.Handle,
				Image:           line.Merchandise.Product.FeaturedImage,
				Price:           line.Merchandise.Price,
				SelectedOptions: line.Merchandise.SelectedOptions,
			},
		})
	}
	return cart
}

// decodeCartMutation unpacks data.<field> into a cart payload and applies
// the shared validation: user errors abort, a missing cart is a protocol
// violation.
func decodeCartMutation(data json.RawMessage, field string) (*domain.Cart, error) {
	var envelope map[string]cartMutationPayload
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("decode %s: %w", field, err)
	}
	payload, ok := envelope[field]
	if !ok {
		return nil, fmt.Errorf("%s: missing payload in response", field)
	}
	if len(payload.UserErrors) > 0 {
		return nil, &UserErrorList{Op: field, Errors: payload.UserErrors}
	}
	if payload.Cart == nil {
		return nil, fmt.Errorf("%s: missing cart in response", field)
	}
	return payload.Cart.toDomain(), nil
}

// CartCreate creates a new cart holding one line. The returned cart carries
// the backend-assigned identifier the caller must persist.
func (c *Client) CartCreate(ctx context.Context, line CartLineInput) (*domain.Cart, error) {
	data, err := c.Execute(ctx, cartCreateMutation, map[string]any{
		"lines": []CartLineInput{line},
	}, CacheNoStore)
	if err != nil {
		return nil, err
	}
	return decodeCartMutation(data, "cartCreate")
}

// CartLinesAdd adds one line to an existing cart. The backend may merge the
// quantity into an existing line for the same merchandise; callers must use
// the returned snapshot rather than assume either outcome.
func (c *Client) CartLinesAdd(ctx context.Context, cartID string, line CartLineInput) (*domain.Cart, error) {
	data, err := c.Execute(ctx, cartLinesAddMutation, map[string]any{
		"cartId": cartID,
		"lines":  []CartLineInput{line},
	}, CacheNoStore)
	if err != nil {
		return nil, err
	}
	return decodeCartMutation(data, "cartLinesAdd")
}

// CartLinesUpdate sets a line's quantity. Quantity zero is a semantic
// remove and must be redirected to CartLinesRemove by the caller.
func (c *Client) CartLinesUpdate(ctx context.Context, cartID, lineID string, quantity int) (*domain.Cart, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("cartLinesUpdate: quantity must be >= 1, got %d", quantity)
	}
	data, err := c.Execute(ctx, cartLinesUpdateMutation, map[string]any{
		"cartId": cartID,
		"lines": []map[string]any{
			{"id": lineID, "quantity": quantity},
		},
	}, CacheNoStore)
	if err != nil {
		return nil, err
	}
	return decodeCartMutation(data, "cartLinesUpdate")
}

// CartLinesRemove removes the given lines from the cart.
func (c *Client) CartLinesRemove(ctx context.Context, cartID string, lineIDs ...string) (*domain.Cart, error) {
	data, err := c.Execute(ctx, cartLinesRemoveMutation, map[string]any{
		"cartId":  cartID,
		"lineIds": lineIDs,
	}, CacheNoStore)
	if err != nil {
		return nil, err
	}
	return decodeCartMutation(data, "cartLinesRemove")
}

// CartFetch loads a cart by id. A (nil, nil) return means the identifier is
// invalid or expired; it is expected during rehydrate, not an error.
func (c *Client) CartFetch(ctx context.Context, cartID string) (*domain.Cart, error) {
	data, err := c.Execute(ctx, cartQuery, map[string]any{
		"cartId": cartID,
	}, CacheNoStore)
	if err != nil {
		return nil, err
	}
	var envelope struct {
		Cart *cartNode `json:"cart"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	if envelope.Cart == nil {
		return nil, nil
	}
	return envelope.Cart.toDomain(), nil
}

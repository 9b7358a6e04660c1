package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/joao-fontenele/restaurant-pos/internal/domain"
)

// OrdersClient reads orders from the orders service.
type OrdersClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewOrdersClient(baseURL string, client *http.Client) *OrdersClient {
	return &OrdersClient{baseURL: baseURL, httpClient: client}
}

func (c *OrdersClient) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/orders/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch order %s: %w", id, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.NotFound("order", id)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("orders service returned status %d for order %s", resp.StatusCode, id)
	}

	var order domain.Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("decode order %s: %w", id, err)
	}

	return &order, nil
}

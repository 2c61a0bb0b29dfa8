package inventory

import (
	"context"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/stockboard/internal/config"
	"github.com/mamadbah2/stockboard/internal/domain/models"
)

const (
	itemsPath = "/items"
	itemPath  = "/items/{id}"
)

// Client exposes CRUD access to the remote inventory collection.
type Client interface {
	List(ctx context.Context) (models.Snapshot, error)
	Create(ctx context.Context, fields models.ItemFields) (models.Item, error)
	Update(ctx context.Context, id models.ItemID, fields models.ItemFields) error
	Remove(ctx context.Context, id models.ItemID) error
}

// APIClient is a resty-backed implementation of Client. Failed calls are
// returned as is; there are no retries.
type APIClient struct {
	httpClient *resty.Client
}

// NewClient builds an inventory API client from the provided configuration values.
func NewClient(cfg config.InventoryConfig) *APIClient {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json").
		SetRetryCount(0)

	if cfg.Timeout > 0 {
		restyClient.SetTimeout(cfg.Timeout)
	}

	return &APIClient{httpClient: restyClient}
}

// List fetches the full collection.
func (c *APIClient) List(ctx context.Context) (models.Snapshot, error) {
	var snapshot models.Snapshot

	resp, err := c.httpClient.R().
		SetContext(ctx).
		ForceContentType("application/json").
		SetResult(&snapshot).
		Get(itemsPath)
	if err := checkResponse("list", resp, err); err != nil {
		return nil, err
	}

	if snapshot == nil {
		snapshot = models.Snapshot{}
	}
	return snapshot, nil
}

// Create submits a new record and returns it with the id assigned by the server.
func (c *APIClient) Create(ctx context.Context, fields models.ItemFields) (models.Item, error) {
	var created models.Item

	resp, err := c.httpClient.R().
		SetContext(ctx).
		ForceContentType("application/json").
		SetBody(fields).
		SetResult(&created).
		Post(itemsPath)
	if err := checkResponse("create", resp, err); err != nil {
		return models.Item{}, err
	}

	return created, nil
}

// Update replaces the fields of the record stored under id.
func (c *APIClient) Update(ctx context.Context, id models.ItemID, fields models.ItemFields) error {
	if id.IsZero() {
		return ErrMissingID
	}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetPathParam("id", id.String()).
		SetBody(fields).
		Put(itemPath)
	return checkResponse("update", resp, err)
}

// Remove deletes the record stored under id. An undefined id is rejected
// without issuing a request.
func (c *APIClient) Remove(ctx context.Context, id models.ItemID) error {
	if id.IsZero() {
		return ErrMissingID
	}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetPathParam("id", id.String()).
		Delete(itemPath)
	return checkResponse("remove", resp, err)
}

func checkResponse(op string, resp *resty.Response, err error) error {
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}

	if resp.IsError() {
		return &TransportError{
			Op:         op,
			StatusCode: resp.StatusCode(),
			Body:       strings.TrimSpace(resp.String()),
		}
	}

	return nil
}

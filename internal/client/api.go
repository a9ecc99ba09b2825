package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"autohaven/internal/common"
	"autohaven/internal/domain/filter"
	"autohaven/internal/domain/model"
)

// APIError is a non-2xx answer from the AutoHaven API. errors.Is matches it
// against the common sentinels by status code.
type APIError struct {
	Status  int
	Message string
	Details []common.FieldError
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

func (e *APIError) Is(target error) bool {
	switch e.Status {
	case http.StatusBadRequest:
		return target == common.ErrValidation || target == common.ErrBadRequest
	case http.StatusUnauthorized:
		return target == common.ErrUnauthorized
	case http.StatusForbidden:
		return target == common.ErrForbidden
	case http.StatusNotFound:
		return target == common.ErrNotFound
	case http.StatusConflict:
		return target == common.ErrConflict
	case http.StatusServiceUnavailable:
		return target == common.ErrServiceUnavailable
	}
	return e.Status >= http.StatusInternalServerError && target == common.ErrInternalServer
}

// AuthResult is the payload of register and login.
type AuthResult struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

// CarPage is one page of GET /api/cars.
type CarPage struct {
	Items      []model.Listing   `json:"items"`
	Pagination common.Pagination `json:"pagination"`
}

// ContactForm is the body of POST /api/contact.
type ContactForm struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Message string `json:"message"`
}

// APIClient handles HTTP communication with the backend
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient creates a client for the server at baseURL, e.g.
// "http://localhost:5000".
func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/") + "/api",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type dataEnvelope struct {
	Data json.RawMessage `json:"data"`
}

type pageEnvelope struct {
	Pagination common.Pagination `json:"pagination"`
	Data       []model.Listing   `json:"data"`
}

// do sends one request and decodes a 2xx body into out (if non-nil).
func (c *APIClient) do(ctx context.Context, method, path, token string, query url.Values, body, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: marshal %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("client: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("client: read %s %s: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var envelope common.ErrorResponse
		if json.Unmarshal(raw, &envelope) == nil && envelope.Error != "" {
			apiErr.Message = envelope.Error
			apiErr.Details = envelope.Details
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("client: decode %s %s: %w", method, path, err)
	}
	return nil
}

// doData decodes the "data" member of a success envelope into out.
func (c *APIClient) doData(ctx context.Context, method, path, token string, body, out interface{}) error {
	var envelope dataEnvelope
	if err := c.do(ctx, method, path, token, nil, body, &envelope); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("client: decode %s %s data: %w", method, path, err)
	}
	return nil
}

func (c *APIClient) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	body := map[string]string{"name": name, "email": email, "password": password}
	var res AuthResult
	if err := c.doData(ctx, http.MethodPost, "/users/register", "", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *APIClient) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	body := map[string]string{"email": email, "password": password}
	var res AuthResult
	if err := c.doData(ctx, http.MethodPost, "/users/login", "", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *APIClient) Profile(ctx context.Context, token string) (*model.User, error) {
	var u model.User
	if err := c.doData(ctx, http.MethodGet, "/users/profile", token, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ListCars pushes criteria down to the server and re-applies them to the
// returned page with filter.Apply.
func (c *APIClient) ListCars(ctx context.Context, token string, page, limit int, criteria filter.Criteria) (*CarPage, error) {
	query := criteria.Values()
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var envelope pageEnvelope
	if err := c.do(ctx, http.MethodGet, "/cars", token, query, nil, &envelope); err != nil {
		return nil, err
	}
	return &CarPage{
		Items:      filter.Apply(envelope.Data, criteria),
		Pagination: envelope.Pagination,
	}, nil
}

func (c *APIClient) GetCar(ctx context.Context, token, id string) (*model.Listing, error) {
	var l model.Listing
	if err := c.doData(ctx, http.MethodGet, "/cars/"+url.PathEscape(id), token, nil, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// CreateCar sends the fields set in fields; the server rejects missing
// required ones.
func (c *APIClient) CreateCar(ctx context.Context, token string, fields model.ListingPatch) (*model.Listing, error) {
	var l model.Listing
	if err := c.doData(ctx, http.MethodPost, "/cars", token, fields, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

func (c *APIClient) UpdateCar(ctx context.Context, token, id string, patch model.ListingPatch) (*model.Listing, error) {
	var l model.Listing
	if err := c.doData(ctx, http.MethodPut, "/cars/"+url.PathEscape(id), token, patch, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

func (c *APIClient) DeleteCar(ctx context.Context, token, id string) error {
	return c.doData(ctx, http.MethodDelete, "/cars/"+url.PathEscape(id), token, nil, nil)
}

func (c *APIClient) SendContact(ctx context.Context, form ContactForm) (*model.ContactMessage, error) {
	var m model.ContactMessage
	if err := c.doData(ctx, http.MethodPost, "/contact", "", form, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Package client is a small API client for the admin tooling.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"stichting-asha/internal/agenda"
	"stichting-asha/internal/models"

	"github.com/go-resty/resty/v2"
)

// ErrNotFound is returned for a 404 answer.
var ErrNotFound = errors.New("not found")

// APIError is a non-2xx answer carrying the server's error message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api returned %d", e.Status)
	}
	return fmt.Sprintf("api returned %d: %s", e.Status, e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

type errorBody struct {
	Error string `json:"error"`
}

type Client struct {
	http *resty.Client
}

// New creates a client for baseURL, e.g. https://api.stichtingasha.nl.
func New(baseURL string) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(30*time.Second).
			SetHeader("Accept", "application/json").
			SetError(&errorBody{}),
	}
}

// SetToken authenticates further requests.
func (c *Client) SetToken(token string) *Client {
	c.http.SetAuthToken(token)
	return c
}

func check(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if !resp.IsError() {
		return nil
	}
	apiErr := &APIError{Status: resp.StatusCode()}
	if body, ok := resp.Error().(*errorBody); ok && body != nil {
		apiErr.Message = body.Error
	}
	return apiErr
}

// Login exchanges credentials for a token and keeps it on the client.
func (c *Client) Login(ctx context.Context, email, password string) (*models.User, error) {
	var out struct {
		Token string       `json:"token"`
		User  *models.User `json:"user"`
	}
	err := check(c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&out).
		Post("/api/auth/login"))
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	c.SetToken(out.Token)
	return out.User, nil
}

func (c *Client) ListEvents(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	if err := check(c.http.R().SetContext(ctx).SetResult(&events).Get("/api/events")); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// ListGroups returns the agenda as the server groups it.
func (c *Client) ListGroups(ctx context.Context) ([]agenda.Group, error) {
	var groups []agenda.Group
	if err := check(c.http.R().SetContext(ctx).SetResult(&groups).Get("/api/agenda")); err != nil {
		return nil, fmt.Errorf("list agenda: %w", err)
	}
	return groups, nil
}

func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	err := check(c.http.R().
		SetContext(ctx).
		SetPathParam("id", id).
		Delete("/api/events/{id}"))
	if err != nil {
		return fmt.Errorf("delete event %s: %w", id, err)
	}
	return nil
}

// DeleteGroup deletes every target of g in parallel. All targets are
// attempted; the failures are joined.
func (c *Client) DeleteGroup(ctx context.Context, g *agenda.Group) error {
	targets := agenda.DeleteTargets(g)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, id := range targets {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if err := c.DeleteEvent(ctx, id); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}(id)
	}
	wg.Wait()

	return errors.Join(errs...)
}

// DeleteSeries removes a series and all of its occurrences.
func (c *Client) DeleteSeries(ctx context.Context, id string) error {
	err := check(c.http.R().
		SetContext(ctx).
		SetPathParam("id", id).
		Delete("/api/series/{id}"))
	if err != nil {
		return fmt.Errorf("delete series %s: %w", id, err)
	}
	return nil
}

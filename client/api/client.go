// Package api is a thin client of the academy REST api.
package api

import (
	"academy/client/guard"
	"academy/common"
	"academy/domain"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/fundwit/go-commons/types"
)

const DefaultTimeout = 10 * time.Second

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: DefaultTimeout, Transport: &TracingTransport{Transport: http.DefaultTransport}},
	}
}

// Profile is the response of GET /api/auth/me.
type Profile struct {
	ID           types.ID                      `json:"id"`
	Email        string                        `json:"email"`
	FirstName    string                        `json:"firstName"`
	LastName     string                        `json:"lastName"`
	Roles        []string                      `json:"roles"`
	Organization domain.OrganizationDescriptor `json:"organization"`
	Permissions  []string                      `json:"permissions"`
}

func (c *Client) Me(ctx context.Context, token string) (*Profile, error) {
	body, err := c.invoke(ctx, http.MethodGet, "/api/auth/me", token)
	if err != nil {
		return nil, err
	}
	profile := Profile{}
	if err := json.Unmarshal([]byte(body), &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// IdentityResolver resolves the guard identity through the profile endpoint.
func (c *Client) IdentityResolver(token string) guard.IdentityResolver {
	return guard.IdentityResolverFunc(func(ctx context.Context) (*guard.Identity, error) {
		profile, err := c.Me(ctx, token)
		if err != nil {
			return nil, err
		}
		return &guard.Identity{Email: profile.Email, Roles: profile.Roles, Organization: profile.Organization}, nil
	})
}

func (c *Client) invoke(ctx context.Context, method, path, token string) (string, error) {
	headers := http.Header{"Accept": []string{"application/json"}}
	if token != "" {
		headers.Set("Authorization", "Bearer "+token)
	}
	return common.HttpInvokeJson(ctx, c.HTTP, method, c.BaseURL+path, headers, "")
}

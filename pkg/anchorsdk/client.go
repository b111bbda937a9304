package anchorsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a thin HTTP client for the anchor service, authenticated with a
// bearer token minted by the identity provider.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Token      string
}

// NewClient creates a client against baseURL using token for authentication.
func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		Token: token,
	}
}

// IssueInvite creates a new invite code owned by the authenticated user.
func (c *Client) IssueInvite(ctx context.Context) (*InviteResponse, error) {
	var resp InviteResponse
	if err := c.do(ctx, http.MethodPost, "/v1/invites", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Invites lists the codes the authenticated user has issued, newest first.
func (c *Client) Invites(ctx context.Context) (*InvitesResponse, error) {
	var resp InvitesResponse
	if err := c.do(ctx, http.MethodGet, "/v1/invites", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RedeemInvite redeems a code, creating a relationship with its owner.
func (c *Client) RedeemInvite(ctx context.Context, req RedeemInviteRequest) (*RelationshipResponse, error) {
	var resp RelationshipResponse
	if err := c.do(ctx, http.MethodPost, "/v1/invites/redeem", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Relationships lists the authenticated user's relationships.
func (c *Client) Relationships(ctx context.Context, deviceTimezone string) (*RelationshipsResponse, error) {
	path := "/v1/relationships"
	if deviceTimezone != "" {
		path += "?device_timezone=" + url.QueryEscape(deviceTimezone)
	}
	var resp RelationshipsResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Disconnect ends a relationship the authenticated user is a party to.
func (c *Client) Disconnect(ctx context.Context, relationshipID string) error {
	return c.do(ctx, http.MethodDelete, "/v1/relationships/"+url.PathEscape(relationshipID), nil, nil)
}

// Profile fetches the authenticated user's profile.
func (c *Client) Profile(ctx context.Context) (*ProfileResponse, error) {
	var resp ProfileResponse
	if err := c.do(ctx, http.MethodGet, "/v1/profile", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateProfile patches the authenticated user's profile.
func (c *Client) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*ProfileResponse, error) {
	var resp ProfileResponse
	if err := c.do(ctx, http.MethodPatch, "/v1/profile", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LogSlipUp records a relapse event.
func (c *Client) LogSlipUp(ctx context.Context, req LogSlipUpRequest) (*SlipUpResponse, error) {
	var resp SlipUpResponse
	if err := c.do(ctx, http.MethodPost, "/v1/slipups", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SlipUps lists the authenticated user's slip-up history.
func (c *Client) SlipUps(ctx context.Context) (*SlipUpsResponse, error) {
	var resp SlipUpsResponse
	if err := c.do(ctx, http.MethodGet, "/v1/slipups", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Streak fetches the authenticated user's current streak.
func (c *Client) Streak(ctx context.Context, deviceTimezone string) (*StreakResponse, error) {
	path := "/v1/streak"
	if deviceTimezone != "" {
		path += "?device_timezone=" + url.QueryEscape(deviceTimezone)
	}
	var resp StreakResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("anchorsdk: encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var envelope ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&envelope)
		return &APIError{
			Status:      resp.StatusCode,
			Code:        envelope.Error,
			Description: envelope.ErrorDescription,
		}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

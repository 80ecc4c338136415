// Package client is the Go consumer of the gymgate API: kiosks and member
// status pages build on it. It decodes the response envelope strictly — a
// body that is not a well-formed envelope is a protocol error, never
// silently passed through.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"gymgate/internal/models"
)

// ErrProtocol reports a response body that does not match the documented
// envelope shape.
var ErrProtocol = errors.New("malformed response envelope")

// APIError is a server-reported failure; Cause is the human-readable
// message from _error.cause, surfaced verbatim.
type APIError struct {
	StatusCode int
	Cause      string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Cause)
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a client for the given base URL (including the /api/v1
// prefix, e.g. http://localhost:8080/api/v1).
func New(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) SetAPIKey(key string) {
	c.apiKey = key
}

// Decision is a single scan attempt's outcome as reported by the server.
type Decision struct {
	Success   bool                    `json:"success"`
	Status    models.CheckInStatus    `json:"status"`
	Direction models.CheckInDirection `json:"direction"`
	Reason    models.DenialReason     `json:"reason"`
	Member    *MemberSnapshot         `json:"member"`
}

type MemberSnapshot struct {
	ID               uint                    `json:"id"`
	MemberID         string                  `json:"memberId"`
	Name             string                  `json:"name"`
	Email            string                  `json:"email"`
	Phone            string                  `json:"phone"`
	MembershipStatus models.MembershipStatus `json:"membershipStatus"`
	StartDate        *time.Time              `json:"startDate"`
	EndDate          *time.Time              `json:"endDate"`
}

func (d *Decision) Allowed() bool {
	return d.Status == models.CheckInAllowed
}

// MemberStatus is the check-status payload: effective membership status
// plus the server-authoritative check-in state.
type MemberStatus struct {
	Registered           bool                    `json:"registered"`
	Member               models.Member           `json:"member"`
	Status               models.MembershipStatus `json:"status"`
	CurrentCheckInStatus string                  `json:"currentCheckInStatus"`
	CurrentCheckIn       *models.CheckInLog      `json:"currentCheckIn"`
}

func (c *Client) CheckIn(ctx context.Context, memberID, deviceID string) (*Decision, error) {
	return c.scan(ctx, "/checkin", memberID, deviceID)
}

func (c *Client) CheckOut(ctx context.Context, memberID, deviceID string) (*Decision, error) {
	return c.scan(ctx, "/checkout", memberID, deviceID)
}

func (c *Client) scan(ctx context.Context, path, memberID, deviceID string) (*Decision, error) {
	body := map[string]string{"memberId": memberID}
	if deviceID != "" {
		body["deviceId"] = deviceID
	}

	raw, err := c.do(ctx, http.MethodPost, path, nil, body)
	if err != nil {
		return nil, err
	}

	var decision Decision
	if err := json.Unmarshal(raw, &decision); err != nil {
		return nil, ErrProtocol
	}
	if decision.Status != models.CheckInAllowed && decision.Status != models.CheckInDenied {
		return nil, ErrProtocol
	}
	return &decision, nil
}

// CheckStatus returns (nil, nil) when the member is not registered: a 404
// here is a legitimate "no record yet", not a failure.
func (c *Client) CheckStatus(ctx context.Context, memberID string) (*MemberStatus, error) {
	query := url.Values{"memberId": {memberID}}

	raw, err := c.do(ctx, http.MethodGet, "/members/check-status", query, nil)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}

	var status MemberStatus
	if err := json.Unmarshal(raw, &status); err != nil {
		return nil, ErrProtocol
	}
	return &status, nil
}

type RegisterInput struct {
	Name                string `json:"name"`
	Email               string `json:"email,omitempty"`
	Phone               string `json:"phone,omitempty"`
	MembershipPackageID uint   `json:"membershipPackageId"`
}

// Register submits a registration and returns the assigned member code.
func (c *Client) Register(ctx context.Context, input RegisterInput) (string, error) {
	raw, err := c.do(ctx, http.MethodPost, "/members/register", nil, input)
	if err != nil {
		return "", err
	}

	var created struct {
		MemberID string `json:"memberId"`
	}
	if err := json.Unmarshal(raw, &created); err != nil || created.MemberID == "" {
		return "", ErrProtocol
	}
	return created.MemberID, nil
}

// Packages lists the active membership catalog.
func (c *Client) Packages(ctx context.Context) ([]models.MembershipPackage, error) {
	query := url.Values{"isActive": {"true"}}

	raw, err := c.do(ctx, http.MethodGet, "/membership-packages", query, nil)
	if err != nil {
		return nil, err
	}

	var packages []models.MembershipPackage
	if err := json.Unmarshal(raw, &packages); err != nil {
		return nil, ErrProtocol
	}
	return packages, nil
}

type envelope struct {
	Data *struct {
		Data json.RawMessage `json:"data"`
	} `json:"_data"`
	Error *struct {
		Cause string `json:"cause"`
	} `json:"_error"`
	MetaData *struct {
		StatusCode int `json:"statusCode"`
	} `json:"_metaData"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}) (json.RawMessage, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, ErrProtocol
	}

	if env.Error != nil {
		code := resp.StatusCode
		if env.MetaData != nil && env.MetaData.StatusCode != 0 {
			code = env.MetaData.StatusCode
		}
		return nil, &APIError{StatusCode: code, Cause: env.Error.Cause}
	}

	if resp.StatusCode >= 400 {
		return nil, &APIError{StatusCode: resp.StatusCode, Cause: http.StatusText(resp.StatusCode)}
	}

	if env.Data == nil || env.Data.Data == nil {
		return nil, ErrProtocol
	}
	return env.Data.Data, nil
}

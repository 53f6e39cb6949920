package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"institute-admin/internal/domain"
)

// ClaimsClient talks to the identity provider's custom-claims endpoint. The
// caller's own bearer token authenticates the call; the provider enforces
// that the caller is an owner.
type ClaimsClient struct {
	endpoint string
	client   *http.Client
}

func NewClaimsClient(endpoint string) *ClaimsClient {
	return &ClaimsClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *ClaimsClient) Configured() bool {
	return c.endpoint != ""
}

func (c *ClaimsClient) SetRoleClaims(ctx context.Context, callerToken, email, coarseRole, appRoleID string) error {
	if !c.Configured() {
		return errors.New("claims endpoint not configured")
	}
	body, err := json.Marshal(map[string]string{
		"email":     email,
		"role":      coarseRole,
		"appRoleId": appRoleID,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+callerToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized:
		return domain.ErrUnauthorized
	case http.StatusForbidden:
		return domain.ErrPermissionDeny
	default:
		var payload struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&payload)
		if payload.Error != "" {
			return errors.New(payload.Error)
		}
		return fmt.Errorf("claims endpoint returned status %d", resp.StatusCode)
	}
}

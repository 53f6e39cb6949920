package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"institute-admin/internal/domain"
)

func TestClaimsClientConfigured(t *testing.T) {
	assert.False(t, NewClaimsClient("").Configured())
	assert.True(t, NewClaimsClient("https://idp.example/claims").Configured())
}

func TestSetRoleClaimsSendsPayloadAndBearer(t *testing.T) {
	var gotAuth string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClaimsClient(srv.URL)
	err := client.SetRoleClaims(context.Background(), "caller-token", "a@example.com", domain.CoarseLimited, "role-frontdesk")
	require.NoError(t, err)
	assert.Equal(t, "Bearer caller-token", gotAuth)
	assert.Equal(t, map[string]string{
		"email":     "a@example.com",
		"role":      domain.CoarseLimited,
		"appRoleId": "role-frontdesk",
	}, gotBody)
}

func TestSetRoleClaimsMapsStatusCodes(t *testing.T) {
	cases := []struct {
		status  int
		body    string
		wantErr error
		wantMsg string
	}{
		{status: http.StatusUnauthorized, wantErr: domain.ErrUnauthorized},
		{status: http.StatusForbidden, wantErr: domain.ErrPermissionDeny},
		{status: http.StatusBadRequest, body: `{"error":"email not found"}`, wantMsg: "email not found"},
		{status: http.StatusBadGateway, wantMsg: "status 502"},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tc.status)
			if tc.body != "" {
				_, _ = w.Write([]byte(tc.body))
			}
		}))
		client := NewClaimsClient(srv.URL)
		err := client.SetRoleClaims(context.Background(), "t", "a@example.com", domain.CoarseLimited, "role-frontdesk")
		srv.Close()

		require.Error(t, err, "status %d", tc.status)
		if tc.wantErr != nil {
			assert.ErrorIs(t, err, tc.wantErr)
		}
		if tc.wantMsg != "" {
			assert.Contains(t, err.Error(), tc.wantMsg)
		}
	}
}

func TestSetRoleClaimsUnconfigured(t *testing.T) {
	err := NewClaimsClient("").SetRoleClaims(context.Background(), "t", "a@example.com", domain.CoarseLimited, "role-frontdesk")
	assert.Error(t, err)
}

package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) TestLogin() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cases := map[string]struct {
		loginReq           loginRequest
		expectedStatusCode int
		assertFunc         func(resp *http.Response)
	}{
		"good creds": {
			loginReq: loginRequest{
				Username: testUsername,
				Password: testPassword,
			},
			expectedStatusCode: http.StatusOK,
			assertFunc: func(resp *http.Response) {
				respBytes, err := io.ReadAll(resp.Body)
				require.NoError(t, err)

				var loginResp loginResponse
				require.NoError(t, json.Unmarshal(respBytes, &loginResp))
				assert.NotEmpty(t, loginResp.Token)
				assert.Positive(t, loginResp.UserID)
			},
		},
		"good creds, then logout": {
			loginReq: loginRequest{
				Username: testUsername,
				Password: testPassword,
			},
			expectedStatusCode: http.StatusOK,
			assertFunc: func(resp *http.Response) {
				respBytes, err := io.ReadAll(resp.Body)
				require.NoError(t, err)

				var loginResp loginResponse
				require.NoError(t, json.Unmarshal(respBytes, &loginResp))
				assert.NotEmpty(t, loginResp.Token)

				req, err := http.NewRequestWithContext(ctx, "GET", fmt.Sprintf("%s/a/logout", serverEndpoint), nil)
				require.NoError(t, err)
				req.Header.Set("User-Agent", "test-agent")
				req.Header.Set("Content-Type", "application/json")
				req.Header.Set("X-WB-TOKEN", loginResp.Token)

				logoutResp, err := http.DefaultClient.Do(req)
				require.NoError(t, err)
				assert.Equal(t, http.StatusOK, logoutResp.StatusCode)
				logoutResp.Body.Close()
			},
		},
		"bad password": {
			loginReq: loginRequest{
				Username: testUsername,
				Password: "bad-password",
			},
			expectedStatusCode: http.StatusBadRequest,
			assertFunc: func(resp *http.Response) {
				respBytes, err := io.ReadAll(resp.Body)
				require.NoError(t, err)
				respString := strings.TrimSpace(string(respBytes))
				assert.Equal(t, "error, wrong credentials", respString)
			},
		},
		"bad username": {
			loginReq: loginRequest{
				Username: "bad-username",
				Password: testPassword,
			},
			expectedStatusCode: http.StatusBadRequest,
			assertFunc: func(resp *http.Response) {
				respBytes, err := io.ReadAll(resp.Body)
				require.NoError(t, err)
				respString := strings.TrimSpace(string(respBytes))
				assert.Equal(t, "error, wrong credentials", respString)
			},
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			loginReqJson, err := json.Marshal(tc.loginReq)
			require.NoError(t, err)

			req, err := http.NewRequestWithContext(ctx, "POST", fmt.Sprintf("%s/a/login", serverEndpoint), bytes.NewBuffer(loginReqJson))
			require.NoError(t, err)
			req.Header.Set("User-Agent", "test-agent")
			req.Header.Set("Content-Type", "application/json")

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			require.Equal(t, tc.expectedStatusCode, resp.StatusCode)
			defer resp.Body.Close()

			tc.assertFunc(resp)
		})
	}
}

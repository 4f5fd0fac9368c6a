/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/graphql-go/graphql"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/hummer-gql/auth"
	"github.com/tomoncle/hummer-gql/graph"
)

type whoami struct{}

func (whoami) Queries() graphql.Fields {
	return graphql.Fields{
		"whoami": &graphql.Field{
			Type: graphql.String,
			Resolve: graph.Guard(auth.RoleUser, func(p graphql.ResolveParams) (interface{}, error) {
				principal, err := graph.CurrentUser(p.Context)
				if err != nil {
					return nil, err
				}
				return principal.Subject + ":" + string(principal.Role), nil
			}),
		},
		"double": &graphql.Field{
			Type: graphql.Int,
			Args: graphql.FieldConfigArgument{"n": &graphql.ArgumentConfig{Type: graphql.Int}},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				n, _ := p.Args["n"].(int)
				return n * 2, nil
			},
		},
	}
}

func (whoami) Mutations() graphql.Fields { return nil }

type response struct {
	Data   map[string]interface{} `json:"data"`
	Errors []struct {
		Message    string                 `json:"message"`
		Extensions map[string]interface{} `json:"extensions"`
	} `json:"errors"`
}

func newTestServer(t *testing.T, allowGET bool) (http.Handler, *auth.JWTManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	schema, err := graph.NewSchema(whoami{})
	require.NoError(t, err)
	jwt, err := auth.NewJWTManager("test-secret", "", time.Hour)
	require.NoError(t, err)
	h := NewHandler(Options{
		Schema:      schema,
		JWT:         jwt,
		CORSOrigins: []string{"https://app.example.com"},
		AllowGET:    allowGET,
		Gatherer:    prometheus.NewRegistry(),
	})
	return h, jwt
}

func post(t *testing.T, h http.Handler, body string, token string) (*httptest.ResponseRecorder, response) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	var res response
	_ = json.Unmarshal(w.Body.Bytes(), &res)
	return w, res
}

func TestGraphQLWithToken(t *testing.T) {
	h, jwt := newTestServer(t, false)
	token, err := jwt.Sign("u-1", auth.RoleAdmin)
	require.NoError(t, err)

	w, res := post(t, h, `{"query":"{ whoami }"}`, token)
	assert.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, res.Errors)
	assert.Equal(t, "u-1:admin", res.Data["whoami"])
}

func TestGraphQLAnonymous(t *testing.T) {
	h, _ := newTestServer(t, false)
	w, res := post(t, h, `{"query":"query($n: Int) { double(n: $n) whoami }","variables":{"n":21}}`, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 42, res.Data["double"])
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "UNAUTHENTICATED", res.Errors[0].Extensions["code"])
}

func TestGraphQLRejectsBadToken(t *testing.T) {
	h, _ := newTestServer(t, false)
	w, res := post(t, h, `{"query":"{ whoami }"}`, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "UNAUTHENTICATED", res.Errors[0].Extensions["code"])
}

func TestGraphQLBadRequests(t *testing.T) {
	h, _ := newTestServer(t, false)

	w, _ := post(t, h, `not json`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = post(t, h, `{"query":""}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/graphql?query="+url.QueryEscape("{ double(n: 1) }"), nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestGraphQLGet(t *testing.T) {
	h, _ := newTestServer(t, true)
	q := url.Values{"query": {"query($n: Int) { double(n: $n) }"}, "variables": {`{"n": 4}`}}
	req := httptest.NewRequest(http.MethodGet, "/graphql?"+q.Encode(), nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var res response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.EqualValues(t, 8, res.Data["double"])
}

func TestHealthWithoutDatabase(t *testing.T) {
	h, _ := newTestServer(t, false)
	req := httptest.NewRequest(http.MethodGet, "/health", nil).WithContext(context.Background())
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "Database not initialized")
}

func TestMetricsEndpoint(t *testing.T) {
	h, _ := newTestServer(t, false)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	h, _ := newTestServer(t, false)

	req := httptest.NewRequest(http.MethodOptions, "/graphql", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "authorization,content-type")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/graphql", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

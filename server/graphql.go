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
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/graphql-go/graphql"
)

type graphQLRequest struct {
	Query         string                 `json:"query" form:"query"`
	Variables     map[string]interface{} `json:"variables"`
	OperationName string                 `json:"operationName" form:"operationName"`
}

// graphQLHandler executes POST bodies, and GET query strings when allowGET
// is set. Execution errors are reported in the body with status 200.
func graphQLHandler(schema graphql.Schema, allowGET bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req graphQLRequest
		switch c.Request.Method {
		case http.MethodPost:
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, errorResponse("invalid request body: "+err.Error(), "BAD_REQUEST"))
				return
			}
		case http.MethodGet:
			if !allowGET {
				c.JSON(http.StatusMethodNotAllowed, errorResponse("use POST", "BAD_REQUEST"))
				return
			}
			req.Query = c.Query("query")
			req.OperationName = c.Query("operationName")
			if raw := c.Query("variables"); raw != "" {
				if err := json.Unmarshal([]byte(raw), &req.Variables); err != nil {
					c.JSON(http.StatusBadRequest, errorResponse("invalid variables: "+err.Error(), "BAD_REQUEST"))
					return
				}
			}
		}
		if req.Query == "" {
			c.JSON(http.StatusBadRequest, errorResponse("query is required", "BAD_REQUEST"))
			return
		}

		res := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.Request.Context(),
		})
		c.JSON(http.StatusOK, res)
	}
}

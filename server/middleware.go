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
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/tomoncle/hummer-gql/auth"
)

// RequestLogger logs one line per request. The field names match the ones
// the JSON log formatter lifts to the top level.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := logger.WithFields(logrus.Fields{
			"req_uri":      c.Request.URL.Path,
			"req_method":   c.Request.Method,
			"client_ip":    c.ClientIP(),
			"latency_time": time.Since(start).String(),
			"status_code":  c.Writer.Status(),
		})
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			entry.Error("request failed")
		case c.Writer.Status() >= http.StatusBadRequest:
			entry.Warn("request rejected")
		default:
			entry.Info("request served")
		}
	}
}

// Authenticate resolves a bearer token into the request principal. Requests
// without an Authorization header continue anonymously so resolvers can
// decide; a present but invalid token is rejected.
func Authenticate(jwt *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractBearerToken(c.Request)
		if errors.Is(err, auth.ErrMissingHeader) {
			c.Next()
			return
		}
		if err != nil {
			abortUnauthorized(c, err)
			return
		}
		principal, err := jwt.Parse(token)
		if err != nil {
			abortUnauthorized(c, err)
			return
		}
		c.Request = c.Request.WithContext(auth.WithPrincipal(c.Request.Context(), principal))
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, err error) {
	logger.WithError(err).WithField("client_ip", c.ClientIP()).Warn("rejected bearer token")
	c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse(auth.ErrUnauthorized.Message, auth.ErrUnauthorized.Code))
}

func errorResponse(message, code string) gin.H {
	return gin.H{"errors": []gin.H{{
		"message":    message,
		"extensions": gin.H{"code": code},
	}}}
}

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

package graph

import (
	"errors"

	"github.com/graphql-go/graphql"
	"github.com/tomoncle/hummer-gql/auth"
	"github.com/tomoncle/hummer-gql/types"
)

// ErrInternal replaces failures that must not leak to clients.
var ErrInternal = errors.New("internal server error")

// PublicError unwraps client facing errors so graphql-go can read their
// extensions. Anything else is logged and replaced by ErrInternal.
func PublicError(field string, err error) error {
	if err == nil {
		return nil
	}
	var badRequest *types.BadRequestError
	if errors.As(err, &badRequest) {
		return badRequest
	}
	var authErr *auth.Error
	if errors.As(err, &authErr) {
		return authErr
	}
	logger.WithField("field", field).WithError(err).Error("resolver failed")
	return ErrInternal
}

// Resolve adapts a resolver so its errors go through PublicError.
func Resolve(resolve graphql.FieldResolveFn) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		out, err := resolve(p)
		if err != nil {
			return nil, PublicError(p.Info.FieldName, err)
		}
		return out, nil
	}
}

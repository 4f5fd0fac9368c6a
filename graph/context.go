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
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/printer"
	"github.com/tomoncle/hummer-gql/auth"
	"github.com/tomoncle/hummer-gql/utils"
)

var logger = utils.NewLogger("graph")

// CurrentQuery prints the field being resolved, and every fragment of the
// operation, as a standalone query document. The repository reads it to
// decide which relations and columns to load.
func CurrentQuery(p graphql.ResolveParams) string {
	if len(p.Info.FieldASTs) == 0 || p.Info.FieldASTs[0] == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("{ ")
	b.WriteString(fmt.Sprint(printer.Print(p.Info.FieldASTs[0])))
	b.WriteString(" }")

	names := make([]string, 0, len(p.Info.Fragments))
	for name := range p.Info.Fragments {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		b.WriteString("\n")
		b.WriteString(fmt.Sprint(printer.Print(p.Info.Fragments[name])))
	}
	return b.String()
}

// CurrentUser returns the authenticated principal of the request.
func CurrentUser(ctx context.Context) (*auth.Principal, error) {
	principal := auth.PrincipalFrom(ctx)
	if principal == nil {
		return nil, auth.ErrUnauthorized
	}
	return principal, nil
}

// Guard wraps a resolver with a role check.
func Guard(role auth.Role, resolve graphql.FieldResolveFn) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		principal, err := CurrentUser(p.Context)
		if err != nil {
			logger.WithField("field", p.Info.FieldName).Warn("rejected anonymous request")
			return nil, err
		}
		if !principal.Role.Allows(role) {
			logger.WithField("field", p.Info.FieldName).
				WithField("subject", principal.Subject).
				Warnf("role %s below required %s", principal.Role, role)
			return nil, auth.ErrForbidden
		}
		return resolve(p)
	}
}

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

package user

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/tomoncle/hummer-gql/auth"
	"github.com/tomoncle/hummer-gql/types"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type CreateUserInput struct {
	Email    string    `validate:"required,email"`
	Name     string    `validate:"required"`
	Password string    `validate:"min=8"`
	Role     auth.Role `validate:"oneof=user admin"`
	Settings types.JsonObject
}

// UpdateUserInput holds the properties to change. Nil fields are left alone.
type UpdateUserInput struct {
	Email    *string `validate:"omitnil,email"`
	Name     *string
	Password *string    `validate:"omitnil,min=8"`
	Role     *auth.Role `validate:"omitnil,oneof=user admin"`
	Settings types.JsonObject
}

func (in *CreateUserInput) Validate() error {
	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if in.Role == "" {
		in.Role = auth.RoleUser
	}
	return badRequest(validate.Struct(in))
}

func (in *UpdateUserInput) Validate() error {
	if in.Email == nil && in.Name == nil && in.Password == nil && in.Role == nil && in.Settings == nil {
		return types.NewBadRequest("input", "Update input is empty")
	}
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		in.Email = &email
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return types.NewBadRequest("name", "Name is required")
		}
		in.Name = &name
	}
	return badRequest(validate.Struct(in))
}

// badRequest turns the first validation failure into a client error.
func badRequest(err error) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return err
	}
	fe := errs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return types.NewBadRequest(field, fmt.Sprintf("%s is required", fe.Field()))
	case "email":
		return types.NewBadRequest(field, fmt.Sprintf("Email %v is invalid", fe.Value()))
	case "min":
		return types.NewBadRequest(field, fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param()))
	case "oneof":
		return types.NewBadRequest(field, fmt.Sprintf("%s must be one of %s, got %v", fe.Field(), fe.Param(), fe.Value()))
	default:
		return types.NewBadRequest(field, fmt.Sprintf("%s is invalid", fe.Field()))
	}
}

// decodeCreateInput reads the createUser input argument.
func decodeCreateInput(args map[string]interface{}) *CreateUserInput {
	in := &CreateUserInput{}
	in.Email, _ = args["email"].(string)
	in.Name, _ = args["name"].(string)
	in.Password, _ = args["password"].(string)
	if role, ok := roleArg(args["role"]); ok {
		in.Role = role
	}
	in.Settings = jsonObjectArg(args["settings"])
	return in
}

// decodeUpdateInput reads the updateUser input argument.
func decodeUpdateInput(args map[string]interface{}) *UpdateUserInput {
	in := &UpdateUserInput{}
	if v, ok := args["email"].(string); ok {
		in.Email = &v
	}
	if v, ok := args["name"].(string); ok {
		in.Name = &v
	}
	if v, ok := args["password"].(string); ok {
		in.Password = &v
	}
	if role, ok := roleArg(args["role"]); ok {
		in.Role = &role
	}
	in.Settings = jsonObjectArg(args["settings"])
	return in
}

func roleArg(v interface{}) (auth.Role, bool) {
	switch role := v.(type) {
	case auth.Role:
		return role, true
	case string:
		return auth.Role(role), true
	}
	return "", false
}

func jsonObjectArg(v interface{}) types.JsonObject {
	switch obj := v.(type) {
	case types.JsonObject:
		return obj
	case map[string]interface{}:
		return types.JsonObject(obj)
	}
	return nil
}

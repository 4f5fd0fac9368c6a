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

package types

import "errors"

// BadRequestError reports invalid client input. Field names the offending
// input path when one is known.
type BadRequestError struct {
	Field   string
	Message string
}

// NewBadRequest returns a BadRequestError for the given input field.
func NewBadRequest(field string, message string) *BadRequestError {
	return &BadRequestError{Field: field, Message: message}
}

func (e *BadRequestError) Error() string {
	return e.Message
}

// Extensions exposes the error category to GraphQL clients.
func (e *BadRequestError) Extensions() map[string]interface{} {
	ext := map[string]interface{}{
		"code":   "BAD_REQUEST",
		"status": 400,
	}
	if e.Field != "" {
		ext["field"] = e.Field
	}
	return ext
}

// IsBadRequest reports whether err, or any error it wraps, is a BadRequestError.
func IsBadRequest(err error) bool {
	var target *BadRequestError
	return errors.As(err, &target)
}

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

package utils

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, ParseLogLevel("DEBUG"))
	assert.Equal(t, logrus.WarnLevel, ParseLogLevel(" warning "))
	assert.Equal(t, logrus.InfoLevel, ParseLogLevel(""))
	assert.Equal(t, logrus.InfoLevel, ParseLogLevel("loud"))
}

func TestNewLoggerIsRegistered(t *testing.T) {
	a := NewLogger("TEST-REG")
	b := NewLogger("TEST-REG")
	assert.Same(t, a, b)

	assert.True(t, SetLoggerLevel("TEST-REG", "error"))
	assert.Equal(t, logrus.ErrorLevel, a.GetLevel())
	assert.False(t, SetLoggerLevel("TEST-MISSING", "error"))
}

func TestJSONLogFormatter(t *testing.T) {
	f := &JSONLogFormatter{LoggerName: "HTTP"}
	entry := logrus.NewEntry(logrus.New()).WithFields(logrus.Fields{
		"req_method":  "POST",
		"req_uri":     "/graphql",
		"status_code": 200,
		"user":        "u1",
	})
	entry.Message = "request"
	entry.Level = logrus.InfoLevel

	b, err := f.Format(entry)
	require.NoError(t, err)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(b, &rec))
	assert.Equal(t, "HTTP", rec["model"])
	assert.Equal(t, "POST", rec["method"])
	assert.Equal(t, "/graphql", rec["path"])
	assert.Equal(t, float64(200), rec["status_code"])
	assert.Equal(t, map[string]any{"user": "u1"}, rec["fields"])
}

func TestLog4jColorFormatterIncludesFields(t *testing.T) {
	f := &Log4jColorFormatter{LoggerName: "DATABASE", NameWidth: 10}
	entry := logrus.NewEntry(logrus.New()).WithField("table", "users")
	entry.Message = "created"
	entry.Level = logrus.InfoLevel

	b, err := f.Format(entry)
	require.NoError(t, err)
	assert.Contains(t, string(b), "created table=users")
	assert.Contains(t, string(b), "DATABASE")
}

func TestConfigureLogOutput(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger("TEST-OUT")
	ConfigureLogOutput(&buf)
	l.Warn("watch out")
	assert.Contains(t, buf.String(), "watch out")
}

func TestCallerString(t *testing.T) {
	assert.Equal(t, "query/order.go:12", callerString("/src/app/query/order.go", 12, 0))
	assert.Equal(t, "order.go:12", callerString("/src/app/query/order.go", 12, 11))
}

// Copyright (C) 2025 sage-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

package health

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckReportsHealthyAndCaches(t *testing.T) {
	checker := NewHealthChecker(time.Second)
	calls := 0
	checker.RegisterCheck("ca-key", KeyPairHealthCheck(func() error {
		calls++
		return nil
	}))

	result, err := checker.Check(context.Background(), "ca-key")
	require.NoError(t, err)
	assert.Equal(t, StatusHealthy, result.Status)

	_, err = checker.Check(context.Background(), "ca-key")
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "second call within cacheTTL should hit the cache")
}

func TestCheckReportsUnhealthyOnError(t *testing.T) {
	checker := NewHealthChecker(time.Second)
	checker.RegisterCheck("ca-db", DatabaseHealthCheck(func(context.Context) error {
		return errors.New("connection refused")
	}))

	result, err := checker.Check(context.Background(), "ca-db")
	require.NoError(t, err)
	assert.Equal(t, StatusUnhealthy, result.Status)
	assert.Contains(t, result.Message, "connection refused")
}

func TestCheckUnknownNameErrors(t *testing.T) {
	checker := NewHealthChecker(time.Second)
	_, err := checker.Check(context.Background(), "missing")
	assert.Error(t, err)
}

func TestGetOverallStatusAggregates(t *testing.T) {
	checker := NewHealthChecker(time.Second)
	checker.RegisterCheck("ok", KeyPairHealthCheck(func() error { return nil }))
	checker.RegisterCheck("bad", DatabaseHealthCheck(func(context.Context) error { return errors.New("down") }))

	assert.Equal(t, StatusUnhealthy, checker.GetOverallStatus(context.Background()))
}

func TestHandlerReturns503WhenUnhealthy(t *testing.T) {
	checker := NewHealthChecker(time.Second)
	checker.RegisterCheck("bad", DatabaseHealthCheck(func(context.Context) error { return errors.New("down") }))

	req := httptest.NewRequest("GET", "/healthz", nil)
	rec := httptest.NewRecorder()
	checker.Handler().ServeHTTP(rec, req)

	assert.Equal(t, 503, rec.Code)
}

func TestHandlerReturns200WhenHealthy(t *testing.T) {
	checker := NewHealthChecker(time.Second)
	checker.RegisterCheck("ok", KeyPairHealthCheck(func() error { return nil }))

	req := httptest.NewRequest("GET", "/healthz", nil)
	rec := httptest.NewRecorder()
	checker.Handler().ServeHTTP(rec, req)

	assert.Equal(t, 200, rec.Code)
}

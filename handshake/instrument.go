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

package handshake

import (
	"time"

	"github.com/strmrider/SDTP/internal/logger"
	"github.com/strmrider/SDTP/metrics"
)

// run wires HandshakesInitiated/Completed/Duration and default-logger
// diagnostics around a single handshake attempt, so ServerPlain,
// ClientPlain, ServerCert, and ClientCert share one instrumentation
// path instead of repeating it per mode.
func run(role, mode string, fn func() (*Result, error)) (*Result, error) {
	log := logger.GetDefaultLogger()
	metrics.HandshakesInitiated.WithLabelValues(role).Inc()
	start := time.Now()

	res, err := fn()

	metrics.HandshakeDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.HandshakesCompleted.WithLabelValues("failed").Inc()
		log.Warn("handshake failed", logger.String("role", role), logger.String("mode", mode), logger.Error(err))
		return res, err
	}
	metrics.HandshakesCompleted.WithLabelValues("established").Inc()
	log.Info("handshake established", logger.String("role", role), logger.String("mode", mode))
	return res, nil
}

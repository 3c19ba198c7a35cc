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

// Package metrics exposes the Prometheus counters and gauges wired into
// the CA server and Session layer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "sdtp"

// Registry is this module's private Prometheus registry, so embedding
// applications can mount it alongside their own metrics without name
// collisions.
var Registry = prometheus.NewRegistry()

var (
	// CertificatesGranted counts successful CA enrollments.
	CertificatesGranted = promauto.With(Registry).NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ca",
		Name:      "certificates_granted_total",
		Help:      "Total number of certificates granted by the CA server",
	})

	// CertificatesDenied counts rejected enrollment attempts.
	CertificatesDenied = promauto.With(Registry).NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ca",
		Name:      "certificates_denied_total",
		Help:      "Total number of certificate requests denied by the CA server",
	})

	// SessionsActive tracks currently open Session instances.
	SessionsActive = promauto.With(Registry).NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "session",
		Name:      "active",
		Help:      "Number of currently open SDTP sessions",
	})

	// BytesSent counts plaintext bytes sent by Session.SendBytes and
	// Session.SendText. File chunks, complete files, objects and lists
	// are not counted.
	BytesSent = promauto.With(Registry).NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "session",
		Name:      "bytes_sent_total",
		Help:      "Total plaintext bytes sent across all sessions",
	})

	// BytesReceived counts plaintext bytes Session.Receive reads from
	// SEND_BYTES/SEND_TEXT frames, including the chunks of a SEND_FILE
	// transfer. Complete files, objects and lists are not counted.
	BytesReceived = promauto.With(Registry).NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "session",
		Name:      "bytes_received_total",
		Help:      "Total plaintext bytes received across all sessions",
	})

	// VerificationFailures counts AEAD open failures seen by Session
	// receive operations (returned to the caller as
	// primitives.ErrDecryptionFailed) — a spike here indicates active
	// tampering or a broken peer.
	VerificationFailures = promauto.With(Registry).NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "session",
		Name:      "verification_failures_total",
		Help:      "Total AEAD tag verification failures",
	})
)

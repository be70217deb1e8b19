// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package publisher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventsDispatched = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "switch_agent",
		Subsystem: "gnmi",
		Name:      "events_total",
		Help:      "Number of backend events dispatched to subscribers.",
	})
	eventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "switch_agent",
		Subsystem: "gnmi",
		Name:      "events_dropped_total",
		Help:      "Number of backend events dropped on a full event channel.",
	})
	liveSubscriptions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "switch_agent",
		Subsystem: "gnmi",
		Name:      "subscriptions",
		Help:      "Number of live telemetry subscriptions.",
	})
)

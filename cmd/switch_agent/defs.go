// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"flag"
	"time"
)

var (
	bindAddr       = flag.String("bind_address", ":9339", "Bind to address:port or just :port for the external gNMI endpoint")
	localPhalDbURL = flag.String("local_phaldb_url", "localhost:9340", "URL for the attribute DB service to listen to for local calls from CLIs, etc.")
	metricsAddr    = flag.String("metrics_address", "", "Optional address:port to expose Prometheus metrics on")

	portList    = flag.String("ports", "port-1:1:1:25", "Comma-separated port definitions, each name:node:port:speed_gb")
	chassisName = flag.String("chassis_name", "chassis-1", "Name of the chassis component")

	warmboot = flag.Bool("warmboot", false, "Selects warm instead of cold initialization")

	simEventInterval = flag.Duration("sim_event_interval", 5*time.Second, "Interval between simulated counter events")

	grpcKeepaliveTimeMs          = flag.Int("grpc_keepalive_time_ms", 600000, "grpc keep alive time")
	grpcKeepaliveTimeoutMs       = flag.Int("grpc_keepalive_timeout_ms", 20000, "grpc keep alive timeout period")
	grpcKeepaliveMinPingInterval = flag.Int("grpc_keepalive_min_ping_interval", 10000, "grpc keep alive minimum ping interval")
	grpcKeepalivePermit          = flag.Bool("grpc_keepalive_permit", false, "grpc keep alive permit without stream")
	grpcMaxRecvMsgSize           = flag.Int("grpc_max_recv_msg_size", 0, "grpc server max receive message size in MB, 0 for the transport default")
	grpcMaxSendMsgSize           = flag.Int("grpc_max_send_msg_size", 0, "grpc server max send message size in MB, 0 for the transport default")
)

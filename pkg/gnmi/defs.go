// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

// Package gnmi implements the gNMI service of the switch agent: streaming
// telemetry subscriptions backed by the publisher, attribute reads and
// writes backed by the attribute database.
package gnmi

import (
	pb "github.com/openconfig/gnmi/proto/gnmi"

	"github.com/onosproject/switch-agent/pkg/authz"
	"github.com/onosproject/switch-agent/pkg/phaldb"
	"github.com/onosproject/switch-agent/pkg/publisher"
)

var (
	// PROTO is the native encoding; JSON, the proto3 default, is accepted
	// for clients that leave the field unset.
	supportedEncodings = []pb.Encoding{pb.Encoding_PROTO, pb.Encoding_JSON}
)

// Server implements the gNMI service. Telemetry paths resolve through the
// publisher's parse tree; Set updates are forwarded to the attribute
// database adapter. Every call is gated by the auth policy checker.
//
// Typical usage:
//	g := grpc.NewServer(opts...)
//	s := gnmi.NewServer(pub, db, checker)
//	pb.RegisterGNMIServer(g, s)
//	g.Serve(listen)
type Server struct {
	publisher *publisher.Publisher
	db        phaldb.AttributeDatabase
	checker   authz.Checker
}

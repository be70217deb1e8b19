// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package gnmi

import (
	"github.com/onosproject/onos-lib-go/pkg/logging"

	"github.com/onosproject/switch-agent/pkg/authz"
	"github.com/onosproject/switch-agent/pkg/phaldb"
	"github.com/onosproject/switch-agent/pkg/publisher"
)

var log = logging.GetLogger("gnmi")

// NewServer creates the gNMI service over the given publisher and
// attribute database. A nil checker allows every call.
func NewServer(pub *publisher.Publisher, db phaldb.AttributeDatabase, checker authz.Checker) *Server {
	if checker == nil {
		checker = authz.AllowAll()
	}
	return &Server{
		publisher: pub,
		db:        db,
		checker:   checker,
	}
}

// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

// Package modeldata contains the following model data in gnmi proto struct:
//	openconfig-interfaces 2.0.0,
//	openconfig-lacp 1.0.2,
//	openconfig-qos 0.2.0,
//	openconfig-platform 0.5.0.
package modeldata

import (
	pb "github.com/openconfig/gnmi/proto/gnmi"
)

const (
	// OpenconfigInterfacesModel is the openconfig YANG model for interfaces.
	OpenconfigInterfacesModel = "openconfig-interfaces"
	// OpenconfigLacpModel is the openconfig YANG model for LACP.
	OpenconfigLacpModel = "openconfig-lacp"
	// OpenconfigQosModel is the openconfig YANG model for QoS.
	OpenconfigQosModel = "openconfig-qos"
	// OpenconfigPlatformModel is the openconfig YANG model for platform.
	OpenconfigPlatformModel = "openconfig-platform"
)

var (
	// ModelData is a list of supported models.
	ModelData = []*pb.ModelData{{
		Name:         OpenconfigInterfacesModel,
		Organization: "OpenConfig working group",
		Version:      "2017-07-14",
	}, {
		Name:         OpenconfigLacpModel,
		Organization: "OpenConfig working group",
		Version:      "2017-05-05",
	}, {
		Name:         OpenconfigQosModel,
		Organization: "OpenConfig working group",
		Version:      "2016-12-16",
	}, {
		Name:         OpenconfigPlatformModel,
		Organization: "OpenConfig working group",
		Version:      "2016-12-22",
	}}
)

// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package gnmi

import (
	"github.com/golang/protobuf/proto"
	protobuf "github.com/golang/protobuf/protoc-gen-go/descriptor"
	pb "github.com/openconfig/gnmi/proto/gnmi"
	"golang.org/x/net/context"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/onosproject/switch-agent/pkg/gnmi/modeldata"
)

// Capabilities returns supported encodings and supported models.
func (s *Server) Capabilities(ctx context.Context, req *pb.CapabilityRequest) (*pb.CapabilityResponse, error) {
	if err := s.checker.Authorize(ctx, "/gnmi.gNMI/Capabilities"); err != nil {
		return nil, err
	}
	ver, err := getGNMIServiceVersion()
	if err != nil {
		return nil, status.Errorf(codes.Internal, "error in getting gnmi service version: %v", err)
	}
	return &pb.CapabilityResponse{
		SupportedModels:    modeldata.ModelData,
		SupportedEncodings: supportedEncodings,
		GNMIVersion:        ver,
	}, nil
}

// getGNMIServiceVersion returns the gNMI service version string. The
// method is non-trivial because of the way it is defined in the proto
// file.
func getGNMIServiceVersion() (string, error) {
	parentFile := (&pb.Update{}).ProtoReflect().Descriptor().ParentFile()
	options := parentFile.Options()
	version := ""
	if fileOptions, ok := options.(*protobuf.FileOptions); ok {
		ver, err := proto.GetExtension(fileOptions, pb.E_GnmiService)
		if err != nil {
			return "", err
		}
		version = *ver.(*string)
	}
	return version, nil
}

// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package gnmi

import (
	pb "github.com/openconfig/gnmi/proto/gnmi"
	"golang.org/x/net/context"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/onosproject/switch-agent/pkg/utils"
)

// captureStream collects the responses a poll handler writes, so Get can
// reuse the subscription machinery for one-shot retrieval.
type captureStream struct {
	responses []*pb.SubscribeResponse
}

// Send implements the subscribe stream surface the handlers write to.
func (c *captureStream) Send(resp *pb.SubscribeResponse) error {
	c.responses = append(c.responses, resp)
	return nil
}

// Get implements the Get RPC in gNMI spec. Each requested path is resolved
// through the parse tree and served by the leaf poll handlers.
func (s *Server) Get(ctx context.Context, req *pb.GetRequest) (*pb.GetResponse, error) {
	if err := s.checker.Authorize(ctx, "/gnmi.gNMI/Get"); err != nil {
		return nil, err
	}
	if err := s.checkEncoding(req.GetEncoding()); err != nil {
		return nil, err
	}

	prefix := req.GetPrefix()
	var notifications []*pb.Notification
	for _, path := range req.GetPath() {
		fullPath := path
		if prefix != nil {
			fullPath = utils.GnmiFullPath(prefix, path)
		}
		capture := &captureStream{}
		if err := s.publisher.PollOnce(fullPath, capture); err != nil {
			return nil, err
		}
		if len(capture.responses) == 0 {
			return nil, status.Errorf(codes.NotFound, "no value produced for path %v", path)
		}
		for _, resp := range capture.responses {
			if update := resp.GetUpdate(); update != nil {
				notifications = append(notifications, update)
			}
		}
	}
	return &pb.GetResponse{Notification: notifications}, nil
}

// checkEncoding verifies the client asked for an encoding the server
// produces.
func (s *Server) checkEncoding(encoding pb.Encoding) error {
	for _, supported := range supportedEncodings {
		if encoding == supported {
			return nil
		}
	}
	return status.Errorf(codes.Unimplemented, "unsupported encoding: %s", pb.Encoding_name[int32(encoding)])
}

// Copyright 2019-present Open Networking Foundation.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package gnmi

import (
	pb "github.com/openconfig/gnmi/proto/gnmi"
	"golang.org/x/net/context"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/onosproject/switch-agent/pkg/phaldb"
)

// Set implements the Set RPC in gNMI spec. Updates are coerced by typed
// value case and forwarded to the attribute database adapter. An empty
// update list is a successful no-op.
func (s *Server) Set(ctx context.Context, req *pb.SetRequest) (*pb.SetResponse, error) {
	if err := s.checker.Authorize(ctx, "/gnmi.gNMI/Set"); err != nil {
		return nil, err
	}
	if len(req.GetDelete()) > 0 || len(req.GetReplace()) > 0 {
		return nil, status.Error(codes.Unimplemented, "delete and replace operations are unsupported")
	}

	updates := req.GetUpdate()
	if len(updates) == 0 {
		return &pb.SetResponse{Prefix: req.GetPrefix()}, nil
	}

	values := make(phaldb.ValueMap, len(updates))
	results := make([]*pb.UpdateResult, 0, len(updates))
	for _, upd := range updates {
		path, err := phaldb.PathFromGNMI(upd.GetPath())
		if err != nil {
			return nil, err
		}
		value, err := phaldb.ValueFromTyped(upd.GetVal())
		if err != nil {
			return nil, err
		}
		values[path.String()] = value
		results = append(results, &pb.UpdateResult{
			Path: upd.GetPath(),
			Op:   pb.UpdateResult_UPDATE,
		})
	}

	if err := s.db.Set(values); err != nil {
		return nil, status.Errorf(codes.Internal, "attribute set failed: %v", err)
	}
	return &pb.SetResponse{
		Prefix:   req.GetPrefix(),
		Response: results,
	}, nil
}

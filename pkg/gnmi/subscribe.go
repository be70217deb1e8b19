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
	"io"
	"time"

	pb "github.com/openconfig/gnmi/proto/gnmi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/onosproject/switch-agent/pkg/publisher"
	"github.com/onosproject/switch-agent/pkg/utils"
)

// Subscribe handles POLL, STREAM and ONCE subscribe requests. All
// subscriptions bound during the stream are torn down when it ends.
func (s *Server) Subscribe(stream pb.GNMI_SubscribeServer) error {
	if err := s.checker.Authorize(stream.Context(), "/gnmi.gNMI/Subscribe"); err != nil {
		return err
	}

	var bound []*publisher.SubscriptionHandle
	defer func() {
		for _, h := range bound {
			s.publisher.UnSubscribe(h)
		}
	}()

	for {
		req, err := stream.Recv()
		switch {
		case err == io.EOF:
			return nil
		case err != nil:
			return err
		}

		if req.GetPoll() != nil {
			// Re-poll the already-established subscriptions.
			for _, h := range bound {
				if err := s.publisher.HandlePoll(h); err != nil {
					return err
				}
			}
			continue
		}

		list := req.GetSubscribe()
		if list == nil {
			return status.Error(codes.InvalidArgument, "subscribe request carries no subscription list")
		}
		prefix := list.GetPrefix()

		switch list.GetMode() {
		case pb.SubscriptionList_ONCE:
			for _, sub := range list.GetSubscription() {
				path := utils.GnmiFullPath(prefix, sub.GetPath())
				if err := s.publisher.PollOnce(path, stream); err != nil {
					return err
				}
			}
			return s.publisher.SendSyncResponse(stream)

		case pb.SubscriptionList_POLL:
			for _, sub := range list.GetSubscription() {
				path := utils.GnmiFullPath(prefix, sub.GetPath())
				h, err := s.publisher.SubscribePoll(path, stream)
				if err != nil {
					return err
				}
				bound = append(bound, h)
				if err := s.publisher.HandlePoll(h); err != nil {
					return err
				}
			}
			if err := s.publisher.SendSyncResponse(stream); err != nil {
				return err
			}

		case pb.SubscriptionList_STREAM:
			handles, err := s.bindStreamSubscriptions(prefix, list, stream)
			bound = append(bound, handles...)
			if err != nil {
				return err
			}
			if err := s.publisher.SendSyncResponse(stream); err != nil {
				return err
			}

		default:
			return status.Errorf(codes.InvalidArgument, "unsupported subscription list mode %v", list.GetMode())
		}
	}
}

// bindStreamSubscriptions establishes every subscription of a STREAM
// request and sends the initial update for each, so the sync response the
// caller emits afterwards never precedes an initial update. Handles bound
// before an error are returned alongside it so the caller still tears
// them down.
func (s *Server) bindStreamSubscriptions(prefix *pb.Path, list *pb.SubscriptionList, stream pb.GNMI_SubscribeServer) ([]*publisher.SubscriptionHandle, error) {
	var bound []*publisher.SubscriptionHandle
	for _, sub := range list.GetSubscription() {
		path := utils.GnmiFullPath(prefix, sub.GetPath())

		mode := sub.GetMode()
		if mode == pb.SubscriptionMode_TARGET_DEFINED {
			// Let the server rewrite the subscription for paths that
			// demand a specific mode, e.g. counters to SAMPLE.
			if err := s.publisher.UpdateSubscriptionWithTargetSpecificModeSpecification(path, sub); err != nil {
				return bound, err
			}
			mode = sub.GetMode()
			if mode == pb.SubscriptionMode_TARGET_DEFINED {
				mode = pb.SubscriptionMode_ON_CHANGE
			}
		}

		var h *publisher.SubscriptionHandle
		var err error
		switch mode {
		case pb.SubscriptionMode_ON_CHANGE:
			h, err = s.publisher.SubscribeOnChange(path, stream)
		case pb.SubscriptionMode_SAMPLE:
			interval := time.Duration(sub.GetSampleInterval()) * time.Millisecond
			freq := publisher.Frequency{Delay: interval, Period: interval}
			h, err = s.publisher.SubscribePeriodic(freq, path, stream)
		default:
			err = status.Errorf(codes.InvalidArgument, "unsupported subscription mode %v", mode)
		}
		if err != nil {
			return bound, err
		}
		bound = append(bound, h)

		// Initial snapshot for this subscription, ahead of the sync
		// response.
		if err := s.publisher.PollOnce(path, stream); err != nil {
			return bound, err
		}
	}
	return bound, nil
}

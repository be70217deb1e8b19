// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package tree

import (
	"time"

	gpb "github.com/openconfig/gnmi/proto/gnmi"
)

func strVal(s string) *gpb.TypedValue {
	return &gpb.TypedValue{Value: &gpb.TypedValue_StringVal{StringVal: s}}
}

func uintVal(u uint64) *gpb.TypedValue {
	return &gpb.TypedValue{Value: &gpb.TypedValue_UintVal{UintVal: u}}
}

func intVal(i int64) *gpb.TypedValue {
	return &gpb.TypedValue{Value: &gpb.TypedValue_IntVal{IntVal: i}}
}

func boolVal(b bool) *gpb.TypedValue {
	return &gpb.TypedValue{Value: &gpb.TypedValue_BoolVal{BoolVal: b}}
}

// sendUpdate writes one SubscribeResponse carrying exactly one update for
// the fully-qualified leaf path.
func sendUpdate(stream Stream, path *gpb.Path, val *gpb.TypedValue) error {
	resp := &gpb.SubscribeResponse{
		Response: &gpb.SubscribeResponse_Update{
			Update: &gpb.Notification{
				Timestamp: time.Now().UnixNano(),
				Update: []*gpb.Update{
					{Path: path, Val: val},
				},
			},
		},
	}
	return stream.Send(resp)
}

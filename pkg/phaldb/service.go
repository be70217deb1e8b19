// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package phaldb

import (
	"strconv"
	"sync"
	"time"

	"github.com/eapache/channels"
	"github.com/onosproject/onos-lib-go/pkg/logging"
	gpb "github.com/openconfig/gnmi/proto/gnmi"
	"golang.org/x/net/context"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var log = logging.GetLogger("phaldb")

// subscribeDepth bounds the per-subscription snapshot channel. The channel
// is a ring: a full channel drops the oldest snapshot.
const subscribeDepth = 128

// Service serves the attribute database over gNMI. It is registered on
// the local insecure endpoint only.
type Service struct {
	db AttributeDatabase

	mu          sync.Mutex
	subscribers map[uint64]*ringWriter
	nextID      uint64
}

// NewService creates a Service over db.
func NewService(db AttributeDatabase) *Service {
	return &Service{
		db:          db,
		subscribers: make(map[uint64]*ringWriter),
	}
}

// Teardown closes every outstanding subscription channel, unblocking the
// per-client stream loops.
func (s *Service) Teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, w := range s.subscribers {
		w.close()
		delete(s.subscribers, id)
	}
	log.Info("Attribute DB service torn down")
}

// PathFromGNMI converts a gNMI path to an attribute database path. Paths
// with no elements or empty element names are rejected.
func PathFromGNMI(path *gpb.Path) (Path, error) {
	if len(path.GetElem()) == 0 {
		return nil, status.Error(codes.InvalidArgument, "no path")
	}
	dbPath := make(Path, 0, len(path.GetElem()))
	for _, elem := range path.GetElem() {
		if elem.GetName() == "" {
			return nil, status.Error(codes.InvalidArgument, "empty path entry")
		}
		entry := PathEntry{Name: elem.GetName()}
		if idx, ok := elem.GetKey()["index"]; ok {
			if idx == "*" {
				entry.All = true
			} else {
				i, err := strconv.Atoi(idx)
				if err != nil {
					return nil, status.Errorf(codes.InvalidArgument, "bad index %q", idx)
				}
				entry.Index = i
				entry.Indexed = true
			}
		}
		dbPath = append(dbPath, entry)
	}
	return dbPath, nil
}

// ValueFromTyped maps a gNMI typed value onto the scalar kinds the
// attribute database stores.
func ValueFromTyped(val *gpb.TypedValue) (interface{}, error) {
	switch v := val.GetValue().(type) {
	case *gpb.TypedValue_StringVal:
		return v.StringVal, nil
	case *gpb.TypedValue_IntVal:
		return v.IntVal, nil
	case *gpb.TypedValue_UintVal:
		return v.UintVal, nil
	case *gpb.TypedValue_BoolVal:
		return v.BoolVal, nil
	case *gpb.TypedValue_BytesVal:
		return v.BytesVal, nil
	case *gpb.TypedValue_FloatVal:
		return v.FloatVal, nil
	case *gpb.TypedValue_DecimalVal:
		d := v.DecimalVal
		return float64(d.GetDigits()) / pow10(d.GetPrecision()), nil
	default:
		return nil, status.Errorf(codes.InvalidArgument, "unknown value type %T", val.GetValue())
	}
}

func pow10(n uint32) float64 {
	out := 1.0
	for i := uint32(0); i < n; i++ {
		out *= 10
	}
	return out
}

// Capabilities implements gNMI Capabilities for the attribute DB endpoint.
func (s *Service) Capabilities(ctx context.Context, req *gpb.CapabilityRequest) (*gpb.CapabilityResponse, error) {
	return &gpb.CapabilityResponse{
		SupportedEncodings: []gpb.Encoding{gpb.Encoding_JSON},
	}, nil
}

// Get implements gNMI Get over the attribute database. Each requested
// path yields one notification carrying the serialized snapshot.
func (s *Service) Get(ctx context.Context, req *gpb.GetRequest) (*gpb.GetResponse, error) {
	notifications := make([]*gpb.Notification, 0, len(req.GetPath()))
	for _, path := range req.GetPath() {
		dbPath, err := PathFromGNMI(path)
		if err != nil {
			return nil, err
		}
		snapshot, err := s.db.Get([]Path{dbPath})
		if err != nil {
			return nil, status.Errorf(codes.Internal, "attribute get failed: %v", err)
		}
		notifications = append(notifications, &gpb.Notification{
			Timestamp: time.Now().UnixNano(),
			Update: []*gpb.Update{{
				Path: path,
				Val:  &gpb.TypedValue{Value: &gpb.TypedValue_JsonVal{JsonVal: snapshot}},
			}},
		})
	}
	return &gpb.GetResponse{Notification: notifications}, nil
}

// Set implements gNMI Set over the attribute database. An empty update
// list is a successful no-op.
func (s *Service) Set(ctx context.Context, req *gpb.SetRequest) (*gpb.SetResponse, error) {
	if len(req.GetDelete()) > 0 {
		return nil, status.Error(codes.Unimplemented, "attribute delete is unsupported")
	}
	updates := append(req.GetUpdate(), req.GetReplace()...)
	if len(updates) == 0 {
		return &gpb.SetResponse{Prefix: req.GetPrefix()}, nil
	}

	values := make(ValueMap, len(updates))
	results := make([]*gpb.UpdateResult, 0, len(updates))
	for _, upd := range updates {
		dbPath, err := PathFromGNMI(upd.GetPath())
		if err != nil {
			return nil, err
		}
		value, err := ValueFromTyped(upd.GetVal())
		if err != nil {
			return nil, err
		}
		values[dbPath.String()] = value
		results = append(results, &gpb.UpdateResult{
			Path: upd.GetPath(),
			Op:   gpb.UpdateResult_UPDATE,
		})
	}
	if err := s.db.Set(values); err != nil {
		return nil, status.Errorf(codes.Internal, "attribute set failed: %v", err)
	}
	return &gpb.SetResponse{
		Prefix:   req.GetPrefix(),
		Response: results,
	}, nil
}

// ringWriter is the snapshot sink handed to the database. Writes after
// close are rejected instead of panicking on the closed ring.
type ringWriter struct {
	mu     sync.Mutex
	ring   *channels.RingChannel
	closed bool
}

// Write implements SnapshotWriter.
func (w *ringWriter) Write(snapshot Snapshot) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return false
	}
	if w.ring.Len() >= subscribeDepth {
		log.Warnf("Subscribe channel full; dropping oldest snapshot")
	}
	w.ring.In() <- snapshot
	return true
}

func (w *ringWriter) close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.closed {
		w.closed = true
		w.ring.Close()
	}
}

// Subscribe implements polled attribute subscriptions. The subscription
// lives until either end closes: a failed stream write tears down the
// database subscription, and Teardown unblocks the stream loop.
func (s *Service) Subscribe(stream gpb.GNMI_SubscribeServer) error {
	req, err := stream.Recv()
	if err != nil {
		return err
	}
	list := req.GetSubscribe()
	if list == nil || len(list.GetSubscription()) == 0 {
		return status.Error(codes.InvalidArgument, "no subscription list")
	}

	paths := make([]Path, 0, len(list.GetSubscription()))
	var respPath *gpb.Path
	for _, sub := range list.GetSubscription() {
		dbPath, err := PathFromGNMI(sub.GetPath())
		if err != nil {
			return err
		}
		paths = append(paths, dbPath)
		if respPath == nil {
			respPath = sub.GetPath()
		}
	}
	// The sample interval of the first subscription is the polling
	// interval, in seconds, of the whole request.
	pollInterval := time.Duration(list.GetSubscription()[0].GetSampleInterval()) * time.Second

	ring := channels.NewRingChannel(subscribeDepth)
	w := &ringWriter{ring: ring}

	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subscribers[id] = w
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		if _, ok := s.subscribers[id]; ok {
			delete(s.subscribers, id)
		}
		s.mu.Unlock()
		w.close()
	}()

	if err := s.db.Subscribe(paths, w, pollInterval); err != nil {
		return status.Errorf(codes.Internal, "attribute subscribe failed: %v", err)
	}

	for raw := range ring.Out() {
		snapshot, ok := raw.(Snapshot)
		if !ok {
			log.Errorf("Unexpected value on subscribe channel: %T", raw)
			continue
		}
		// A zero-byte snapshot closes the subscription.
		if len(snapshot) == 0 {
			return status.Error(codes.Internal, "subscribe read returned zero bytes")
		}
		resp := &gpb.SubscribeResponse{
			Response: &gpb.SubscribeResponse_Update{
				Update: &gpb.Notification{
					Timestamp: time.Now().UnixNano(),
					Update: []*gpb.Update{{
						Path: respPath,
						Val:  &gpb.TypedValue{Value: &gpb.TypedValue_JsonVal{JsonVal: snapshot}},
					}},
				},
			},
		}
		if err := stream.Send(resp); err != nil {
			return status.Errorf(codes.Internal, "subscribe stream write failed: %v", err)
		}
	}
	return status.Error(codes.Internal, "subscribe channel closed")
}

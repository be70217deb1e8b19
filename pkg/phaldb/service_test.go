// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package phaldb

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	pb "github.com/openconfig/gnmi/proto/gnmi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// recordingDb captures the subscription writer so tests can drive it.
type recordingDb struct {
	mu      sync.Mutex
	values  ValueMap
	writer  SnapshotWriter
	written chan struct{}
}

func newRecordingDb() *recordingDb {
	return &recordingDb{values: ValueMap{}, written: make(chan struct{}, 1)}
}

func (db *recordingDb) Get(paths []Path) (Snapshot, error) {
	return Snapshot(`{"fan_trays":1}`), nil
}

func (db *recordingDb) Set(values ValueMap) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	for k, v := range values {
		db.values[k] = v
	}
	return nil
}

func (db *recordingDb) Subscribe(paths []Path, w SnapshotWriter, pollInterval time.Duration) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.writer = w
	select {
	case db.written <- struct{}{}:
	default:
	}
	return nil
}

func (db *recordingDb) waitForWriter(t *testing.T) SnapshotWriter {
	t.Helper()
	select {
	case <-db.written:
	case <-time.After(time.Second):
		t.Fatal("database subscription was never issued")
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.writer
}

type fakeSubscribeServer struct {
	grpc.ServerStream
	ctx  context.Context
	reqs chan *pb.SubscribeRequest

	mu        sync.Mutex
	sendErr   error
	responses []*pb.SubscribeResponse
}

func newFakeSubscribeServer() *fakeSubscribeServer {
	return &fakeSubscribeServer{
		ctx:  context.Background(),
		reqs: make(chan *pb.SubscribeRequest, 4),
	}
}

func (f *fakeSubscribeServer) Context() context.Context { return f.ctx }

func (f *fakeSubscribeServer) Send(resp *pb.SubscribeResponse) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.responses = append(f.responses, resp)
	return nil
}

func (f *fakeSubscribeServer) Recv() (*pb.SubscribeRequest, error) {
	req, ok := <-f.reqs
	if !ok {
		return nil, io.EOF
	}
	return req, nil
}

func (f *fakeSubscribeServer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.responses)
}

func dbPath(names ...string) *pb.Path {
	elems := make([]*pb.PathElem, 0, len(names))
	for _, n := range names {
		elems = append(elems, &pb.PathElem{Name: n})
	}
	return &pb.Path{Elem: elems}
}

func subscribeReq(path *pb.Path, intervalSeconds uint64) *pb.SubscribeRequest {
	return &pb.SubscribeRequest{
		Request: &pb.SubscribeRequest_Subscribe{
			Subscribe: &pb.SubscriptionList{
				Subscription: []*pb.Subscription{{
					Path:           path,
					SampleInterval: intervalSeconds,
				}},
			},
		},
	}
}

func TestPathFromGNMI(t *testing.T) {
	_, err := PathFromGNMI(&pb.Path{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = PathFromGNMI(&pb.Path{Elem: []*pb.PathElem{{Name: ""}}})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	p, err := PathFromGNMI(&pb.Path{Elem: []*pb.PathElem{
		{Name: "cards", Key: map[string]string{"index": "0"}},
		{Name: "ports", Key: map[string]string{"index": "*"}},
		{Name: "speed"},
	}})
	require.NoError(t, err)
	require.Len(t, p, 3)
	assert.True(t, p[0].Indexed)
	assert.Equal(t, 0, p[0].Index)
	assert.True(t, p[1].All)
	assert.Equal(t, "cards[0]/ports[*]/speed", p.String())
}

func TestValueFromTyped(t *testing.T) {
	for _, tc := range []struct {
		val  *pb.TypedValue
		want interface{}
	}{
		{&pb.TypedValue{Value: &pb.TypedValue_StringVal{StringVal: "x"}}, "x"},
		{&pb.TypedValue{Value: &pb.TypedValue_IntVal{IntVal: -7}}, int64(-7)},
		{&pb.TypedValue{Value: &pb.TypedValue_UintVal{UintVal: 7}}, uint64(7)},
		{&pb.TypedValue{Value: &pb.TypedValue_BoolVal{BoolVal: true}}, true},
		{&pb.TypedValue{Value: &pb.TypedValue_BytesVal{BytesVal: []byte{1}}}, []byte{1}},
		{&pb.TypedValue{Value: &pb.TypedValue_FloatVal{FloatVal: 1.5}}, float32(1.5)},
	} {
		got, err := ValueFromTyped(tc.val)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}

	_, err := ValueFromTyped(&pb.TypedValue{Value: &pb.TypedValue_JsonVal{JsonVal: []byte(`{}`)}})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestServiceSetEmptyIsNoOp(t *testing.T) {
	svc := NewService(newRecordingDb())
	resp, err := svc.Set(context.Background(), &pb.SetRequest{})
	require.NoError(t, err)
	assert.NotNil(t, resp)
}

func TestServiceSet(t *testing.T) {
	db := newRecordingDb()
	svc := NewService(db)

	_, err := svc.Set(context.Background(), &pb.SetRequest{
		Update: []*pb.Update{{
			Path: dbPath("fan_trays", "rpm"),
			Val:  &pb.TypedValue{Value: &pb.TypedValue_UintVal{UintVal: 9000}},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(9000), db.values["fan_trays/rpm"])
}

func TestServiceGet(t *testing.T) {
	svc := NewService(newRecordingDb())

	resp, err := svc.Get(context.Background(), &pb.GetRequest{
		Path: []*pb.Path{dbPath("fan_trays")},
	})
	require.NoError(t, err)
	require.Len(t, resp.GetNotification(), 1)
	assert.JSONEq(t, `{"fan_trays":1}`,
		string(resp.GetNotification()[0].GetUpdate()[0].GetVal().GetJsonVal()))
}

func TestSubscribeDeliversSnapshots(t *testing.T) {
	db := newRecordingDb()
	svc := NewService(db)

	stream := newFakeSubscribeServer()
	stream.reqs <- subscribeReq(dbPath("fan_trays"), 1)

	done := make(chan error, 1)
	go func() { done <- svc.Subscribe(stream) }()

	w := db.waitForWriter(t)
	require.True(t, w.Write(Snapshot(`{"fan_trays":2}`)))
	require.Eventually(t, func() bool { return stream.count() == 1 },
		time.Second, time.Millisecond)

	// Teardown closes the channel; the stream loop exits with Internal.
	svc.Teardown()
	select {
	case err := <-done:
		assert.Equal(t, codes.Internal, status.Code(err))
	case <-time.After(time.Second):
		t.Fatal("subscribe did not exit after teardown")
	}
}

func TestSubscribeZeroByteSnapshotCloses(t *testing.T) {
	db := newRecordingDb()
	svc := NewService(db)

	stream := newFakeSubscribeServer()
	stream.reqs <- subscribeReq(dbPath("fan_trays"), 1)

	done := make(chan error, 1)
	go func() { done <- svc.Subscribe(stream) }()

	w := db.waitForWriter(t)
	w.Write(Snapshot{})

	select {
	case err := <-done:
		assert.Equal(t, codes.Internal, status.Code(err))
	case <-time.After(time.Second):
		t.Fatal("subscribe did not exit on zero-byte snapshot")
	}
	assert.Zero(t, stream.count())
}

func TestSubscribeStreamWriteFailureEndsLoop(t *testing.T) {
	db := newRecordingDb()
	svc := NewService(db)

	stream := newFakeSubscribeServer()
	stream.sendErr = io.ErrClosedPipe
	stream.reqs <- subscribeReq(dbPath("fan_trays"), 1)

	done := make(chan error, 1)
	go func() { done <- svc.Subscribe(stream) }()

	w := db.waitForWriter(t)
	w.Write(Snapshot(`{"fan_trays":2}`))

	select {
	case err := <-done:
		assert.Equal(t, codes.Internal, status.Code(err))
	case <-time.After(time.Second):
		t.Fatal("subscribe did not exit on stream write failure")
	}

	// The database-side writer is dead after cleanup.
	require.Eventually(t, func() bool { return !w.Write(Snapshot(`{}`)) },
		time.Second, time.Millisecond)
}

func TestSubscribeRejectsEmptyList(t *testing.T) {
	svc := NewService(newRecordingDb())

	stream := newFakeSubscribeServer()
	stream.reqs <- &pb.SubscribeRequest{}

	err := svc.Subscribe(stream)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

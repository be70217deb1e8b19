// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package phaldb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemDbSetGet(t *testing.T) {
	db := NewMemDb()
	require.NoError(t, db.Set(ValueMap{
		"fan_trays[0]/rpm":    uint64(9000),
		"fan_trays[0]/status": "OK",
		"psus[0]/watts":       uint64(450),
	}))

	snapshot, err := db.Get([]Path{{
		{Name: "fan_trays", Index: 0, Indexed: true},
	}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"fan_trays[0]/rpm":9000,"fan_trays[0]/status":"OK"}`, string(snapshot))
}

type collectWriter struct {
	snapshots chan Snapshot
}

func (w *collectWriter) Write(s Snapshot) bool {
	select {
	case w.snapshots <- s:
		return true
	default:
		return false
	}
}

func TestMemDbSubscribe(t *testing.T) {
	db := NewMemDb()
	require.NoError(t, db.Set(ValueMap{"psus[0]/watts": uint64(450)}))

	w := &collectWriter{snapshots: make(chan Snapshot, 4)}
	require.NoError(t, db.Subscribe(
		[]Path{{{Name: "psus", Index: 0, Indexed: true}}}, w, 5*time.Millisecond))

	select {
	case s := <-w.snapshots:
		assert.JSONEq(t, `{"psus[0]/watts":450}`, string(s))
	case <-time.After(time.Second):
		t.Fatal("no snapshot delivered")
	}
}

// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package authz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestAllowAll(t *testing.T) {
	assert.NoError(t, AllowAll().Authorize(context.Background(), "/gnmi.gNMI/Get"))
}

func TestPolicyRejects(t *testing.T) {
	p := NewPolicy(func(method, commonName string) bool {
		return method != "/gnmi.gNMI/Set"
	})

	assert.NoError(t, p.Authorize(context.Background(), "/gnmi.gNMI/Get"))
	err := p.Authorize(context.Background(), "/gnmi.gNMI/Set")
	assert.Equal(t, codes.PermissionDenied, status.Code(err))
}

func TestNilDecisionAllows(t *testing.T) {
	assert.NoError(t, NewPolicy(nil).Authorize(context.Background(), "/gnmi.gNMI/Set"))
}

// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

// Package authz filters RPC calls by method name and peer identity.
package authz

import (
	"context"
	"crypto/x509"

	"github.com/onosproject/onos-lib-go/pkg/logging"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

var log = logging.GetLogger("authz")

// Checker decides whether the calling peer may invoke the named RPC.
// A rejection is returned as a PermissionDenied status.
type Checker interface {
	Authorize(ctx context.Context, method string) error
}

// Policy is a Checker backed by a decision function over the method name
// and the peer common name ("" when the peer presented no certificate).
type Policy struct {
	allow func(method, commonName string) bool
}

// NewPolicy wraps a decision function. A nil function allows everything.
func NewPolicy(allow func(method, commonName string) bool) *Policy {
	return &Policy{allow: allow}
}

// AllowAll returns a policy that accepts every call.
func AllowAll() *Policy {
	return &Policy{}
}

// Authorize implements Checker.
func (p *Policy) Authorize(ctx context.Context, method string) error {
	if p.allow == nil {
		return nil
	}
	cn := peerCommonName(ctx)
	if !p.allow(method, cn) {
		log.Warnf("Rejected call to %s from peer %q", method, cn)
		return status.Errorf(codes.PermissionDenied, "peer %q may not call %s", cn, method)
	}
	return nil
}

// peerCommonName extracts the subject common name of the first verified
// peer certificate, if any.
func peerCommonName(ctx context.Context) string {
	pr, ok := peer.FromContext(ctx)
	if !ok || pr.AuthInfo == nil {
		return ""
	}
	tlsInfo, ok := pr.AuthInfo.(credentials.TLSInfo)
	if !ok {
		return ""
	}
	var chain []*x509.Certificate
	if len(tlsInfo.State.VerifiedChains) > 0 {
		chain = tlsInfo.State.VerifiedChains[0]
	} else {
		chain = tlsInfo.State.PeerCertificates
	}
	if len(chain) == 0 {
		return ""
	}
	return chain[0].Subject.CommonName
}

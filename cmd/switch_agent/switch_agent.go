// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

// Binary switch_agent runs the switch management plane: the gNMI telemetry
// service on the external endpoint and the attribute DB service on the
// local one.
package main

import (
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/gnxi/utils/credentials"
	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/onosproject/onos-lib-go/pkg/logging"
	pb "github.com/openconfig/gnmi/proto/gnmi"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"

	"github.com/onosproject/switch-agent/pkg/authz"
	"github.com/onosproject/switch-agent/pkg/backend"
	"github.com/onosproject/switch-agent/pkg/gnmi"
	"github.com/onosproject/switch-agent/pkg/phaldb"
	"github.com/onosproject/switch-agent/pkg/publisher"
	"github.com/onosproject/switch-agent/pkg/registry"
	"github.com/onosproject/switch-agent/pkg/timer"
)

var log = logging.GetLogger("main")

func main() {
	flag.Parse()
	if err := run(); err != nil {
		log.Errorf("switch agent failed: %v", err)
		os.Exit(1)
	}
}

// parsePorts parses the -ports flag: name:node:port:speed_gb definitions
// separated by commas.
func parsePorts(s string) ([]backend.Port, error) {
	var ports []backend.Port
	for _, def := range strings.Split(s, ",") {
		if def == "" {
			continue
		}
		parts := strings.Split(def, ":")
		if len(parts) != 4 {
			return nil, fmt.Errorf("bad port definition %q", def)
		}
		node, err := strconv.ParseUint(parts[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad node id in %q: %v", def, err)
		}
		id, err := strconv.ParseUint(parts[2], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("bad port id in %q: %v", def, err)
		}
		speedGb, err := strconv.ParseUint(parts[3], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("bad speed in %q: %v", def, err)
		}
		ports = append(ports, backend.Port{
			Name:     parts[0],
			NodeID:   node,
			ID:       uint32(id),
			SpeedBps: speedGb * 1000000000,
		})
	}
	return ports, nil
}

func run() error {
	if *warmboot {
		log.Info("Warm boot requested; state is rebuilt from the backend either way")
	}

	ports, err := parsePorts(*portList)
	if err != nil {
		return err
	}

	// Backend and schema.
	sim := backend.NewSim()
	nodeCfg := backend.NodeConfig{
		Queues: []backend.QueueConfig{{ID: 0, Name: "BE1"}},
	}
	reg := registry.New()
	pub := publisher.New(sim, reg, timer.Default())
	for _, port := range ports {
		sim.AddPort(port, nodeCfg)
		pub.Tree().AddSubtreeInterfaceFromSingleton(port, nodeCfg)
	}
	pub.Tree().AddSubtreeChassis(backend.Chassis{Name: *chassisName})

	if err := pub.RegisterEventWriter(); err != nil {
		return err
	}
	defer func() {
		if err := pub.UnregisterEventWriter(); err != nil {
			log.Errorf("Cannot unregister event writer: %v", err)
		}
	}()
	sim.Start(*simEventInterval)
	defer sim.Stop()

	// Attribute DB service on the local insecure endpoint.
	db := phaldb.NewMemDb()
	phalService := phaldb.NewService(db)
	phalServer := grpc.NewServer()
	pb.RegisterGNMIServer(phalServer, phalService)
	phalListen, err := net.Listen("tcp", *localPhalDbURL)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %v", *localPhalDbURL, err)
	}
	go func() {
		log.Infof("Attribute DB service is listening on %s", *localPhalDbURL)
		if err := phalServer.Serve(phalListen); err != nil {
			log.Errorf("Attribute DB server stopped: %v", err)
		}
	}()

	// External gNMI endpoint.
	opts := credentials.ServerCredentials()
	opts = append(opts,
		grpc.KeepaliveParams(keepalive.ServerParameters{
			Time:    time.Duration(*grpcKeepaliveTimeMs) * time.Millisecond,
			Timeout: time.Duration(*grpcKeepaliveTimeoutMs) * time.Millisecond,
		}),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             time.Duration(*grpcKeepaliveMinPingInterval) * time.Millisecond,
			PermitWithoutStream: *grpcKeepalivePermit,
		}),
		grpc.StreamInterceptor(grpc_prometheus.StreamServerInterceptor),
		grpc.UnaryInterceptor(grpc_prometheus.UnaryServerInterceptor),
	)
	if *grpcMaxRecvMsgSize > 0 {
		opts = append(opts, grpc.MaxRecvMsgSize(*grpcMaxRecvMsgSize*1024*1024))
	}
	if *grpcMaxSendMsgSize > 0 {
		opts = append(opts, grpc.MaxSendMsgSize(*grpcMaxSendMsgSize*1024*1024))
	}
	g := grpc.NewServer(opts...)
	pb.RegisterGNMIServer(g, gnmi.NewServer(pub, db, authz.AllowAll()))
	grpc_prometheus.Register(g)
	reflection.Register(g)

	if *metricsAddr != "" {
		go func() {
			log.Infof("Metrics are served on %s", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, promhttp.Handler()); err != nil {
				log.Errorf("Metrics server stopped: %v", err)
			}
		}()
	}

	listen, err := net.Listen("tcp", *bindAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %v", *bindAddr, err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Infof("Received %v; shutting down", sig)
		phalService.Teardown()
		phalServer.GracefulStop()
		g.GracefulStop()
	}()

	log.Infof("gNMI service is listening on %s", *bindAddr)
	return g.Serve(listen)
}

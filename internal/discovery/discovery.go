// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package discovery advertises and finds gallery servers on the local
// network over mDNS.
package discovery

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/mdns"
)

// ServiceType is the mDNS service a gallery server registers.
const ServiceType = "_oekaki._tcp"

// DefaultBrowseTimeout bounds a Browse whose context has no deadline.
const DefaultBrowseTimeout = 3 * time.Second

// Advertisement is a running mDNS responder for one gallery server.
type Advertisement struct {
	server *mdns.Server
}

// Advertise announces a gallery server listening on port. An empty
// instance name uses the host name.
func Advertise(instance string, port int) (*Advertisement, error) {
	svc, err := newService(instance, port)
	if err != nil {
		return nil, err
	}
	server, err := mdns.NewServer(&mdns.Config{Zone: svc})
	if err != nil {
		return nil, fmt.Errorf("discovery: start mDNS responder: %w", err)
	}
	return &Advertisement{server: server}, nil
}

// Close stops answering queries.
func (a *Advertisement) Close() error {
	return a.server.Shutdown()
}

func newService(instance string, port int) (*mdns.MDNSService, error) {
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("discovery: invalid port %d", port)
	}
	instance = strings.TrimSpace(instance)
	if instance == "" {
		instance = "oekaki"
	}
	svc, err := mdns.NewMDNSService(
		instance,
		ServiceType,
		"", // .local
		"", // OS host name
		port,
		localIPv4s(),
		[]string{"oekaki gallery"},
	)
	if err != nil {
		return nil, fmt.Errorf("discovery: create service: %w", err)
	}
	return svc, nil
}

// Browse queries the network for gallery servers and calls found with the
// "host:port" address of each one. It returns when ctx is done or, for a
// context without deadline, after DefaultBrowseTimeout. Ending the browse
// through ctx is not an error.
func Browse(ctx context.Context, found func(addr string)) error {
	timeout := DefaultBrowseTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	if timeout <= 0 || ctx.Err() != nil {
		return nil
	}

	entries := make(chan *mdns.ServiceEntry, 8)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		seen := make(map[string]bool)
		for e := range entries {
			addr, ok := entryAddr(e)
			if !ok || seen[addr] {
				continue
			}
			seen[addr] = true
			found(addr)
		}
	}()

	params := mdns.DefaultParams(ServiceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true
	err := mdns.QueryContext(ctx, params)
	close(entries)
	<-drained

	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("discovery: browse: %w", err)
	}
	return nil
}

// entryAddr returns the dialable address of a service entry.
func entryAddr(e *mdns.ServiceEntry) (string, bool) {
	if e == nil || e.AddrV4 == nil || e.Port == 0 {
		return "", false
	}
	if !strings.Contains(e.Name, ServiceType) {
		return "", false
	}
	return net.JoinHostPort(e.AddrV4.String(), strconv.Itoa(e.Port)), true
}

// localIPv4s returns the IPv4 addresses of the interfaces that are up and
// not loopback, or the loopback address when there are none.
func localIPv4s() []net.IP {
	var ips []net.IP
	ifaces, _ := net.Interfaces()
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, _ := iface.Addrs()
		for _, a := range addrs {
			if ipnet, ok := a.(*net.IPNet); ok && ipnet.IP.To4() != nil {
				ips = append(ips, ipnet.IP.To4())
			}
		}
	}
	if len(ips) == 0 {
		ips = append(ips, net.IPv4(127, 0, 0, 1))
	}
	return ips
}

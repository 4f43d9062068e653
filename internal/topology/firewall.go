// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package topology

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
)

const (
	PortsAll = "all"
	maxPort  = 65535
)

var ErrInvalidPorts = errors.New("invalid port range")

// PortRange is an inclusive range; the zero value means every port.
type PortRange struct {
	From int
	To   int
}

func (r PortRange) Contains(port int) bool {
	if r.From == 0 && r.To == 0 {
		return true
	}

	return port >= r.From && port <= r.To
}

// ParsePorts accepts "N", "N-M", "all" or the empty string (all ports).
func ParsePorts(s string) (PortRange, error) {
	s = strings.TrimSpace(s)

	if s == "" || s == PortsAll {
		return PortRange{}, nil
	}

	from, to, isRange := strings.Cut(s, "-")
	if !isRange {
		to = from
	}

	f, err := strconv.Atoi(from)
	if err != nil {
		return PortRange{}, fmt.Errorf("%w: %q", ErrInvalidPorts, s)
	}

	t, err := strconv.Atoi(to)
	if err != nil {
		return PortRange{}, fmt.Errorf("%w: %q", ErrInvalidPorts, s)
	}

	if f < 1 || t > maxPort || f > t {
		return PortRange{}, fmt.Errorf("%w: %q", ErrInvalidPorts, s)
	}

	return PortRange{From: f, To: t}, nil
}

func (r Rule) matches(protocol string, port int, ip net.IP) bool {
	if r.Protocol != protocol {
		return false
	}

	if protocol != "icmp" {
		pr, err := ParsePorts(r.Ports)
		if err != nil || !pr.Contains(port) {
			return false
		}
	}

	for _, c := range r.CIDRs {
		_, network, err := net.ParseCIDR(c)
		if err != nil {
			continue
		}

		if network.Contains(ip) {
			return true
		}
	}

	return false
}

// AllowsInbound applies the default-deny inbound policy: traffic passes only when a rule matches.
func (f Firewall) AllowsInbound(protocol string, port int, ip net.IP) bool {
	for _, r := range f.Inbound {
		if r.matches(protocol, port, ip) {
			return true
		}
	}

	return false
}

// AllowsOutbound applies the default-allow outbound policy: with no outbound rules declared all
// traffic passes, otherwise a rule must match.
func (f Firewall) AllowsOutbound(protocol string, port int, ip net.IP) bool {
	if len(f.Outbound) == 0 {
		return true
	}

	for _, r := range f.Outbound {
		if r.matches(protocol, port, ip) {
			return true
		}
	}

	return false
}

// EffectiveOutbound returns the outbound rules to declare to a provider that denies egress by
// default.
func (f Firewall) EffectiveOutbound() []Rule {
	if len(f.Outbound) > 0 {
		return f.Outbound
	}

	anywhere := []string{"0.0.0.0/0", "::/0"}

	return []Rule{
		{Protocol: "tcp", Ports: PortsAll, CIDRs: anywhere},
		{Protocol: "udp", Ports: PortsAll, CIDRs: anywhere},
		{Protocol: "icmp", CIDRs: anywhere},
	}
}

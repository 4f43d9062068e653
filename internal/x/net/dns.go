// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package netx

import (
	"errors"
	"fmt"
	"strings"

	"github.com/miekg/dns"
)

var ErrInvalidHostname = errors.New("invalid hostname")

const minHostLabels = 2

// ValidateHostname checks that host is a fully qualified domain name usable as an ingress host.
// A leading wildcard label is accepted.
func ValidateHostname(host string) error {
	name := strings.TrimPrefix(host, "*.")

	labels, ok := dns.IsDomainName(name)
	if !ok || strings.HasSuffix(name, ".") {
		return fmt.Errorf("%w: %q", ErrInvalidHostname, host)
	}

	if labels < minHostLabels {
		return fmt.Errorf("%w: %q needs at least %d labels", ErrInvalidHostname, host, minHostLabels)
	}

	return nil
}

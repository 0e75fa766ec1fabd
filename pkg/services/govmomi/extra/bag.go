/*
Copyright 2019 The Kubernetes Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package extra builds the guestinfo properties injected into a VM's VMX file.
package extra

import (
	"encoding/base64"
	"os"

	"github.com/pkg/errors"

	"github.com/spuranam/New-CoreOSCluster/pkg/config"
)

// Keys of the guestinfo properties, relative to the namespace.
const (
	KeyHostname          = "hostname"
	KeyDNSServer         = "dns.server.0"
	KeyInterfaceName     = "interface.0.name"
	KeyInterfaceRole     = "interface.0.role"
	KeyInterfaceDHCP     = "interface.0.dhcp"
	KeyInterfaceAddress  = "interface.0.ip.0.address"
	KeyRouteGateway      = "interface.0.route.0.gateway"
	KeyRouteDestination  = "interface.0.route.0.destination"
	KeyConfigData        = "coreos.config.data"
	KeyConfigDataEncoded = "coreos.config.data.encoding"

	defaultRoute   = "0.0.0.0/0"
	base64Encoding = "base64"
)

// Bag maps guestinfo keys to their values.
type Bag map[string]string

// Merge returns a new Bag holding the keys of b overridden by the keys of
// each layer, in order.
func (b Bag) Merge(layers ...Bag) Bag {
	merged := make(Bag, len(b))
	for k, v := range b {
		merged[k] = v
	}
	for _, layer := range layers {
		for k, v := range layer {
			merged[k] = v
		}
	}
	return merged
}

// Builder assembles one Bag per node from the run-wide network settings
// and the optional configuration payload.
type Builder struct {
	Gateway       string
	DNS           string
	InterfaceName string
	InterfaceRole string
	// PayloadPath is a file whose content is handed to the guest as its
	// configuration. A missing file means no payload.
	PayloadPath string
}

// NewBuilder returns a Builder for the given run parameters.
func NewBuilder(p *config.Params) *Builder {
	return &Builder{
		Gateway:       p.Gateway,
		DNS:           p.DNS,
		InterfaceName: p.InterfaceName,
		InterfaceRole: p.InterfaceRole,
		PayloadPath:   p.ConfigPayload,
	}
}

// Global returns the layer shared by every node: the network settings and,
// if requested, the encoded payload.
func (b *Builder) Global() (Bag, error) {
	global := Bag{
		KeyDNSServer:        b.DNS,
		KeyRouteDestination: defaultRoute,
		KeyRouteGateway:     b.Gateway,
		KeyInterfaceName:    b.InterfaceName,
		KeyInterfaceRole:    b.InterfaceRole,
		KeyInterfaceDHCP:    "no",
	}

	payload, err := b.payload()
	if err != nil {
		return nil, err
	}
	return global.Merge(payload), nil
}

func (b *Builder) payload() (Bag, error) {
	if b.PayloadPath == "" {
		return nil, nil
	}
	data, err := os.ReadFile(b.PayloadPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "unable to read config payload %q", b.PayloadPath)
	}
	return Bag{
		KeyConfigData:        base64.StdEncoding.EncodeToString(data),
		KeyConfigDataEncoded: base64Encoding,
	}, nil
}

// Node returns the layer specific to a single node.
func Node(node config.Node) Bag {
	return Bag{
		KeyHostname:         node.Name,
		KeyInterfaceAddress: node.Address,
	}
}

// Build returns the merged Bag of every node, keyed by node name.
func (b *Builder) Build(nodes []config.Node) (map[string]Bag, error) {
	global, err := b.Global()
	if err != nil {
		return nil, err
	}
	bags := make(map[string]Bag, len(nodes))
	for _, node := range nodes {
		bags[node.Name] = global.Merge(Node(node))
	}
	return bags, nil
}

/*
Copyright 2024 The Kubernetes Authors.

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

// Package config holds the parameters of a provisioning run.
package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/yaml"
)

const (
	// DefaultNamespace is the VMX key prefix read by the guest through the
	// guestinfo RPC interface.
	DefaultNamespace = "guestinfo"

	// DefaultInterfaceName is the name of the primary network interface in the guest.
	DefaultInterfaceName = "ens192"

	// DefaultInterfaceRole is the network role of the primary interface.
	DefaultInterfaceRole = "private"

	// DefaultTaskPollInterval is the delay between two reads of the task feed.
	DefaultTaskPollInterval = 15 * time.Second

	// DefaultReadyPollInterval is the delay between two reads of the guest tools status.
	DefaultReadyPollInterval = time.Second
)

// Node is a virtual machine of the cluster.
type Node struct {
	// Name is both the inventory name of the virtual machine and its hostname.
	Name string
	// Address is the static address of the node in CIDR notation.
	Address string
}

// Params are the inputs of a provisioning run.
type Params struct {
	Nodes         []string `json:"nodes,omitempty"`
	Addresses     []string `json:"addresses,omitempty"`
	Gateway       string   `json:"gateway,omitempty"`
	DNS           string   `json:"dns,omitempty"`
	ConfigPayload string   `json:"configPayload,omitempty"`

	Server     string `json:"server,omitempty"`
	Username   string `json:"username,omitempty"`
	Password   string `json:"password,omitempty"`
	Thumbprint string `json:"thumbprint,omitempty"`
	KeepAlive  bool   `json:"keepAlive,omitempty"`

	Datacenter       string `json:"datacenter,omitempty"`
	Template         string `json:"template,omitempty"`
	Host             string `json:"host,omitempty"`
	Cluster          string `json:"cluster,omitempty"`
	Datastore        string `json:"datastore,omitempty"`
	DatastoreCluster string `json:"datastoreCluster,omitempty"`
	Folder           string `json:"folder,omitempty"`

	Namespace     string `json:"namespace,omitempty"`
	InterfaceName string `json:"interfaceName,omitempty"`
	InterfaceRole string `json:"interfaceRole,omitempty"`

	// TaskTimeout and ReadyTimeout bound the waits on clone tasks and on the
	// guest tools. Zero waits forever.
	TaskPollInterval  metav1.Duration `json:"taskPollInterval,omitempty"`
	TaskTimeout       metav1.Duration `json:"taskTimeout,omitempty"`
	ReadyPollInterval metav1.Duration `json:"readyPollInterval,omitempty"`
	ReadyTimeout      metav1.Duration `json:"readyTimeout,omitempty"`
}

// NewParams returns Params populated with defaults.
func NewParams() *Params {
	p := &Params{}
	p.SetDefaults()
	return p
}

// SetDefaults fills every unset tunable with its default value.
func (p *Params) SetDefaults() {
	if p.Namespace == "" {
		p.Namespace = DefaultNamespace
	}
	if p.InterfaceName == "" {
		p.InterfaceName = DefaultInterfaceName
	}
	if p.InterfaceRole == "" {
		p.InterfaceRole = DefaultInterfaceRole
	}
	if p.TaskPollInterval.Duration == 0 {
		p.TaskPollInterval.Duration = DefaultTaskPollInterval
	}
	if p.ReadyPollInterval.Duration == 0 {
		p.ReadyPollInterval.Duration = DefaultReadyPollInterval
	}
}

// ClusterNodes pairs every node name with its address, in input order.
// It must only be called on validated Params.
func (p *Params) ClusterNodes() []Node {
	nodes := make([]Node, 0, len(p.Nodes))
	for i, name := range p.Nodes {
		nodes = append(nodes, Node{Name: name, Address: p.Addresses[i]})
	}
	return nodes
}

// Load reads Params from a YAML or JSON file. Unset tunables get defaults.
func Load(path string) (*Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read params file %q", path)
	}
	p := &Params{}
	if err := yaml.UnmarshalStrict(data, p); err != nil {
		return nil, errors.Wrapf(err, "unable to parse params file %q", path)
	}
	p.SetDefaults()
	return p, nil
}

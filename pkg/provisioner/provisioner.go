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

// Package provisioner sequences the steps of a cluster provisioning run.
package provisioner

import (
	"context"

	"github.com/pkg/errors"
	ctrl "sigs.k8s.io/controller-runtime"

	"github.com/spuranam/New-CoreOSCluster/pkg/config"
	"github.com/spuranam/New-CoreOSCluster/pkg/services/govmomi"
	"github.com/spuranam/New-CoreOSCluster/pkg/services/govmomi/extra"
	"github.com/spuranam/New-CoreOSCluster/pkg/services/govmomi/task"
	"github.com/spuranam/New-CoreOSCluster/pkg/services/govmomi/template"
	"github.com/spuranam/New-CoreOSCluster/pkg/services/govmomi/vcenter"
	"github.com/spuranam/New-CoreOSCluster/pkg/session"
)

// MountName names the local working directory holding control files.
const MountName = "coreos-cluster"

// BagBuilder builds the property bag of every node.
type BagBuilder interface {
	Build(nodes []config.Node) (map[string]extra.Bag, error)
}

// Creator issues clone tasks for the nodes that do not exist yet.
type Creator interface {
	CreateMissing(ctx context.Context, nodes []config.Node) ([]task.Handle, error)
}

// Tracker waits for clone tasks.
type Tracker interface {
	AwaitAll(ctx context.Context, handles []task.Handle) error
}

// Injector writes a property bag into a virtual machine and starts it.
type Injector interface {
	Inject(ctx context.Context, name string, bag extra.Bag) error
}

// ReadinessPoller waits for a virtual machine to boot.
type ReadinessPoller interface {
	WaitForReady(ctx context.Context, name string) error
}

// Provisioner runs the provisioning steps in order and stops at the first
// error.
type Provisioner struct {
	Bags      BagBuilder
	Creator   Creator
	Tracker   Tracker
	Injector  Injector
	Readiness ReadinessPoller
}

// New wires a Provisioner against a vCenter session. It resolves the
// template and placement of p, so p must be valid.
func New(ctx context.Context, s *session.Session, p *config.Params) (*Provisioner, error) {
	tpl, err := template.FindTemplate(ctx, s, p.Template)
	if err != nil {
		return nil, err
	}
	placement, err := vcenter.ResolvePlacement(ctx, s, p)
	if err != nil {
		return nil, err
	}

	inv := &govmomi.Inventory{Session: s, MountName: MountName}
	return &Provisioner{
		Bags: extra.NewBuilder(p),
		Creator: &govmomi.Creator{
			Session:   s,
			Inventory: inv,
			Template:  tpl,
			Placement: placement,
		},
		Tracker: &task.Tracker{
			Feed:     &task.RecentTaskFeed{Client: s.Client.Client},
			Interval: p.TaskPollInterval.Duration,
			Timeout:  p.TaskTimeout.Duration,
		},
		Injector: &govmomi.Injector{
			Machines:  inv,
			Storage:   inv,
			Namespace: p.Namespace,
		},
		Readiness: &govmomi.ReadinessPoller{
			Machines: inv,
			Interval: p.ReadyPollInterval.Duration,
			Timeout:  p.ReadyTimeout.Duration,
		},
	}, nil
}

// Run provisions the nodes of p:
//  1. validate p before touching any infrastructure,
//  2. build the property bag of every node,
//  3. clone the missing nodes and wait for every clone task,
//  4. one node at a time, in input order, inject its bag and wait for it
//     to become ready.
func (pr *Provisioner) Run(ctx context.Context, p *config.Params) error {
	log := ctrl.LoggerFrom(ctx)

	if err := p.Validate(); err != nil {
		return err
	}
	nodes := p.ClusterNodes()

	bags, err := pr.Bags.Build(nodes)
	if err != nil {
		return errors.Wrap(err, "unable to build node properties")
	}

	log.Info("Creating missing machines", "nodes", p.Nodes)
	handles, err := pr.Creator.CreateMissing(ctx, nodes)
	if err != nil {
		return errors.Wrap(err, "unable to create machines")
	}
	if err := pr.Tracker.AwaitAll(ctx, handles); err != nil {
		return errors.Wrap(err, "unable to wait for clone tasks")
	}

	for _, node := range nodes {
		log.Info("Injecting configuration", "node", node.Name)
		if err := pr.Injector.Inject(ctx, node.Name, bags[node.Name]); err != nil {
			return errors.Wrapf(err, "unable to configure node %s", node.Name)
		}
		log.Info("Waiting for machine to become ready", "node", node.Name)
		if err := pr.Readiness.WaitForReady(ctx, node.Name); err != nil {
			return errors.Wrapf(err, "node %s did not become ready", node.Name)
		}
	}
	return nil
}

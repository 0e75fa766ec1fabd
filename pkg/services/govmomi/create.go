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

package govmomi

import (
	"context"

	"github.com/vmware/govmomi/object"
	ctrl "sigs.k8s.io/controller-runtime"

	"github.com/spuranam/New-CoreOSCluster/pkg/config"
	"github.com/spuranam/New-CoreOSCluster/pkg/services/govmomi/task"
	"github.com/spuranam/New-CoreOSCluster/pkg/services/govmomi/vcenter"
	"github.com/spuranam/New-CoreOSCluster/pkg/session"
)

// Creator clones the template for every node that does not exist yet.
type Creator struct {
	Session   *session.Session
	Inventory *Inventory
	Template  *object.VirtualMachine
	Placement *vcenter.Placement
}

// CreateMissing issues one clone task per node whose name is not taken by an
// existing virtual machine and returns a handle for each issued task. It
// does not wait for the tasks. The first issuance error aborts; tasks
// already issued are left running.
func (c *Creator) CreateMissing(ctx context.Context, nodes []config.Node) ([]task.Handle, error) {
	log := ctrl.LoggerFrom(ctx)

	existing, err := c.Inventory.VirtualMachineNames(ctx)
	if err != nil {
		return nil, err
	}

	var handles []task.Handle
	for _, node := range nodes {
		if existing.Has(node.Name) {
			log.Info("Machine already exists, skipping clone", "node", node.Name)
			continue
		}
		t, err := vcenter.Clone(ctx, c.Session, c.Template, c.Placement, node.Name)
		if err != nil {
			return nil, err
		}
		handles = append(handles, task.Handle{ID: t.Reference().Value, Node: node.Name})
	}
	return handles, nil
}

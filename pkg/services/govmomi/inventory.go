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

// Package govmomi implements the provisioning steps against vCenter.
package govmomi

import (
	"context"
	"path"

	"github.com/pkg/errors"
	"github.com/vmware/govmomi/object"
	"github.com/vmware/govmomi/property"
	"github.com/vmware/govmomi/view"
	"github.com/vmware/govmomi/vim25/mo"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/spuranam/New-CoreOSCluster/pkg/services/govmomi/datastore"
	"github.com/spuranam/New-CoreOSCluster/pkg/session"
)

// Machines looks up virtual machines by name.
type Machines interface {
	Machine(ctx context.Context, name string) (Machine, error)
}

// Storage mounts the datastore holding a control file.
type Storage interface {
	Mount(ctx context.Context, vm Machine, datastoreName string) (Mount, error)
}

// Mount gives local access to datastore files until released.
type Mount interface {
	Fetch(ctx context.Context, remotePath string) (string, error)
	Publish(ctx context.Context, localPath, remotePath string) error
	Release() error
}

var (
	_ Machines = &Inventory{}
	_ Storage  = &Inventory{}
	_ Mount    = &datastore.Mount{}
)

// Inventory resolves virtual machines and datastores of the session's datacenter.
type Inventory struct {
	Session *session.Session
	// MountName names the local working directory used for control files.
	MountName string
}

// VirtualMachines returns the name and reference of every virtual machine
// and template in the datacenter, including those nested in folders.
func (inv *Inventory) VirtualMachines(ctx context.Context) ([]mo.VirtualMachine, error) {
	m := view.NewManager(inv.Session.Client.Client)
	v, err := m.CreateContainerView(ctx, inv.Session.Datacenter.Reference(), []string{"VirtualMachine"}, true)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create virtual machine view")
	}
	defer func() { _ = v.Destroy(ctx) }()

	var vms []mo.VirtualMachine
	if err := v.Retrieve(ctx, []string{"VirtualMachine"}, []string{"name"}, &vms); err != nil {
		return nil, errors.Wrap(err, "unable to list virtual machines")
	}
	return vms, nil
}

// VirtualMachineNames returns the names of every virtual machine in the datacenter.
func (inv *Inventory) VirtualMachineNames(ctx context.Context) (sets.Set[string], error) {
	vms, err := inv.VirtualMachines(ctx)
	if err != nil {
		return nil, err
	}
	names := sets.New[string]()
	for _, vm := range vms {
		names.Insert(vm.Name)
	}
	return names, nil
}

// Machine returns the virtual machine with exactly the given name.
func (inv *Inventory) Machine(ctx context.Context, name string) (Machine, error) {
	vms, err := inv.VirtualMachines(ctx)
	if err != nil {
		return nil, err
	}
	for _, vm := range vms {
		if vm.Name == name {
			obj := object.NewVirtualMachine(inv.Session.Client.Client, vm.Reference())
			return &virtualMachine{name: name, obj: obj}, nil
		}
	}
	return nil, errNotFound{name: name}
}

// Mount acquires the working directory for a datastore the virtual machine uses.
func (inv *Inventory) Mount(ctx context.Context, vm Machine, datastoreName string) (Mount, error) {
	ds, err := inv.datastore(ctx, vm, datastoreName)
	if err != nil {
		return nil, err
	}
	mount, err := datastore.Acquire(ds, inv.MountName)
	if err != nil {
		return nil, err
	}
	return mount, nil
}

// datastore resolves a datastore by name among the ones the virtual machine
// uses, so that datastores nested in datastore clusters are found too.
func (inv *Inventory) datastore(ctx context.Context, vm Machine, name string) (*object.Datastore, error) {
	refs, err := vm.Datastores(ctx)
	if err != nil {
		return nil, err
	}
	if len(refs) == 0 {
		return nil, errors.Errorf("vm %s uses no datastore", vm.Name())
	}

	c := inv.Session.Client.Client
	var datastores []mo.Datastore
	if err := property.DefaultCollector(c).Retrieve(ctx, refs, []string{"name"}, &datastores); err != nil {
		return nil, errors.Wrapf(err, "unable to get datastores of vm %s", vm.Name())
	}
	for _, ds := range datastores {
		if ds.Name != name {
			continue
		}
		obj := object.NewDatastore(c, ds.Reference())
		obj.DatacenterPath = inv.Session.Datacenter.InventoryPath
		obj.InventoryPath = path.Join(inv.Session.Datacenter.InventoryPath, "datastore", name)
		return obj, nil
	}
	return nil, errors.Errorf("unable to find datastore %q of vm %s", name, vm.Name())
}

type errNotFound struct {
	name string
}

func (e errNotFound) Error() string {
	return "vm with name " + e.name + " not found"
}

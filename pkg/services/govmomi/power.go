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

	"github.com/pkg/errors"
	"github.com/vmware/govmomi/object"
	"github.com/vmware/govmomi/vim25/mo"
	"github.com/vmware/govmomi/vim25/types"
	ctrl "sigs.k8s.io/controller-runtime"
)

// Machine is the subset of a virtual machine the injector and readiness
// poller act on.
type Machine interface {
	Name() string
	PowerState(ctx context.Context) (types.VirtualMachinePowerState, error)
	// PowerOff and PowerOn return once the power task completes.
	PowerOff(ctx context.Context) error
	PowerOn(ctx context.Context) error
	// ControlFile is the datastore path of the VMX file.
	ControlFile(ctx context.Context) (*object.DatastorePath, error)
	Datastores(ctx context.Context) ([]types.ManagedObjectReference, error)
	ToolsRunningStatus(ctx context.Context) (string, error)
}

type virtualMachine struct {
	name string
	obj  *object.VirtualMachine
}

func (vm *virtualMachine) Name() string {
	return vm.name
}

func (vm *virtualMachine) PowerState(ctx context.Context) (types.VirtualMachinePowerState, error) {
	state, err := vm.obj.PowerState(ctx)
	if err != nil {
		return "", errors.Wrapf(err, "unable to get power state of vm %s", vm.name)
	}
	return state, nil
}

func (vm *virtualMachine) PowerOff(ctx context.Context) error {
	t, err := vm.obj.PowerOff(ctx)
	if err != nil {
		return errors.Wrapf(err, "unable to trigger power off of vm %s", vm.name)
	}
	ctrl.LoggerFrom(ctx).V(4).Info("Waiting for power off", "node", vm.name, "task", t.Reference().Value)
	if err := t.Wait(ctx); err != nil {
		return errors.Wrapf(err, "power off of vm %s failed", vm.name)
	}
	return nil
}

func (vm *virtualMachine) PowerOn(ctx context.Context) error {
	t, err := vm.obj.PowerOn(ctx)
	if err != nil {
		return errors.Wrapf(err, "unable to trigger power on of vm %s", vm.name)
	}
	ctrl.LoggerFrom(ctx).V(4).Info("Waiting for power on", "node", vm.name, "task", t.Reference().Value)
	if err := t.Wait(ctx); err != nil {
		return errors.Wrapf(err, "power on of vm %s failed", vm.name)
	}
	return nil
}

func (vm *virtualMachine) ControlFile(ctx context.Context) (*object.DatastorePath, error) {
	var obj mo.VirtualMachine
	if err := vm.obj.Properties(ctx, vm.obj.Reference(), []string{"config.files.vmPathName"}, &obj); err != nil {
		return nil, errors.Wrapf(err, "unable to get config files of vm %s", vm.name)
	}
	if obj.Config == nil || obj.Config.Files.VmPathName == "" {
		return nil, errors.Errorf("vm %s has no vmx path", vm.name)
	}
	var p object.DatastorePath
	if !p.FromString(obj.Config.Files.VmPathName) {
		return nil, errors.Errorf("unable to parse vmx path %q of vm %s", obj.Config.Files.VmPathName, vm.name)
	}
	return &p, nil
}

func (vm *virtualMachine) Datastores(ctx context.Context) ([]types.ManagedObjectReference, error) {
	var obj mo.VirtualMachine
	if err := vm.obj.Properties(ctx, vm.obj.Reference(), []string{"datastore"}, &obj); err != nil {
		return nil, errors.Wrapf(err, "unable to get datastores of vm %s", vm.name)
	}
	return obj.Datastore, nil
}

func (vm *virtualMachine) ToolsRunningStatus(ctx context.Context) (string, error) {
	var obj mo.VirtualMachine
	if err := vm.obj.Properties(ctx, vm.obj.Reference(), []string{"guest.toolsRunningStatus"}, &obj); err != nil {
		return "", errors.Wrapf(err, "unable to get guest status of vm %s", vm.name)
	}
	if obj.Guest == nil {
		return "", nil
	}
	return obj.Guest.ToolsRunningStatus, nil
}

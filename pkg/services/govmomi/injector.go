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
	"os"

	"github.com/pkg/errors"
	"github.com/vmware/govmomi/vim25/types"
	ctrl "sigs.k8s.io/controller-runtime"

	"github.com/spuranam/New-CoreOSCluster/pkg/services/govmomi/extra"
	"github.com/spuranam/New-CoreOSCluster/pkg/vmx"
)

// Injector writes a property bag into the control file of a virtual machine.
type Injector struct {
	Machines  Machines
	Storage   Storage
	Namespace string
}

// Inject reconfigures the named virtual machine with bag:
//  1. power it off if it is running,
//  2. mount the datastore holding its VMX file and fetch the file,
//  3. replace every namespace line with the lines of bag plus its hostname,
//  4. publish the file back and power the machine on.
//
// The mount is released on every return path.
func (i *Injector) Inject(ctx context.Context, name string, bag extra.Bag) error {
	log := ctrl.LoggerFrom(ctx).WithValues("node", name)

	vm, err := i.Machines.Machine(ctx, name)
	if err != nil {
		return err
	}

	state, err := vm.PowerState(ctx)
	if err != nil {
		return err
	}
	if state == types.VirtualMachinePowerStatePoweredOn {
		log.Info("Powering off machine")
		if err := vm.PowerOff(ctx); err != nil {
			return err
		}
	}

	controlFile, err := vm.ControlFile(ctx)
	if err != nil {
		return err
	}

	mount, err := i.Storage.Mount(ctx, vm, controlFile.Datastore)
	if err != nil {
		return err
	}
	defer func() {
		if err := mount.Release(); err != nil {
			log.Error(err, "Unable to release mount")
		}
	}()

	local, err := mount.Fetch(ctx, controlFile.Path)
	if err != nil {
		return err
	}
	content, err := os.ReadFile(local)
	if err != nil {
		return errors.Wrapf(err, "unable to read control file of vm %s", name)
	}

	patched := vmx.Patch(string(content), i.Namespace, bag.Merge(extra.Bag{extra.KeyHostname: name}))
	if err := os.WriteFile(local, []byte(patched), 0o600); err != nil {
		return errors.Wrapf(err, "unable to write control file of vm %s", name)
	}
	log.V(4).Info("Publishing control file", "path", controlFile.String())
	if err := mount.Publish(ctx, local, controlFile.Path); err != nil {
		return err
	}

	log.Info("Powering on machine")
	return vm.PowerOn(ctx)
}

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
	"time"

	"github.com/pkg/errors"
	"github.com/vmware/govmomi/vim25/types"
	ctrl "sigs.k8s.io/controller-runtime"

	"github.com/spuranam/New-CoreOSCluster/pkg/util"
)

// ReadinessPoller waits for VMware Tools to report running in a guest.
type ReadinessPoller struct {
	Machines Machines
	Interval time.Duration
	// Timeout bounds the wait; zero waits until the context is done.
	Timeout time.Duration
}

// IsReady reports whether status is a tools running status of a booted guest.
func IsReady(status string) bool {
	return status != "" && status != string(types.VirtualMachineToolsRunningStatusGuestToolsNotRunning)
}

// WaitForReady polls the tools running status of the named virtual machine
// until it reports ready.
func (r *ReadinessPoller) WaitForReady(ctx context.Context, name string) error {
	log := ctrl.LoggerFrom(ctx).WithValues("node", name)

	vm, err := r.Machines.Machine(ctx, name)
	if err != nil {
		return err
	}

	err = util.Poll(ctx, r.Interval, r.Timeout, func(ctx context.Context) (bool, error) {
		status, err := vm.ToolsRunningStatus(ctx)
		if err != nil {
			return false, err
		}
		log.V(4).Info("Polled tools status", "status", status)
		return IsReady(status), nil
	})
	if err != nil {
		return errors.Wrapf(err, "vm %s did not become ready", name)
	}
	log.Info("Machine is ready")
	return nil
}

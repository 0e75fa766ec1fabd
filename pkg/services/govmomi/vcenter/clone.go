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

package vcenter

import (
	"context"

	"github.com/pkg/errors"
	"github.com/vmware/govmomi/object"
	"github.com/vmware/govmomi/vim25/types"
	"k8s.io/utils/pointer"
	ctrl "sigs.k8s.io/controller-runtime"

	"github.com/spuranam/New-CoreOSCluster/pkg/config"
	"github.com/spuranam/New-CoreOSCluster/pkg/session"
)

const fullCloneDiskMoveType = types.VirtualMachineRelocateDiskMoveOptionsMoveAllDiskBackingsAndConsolidate

// Placement is where new virtual machines are created.
type Placement struct {
	Folder *object.Folder
	Pool   *object.ResourcePool
	// Host is only set for host-scoped placement.
	Host *object.HostSystem
	// Exactly one of Datastore or StoragePod is set.
	Datastore  *object.Datastore
	StoragePod *object.StoragePod
}

// ResolvePlacement finds the folder, resource pool and storage named in p.
// p must have been validated.
func ResolvePlacement(ctx context.Context, s *session.Session, p *config.Params) (*Placement, error) {
	placement := &Placement{}

	folder, err := s.Finder.FolderOrDefault(ctx, p.Folder)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to find folder %q", p.Folder)
	}
	placement.Folder = folder

	if p.Host != "" {
		host, err := s.Finder.HostSystem(ctx, p.Host)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to find host %q", p.Host)
		}
		pool, err := host.ResourcePool(ctx)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to get resource pool of host %q", p.Host)
		}
		placement.Host, placement.Pool = host, pool
	} else {
		cluster, err := s.Finder.ClusterComputeResource(ctx, p.Cluster)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to find cluster %q", p.Cluster)
		}
		pool, err := cluster.ResourcePool(ctx)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to get resource pool of cluster %q", p.Cluster)
		}
		placement.Pool = pool
	}

	if p.Datastore != "" {
		ds, err := s.Finder.Datastore(ctx, p.Datastore)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to find datastore %q", p.Datastore)
		}
		placement.Datastore = ds
	} else {
		pod, err := s.Finder.DatastoreCluster(ctx, p.DatastoreCluster)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to find datastore cluster %q", p.DatastoreCluster)
		}
		placement.StoragePod = pod
	}

	return placement, nil
}

// Clone kicks off a clone operation on vCenter to create a new virtual machine. This function does not wait for
// the virtual machine to be created, the returned task has to be waited on instead.
func Clone(ctx context.Context, s *session.Session, tpl *object.VirtualMachine, placement *Placement, name string) (*object.Task, error) {
	log := ctrl.LoggerFrom(ctx).WithName("vcenter").WithValues("node", name)

	spec := types.VirtualMachineCloneSpec{
		Config: &types.VirtualMachineConfigSpec{
			Flags: newVMFlagInfo(),
		},
		Location: types.VirtualMachineRelocateSpec{
			DiskMoveType: string(fullCloneDiskMoveType),
			Folder:       types.NewReference(placement.Folder.Reference()),
			Pool:         types.NewReference(placement.Pool.Reference()),
		},
		// The VM is powered on only once its guestinfo has been injected.
		PowerOn: false,
	}
	if placement.Host != nil {
		spec.Location.Host = types.NewReference(placement.Host.Reference())
	}

	if placement.StoragePod != nil {
		datastoreRef, err := recommendDatastore(ctx, s, tpl, placement, name, spec)
		if err != nil {
			return nil, err
		}
		spec.Location.Datastore = datastoreRef
	} else {
		spec.Location.Datastore = types.NewReference(placement.Datastore.Reference())
	}

	log.Info("cloning machine", "template", tpl.Reference().Value, "datastore", spec.Location.Datastore.Value)
	task, err := tpl.Clone(ctx, placement.Folder, name, spec)
	if err != nil {
		return nil, errors.Wrapf(err, "error trigging clone op for machine %s", name)
	}
	return task, nil
}

// recommendDatastore asks Storage DRS which datastore of the datastore
// cluster should hold the clone.
func recommendDatastore(ctx context.Context, s *session.Session, tpl *object.VirtualMachine, placement *Placement, name string, spec types.VirtualMachineCloneSpec) (*types.ManagedObjectReference, error) {
	tplRef := tpl.Reference()
	podRef := placement.StoragePod.Reference()
	placementSpec := types.StoragePlacementSpec{
		Type:      string(types.StoragePlacementSpecPlacementTypeClone),
		CloneName: name,
		CloneSpec: &spec,
		Vm:        &tplRef,
		Folder:    types.NewReference(placement.Folder.Reference()),
		PodSelectionSpec: types.StorageDrsPodSelectionSpec{
			StoragePod: &podRef,
		},
	}

	srm := object.NewStorageResourceManager(s.Client.Client)
	result, err := srm.RecommendDatastores(ctx, placementSpec)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to get datastore recommendation for machine %s", name)
	}
	if len(result.Recommendations) == 0 {
		return nil, errors.Errorf("no datastore recommendation for machine %s in datastore cluster %q", name, placement.StoragePod.Name())
	}
	for _, action := range result.Recommendations[0].Action {
		if placementAction, ok := action.(*types.StoragePlacementAction); ok {
			return types.NewReference(placementAction.Destination), nil
		}
	}
	return nil, errors.Errorf("datastore recommendation for machine %s has no placement action", name)
}

func newVMFlagInfo() *types.VirtualMachineFlagInfo {
	return &types.VirtualMachineFlagInfo{
		DiskUuidEnabled: pointer.Bool(true),
	}
}

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

package task

import (
	"context"

	"github.com/pkg/errors"
	"github.com/vmware/govmomi/property"
	"github.com/vmware/govmomi/vim25"
	"github.com/vmware/govmomi/vim25/mo"
)

// RecentTaskFeed reads the recent tasks of the vCenter task manager.
type RecentTaskFeed struct {
	Client *vim25.Client
}

// Snapshot implements Feed.
func (f *RecentTaskFeed) Snapshot(ctx context.Context) ([]Status, error) {
	pc := property.DefaultCollector(f.Client)

	var tm mo.TaskManager
	if err := pc.RetrieveOne(ctx, *f.Client.ServiceContent.TaskManager, []string{"recentTask"}, &tm); err != nil {
		return nil, errors.Wrap(err, "unable to list recent tasks")
	}
	if len(tm.RecentTask) == 0 {
		return nil, nil
	}

	var tasks []mo.Task
	if err := pc.Retrieve(ctx, tm.RecentTask, []string{"info"}, &tasks); err != nil {
		return nil, errors.Wrap(err, "unable to get recent task info")
	}
	statuses := make([]Status, 0, len(tasks))
	for _, t := range tasks {
		statuses = append(statuses, Status{ID: t.Self.Value, State: t.Info.State})
	}
	return statuses, nil
}

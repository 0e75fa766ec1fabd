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

// Package task tracks vCenter tasks until they reach a terminal state.
package task

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/vmware/govmomi/vim25/types"
	"k8s.io/apimachinery/pkg/util/sets"
	ctrl "sigs.k8s.io/controller-runtime"

	"github.com/spuranam/New-CoreOSCluster/pkg/util"
)

// Handle identifies an issued task and the node it creates.
type Handle struct {
	// ID is the value of the task's managed object reference.
	ID   string
	Node string
}

// Status is the state of a task at the time of a snapshot.
type Status struct {
	ID    string
	State types.TaskInfoState
}

// IsTerminal reports whether no further state change can occur.
func (s Status) IsTerminal() bool {
	return s.State == types.TaskInfoStateSuccess || s.State == types.TaskInfoStateError
}

// Feed returns the current state of the tasks known to vCenter.
type Feed interface {
	Snapshot(ctx context.Context) ([]Status, error)
}

// Tracked maps the ID of every pending task to its node.
type Tracked map[string]string

// NewTracked returns the tracked set for the given handles.
func NewTracked(handles []Handle) Tracked {
	tracked := make(Tracked, len(handles))
	for _, h := range handles {
		tracked[h.ID] = h.Node
	}
	return tracked
}

// Nodes returns the sorted names of the nodes still pending.
func (t Tracked) Nodes() []string {
	nodes := sets.New[string]()
	for _, node := range t {
		nodes.Insert(node)
	}
	return sets.List(nodes)
}

// Reduce returns the tracked set without the tasks that reached a terminal
// state in statuses. Statuses of untracked tasks are ignored.
func Reduce(tracked Tracked, statuses []Status) Tracked {
	pending := make(Tracked, len(tracked))
	for id, node := range tracked {
		pending[id] = node
	}
	for _, s := range statuses {
		if _, ok := pending[s.ID]; ok && s.IsTerminal() {
			delete(pending, s.ID)
		}
	}
	return pending
}

// Tracker waits for a set of tasks by polling a Feed.
type Tracker struct {
	Feed     Feed
	Interval time.Duration
	// Timeout bounds AwaitAll. Zero waits forever.
	Timeout time.Duration
}

// AwaitAll returns once every handle has reached a terminal state. Failed
// tasks are not reported: a node whose creation failed is simply missing
// from the inventory afterwards.
func (t *Tracker) AwaitAll(ctx context.Context, handles []Handle) error {
	log := ctrl.LoggerFrom(ctx).WithName("task")
	tracked := NewTracked(handles)
	if len(tracked) == 0 {
		log.V(4).Info("no tasks to wait for")
		return nil
	}

	log.Info("waiting for tasks", "count", len(tracked))
	err := util.Poll(ctx, t.Interval, t.Timeout, func(ctx context.Context) (bool, error) {
		statuses, err := t.Feed.Snapshot(ctx)
		if err != nil {
			return false, errors.Wrap(err, "unable to read task feed")
		}
		tracked = Reduce(tracked, statuses)
		log.V(4).Info("polled task feed", "pending", tracked.Nodes())
		return len(tracked) == 0, nil
	})
	if errors.Is(err, util.ErrStalled) {
		return errors.Wrapf(err, "tasks for nodes %v did not complete", tracked.Nodes())
	}
	return err
}

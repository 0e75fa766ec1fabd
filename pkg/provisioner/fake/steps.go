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

// Package fake implements mock provisioning steps for testing.
package fake

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/spuranam/New-CoreOSCluster/pkg/config"
	"github.com/spuranam/New-CoreOSCluster/pkg/services/govmomi/extra"
	"github.com/spuranam/New-CoreOSCluster/pkg/services/govmomi/task"
)

// Steps mocks the creator, tracker, injector and readiness poller of a
// Provisioner.
type Steps struct {
	mock.Mock
}

func (f *Steps) CreateMissing(ctx context.Context, nodes []config.Node) ([]task.Handle, error) {
	args := f.Called(ctx, nodes)
	handles, _ := args.Get(0).([]task.Handle)
	return handles, args.Error(1)
}

func (f *Steps) AwaitAll(ctx context.Context, handles []task.Handle) error {
	args := f.Called(ctx, handles)
	return args.Error(0)
}

func (f *Steps) Inject(ctx context.Context, name string, bag extra.Bag) error {
	args := f.Called(ctx, name, bag)
	return args.Error(0)
}

func (f *Steps) WaitForReady(ctx context.Context, name string) error {
	args := f.Called(ctx, name)
	return args.Error(0)
}

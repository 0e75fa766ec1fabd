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

// Package util contains helpers shared by the provisioning services.
package util

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"k8s.io/apimachinery/pkg/util/wait"
)

// ErrStalled is returned when a wait exceeds its configured timeout.
var ErrStalled = errors.New("stalled")

// Poll runs condition immediately and then once per interval until it
// reports done, returns an error, or ctx is cancelled. A zero timeout polls
// without bound; otherwise exceeding it yields an error wrapping ErrStalled.
func Poll(ctx context.Context, interval, timeout time.Duration, condition wait.ConditionWithContextFunc) error {
	var err error
	if timeout == 0 {
		err = wait.PollUntilContextCancel(ctx, interval, true, condition)
	} else {
		err = wait.PollUntilContextTimeout(ctx, interval, timeout, true, condition)
	}
	if err == nil {
		return nil
	}
	if wait.Interrupted(err) && ctx.Err() == nil {
		return errors.Wrapf(ErrStalled, "no progress after %s", timeout)
	}
	return err
}

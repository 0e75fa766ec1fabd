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

package govmomi

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"github.com/pkg/errors"

	"github.com/spuranam/New-CoreOSCluster/pkg/util"
)

func TestIsReady(t *testing.T) {
	g := NewWithT(t)
	g.Expect(IsReady("")).To(BeFalse())
	g.Expect(IsReady("guestToolsNotRunning")).To(BeFalse())
	g.Expect(IsReady("guestToolsRunning")).To(BeTrue())
	g.Expect(IsReady("guestToolsExecutingScripts")).To(BeTrue())
}

func TestWaitForReady(t *testing.T) {
	ctx := context.Background()

	t.Run("returns once tools report running", func(t *testing.T) {
		g := NewWithT(t)
		vm := &fakeMachine{name: "a", statuses: []string{"", "guestToolsNotRunning", "guestToolsRunning"}}
		poller := &ReadinessPoller{Machines: fakeMachines{"a": vm}, Interval: time.Millisecond}

		g.Expect(poller.WaitForReady(ctx, "a")).To(Succeed())
		g.Expect(vm.polls).To(Equal(2))
	})

	t.Run("returns immediately for a ready machine", func(t *testing.T) {
		g := NewWithT(t)
		vm := &fakeMachine{name: "a", statuses: []string{"guestToolsRunning"}}
		poller := &ReadinessPoller{Machines: fakeMachines{"a": vm}, Interval: time.Hour}

		g.Expect(poller.WaitForReady(ctx, "a")).To(Succeed())
	})

	t.Run("stalls after the timeout", func(t *testing.T) {
		g := NewWithT(t)
		vm := &fakeMachine{name: "a", statuses: []string{"guestToolsNotRunning"}}
		poller := &ReadinessPoller{Machines: fakeMachines{"a": vm}, Interval: time.Millisecond, Timeout: 20 * time.Millisecond}

		err := poller.WaitForReady(ctx, "a")
		g.Expect(err).To(MatchError(util.ErrStalled))
		g.Expect(err.Error()).To(ContainSubstring("vm a did not become ready"))
	})

	t.Run("stops on a status error", func(t *testing.T) {
		g := NewWithT(t)
		vm := &fakeMachine{name: "a", err: errors.New("session expired")}
		poller := &ReadinessPoller{Machines: fakeMachines{"a": vm}, Interval: time.Millisecond}

		g.Expect(poller.WaitForReady(ctx, "a")).To(MatchError(ContainSubstring("session expired")))
	})

	t.Run("fails for a missing machine", func(t *testing.T) {
		g := NewWithT(t)
		poller := &ReadinessPoller{Machines: fakeMachines{}, Interval: time.Millisecond}

		g.Expect(poller.WaitForReady(ctx, "a")).To(MatchError(ContainSubstring("not found")))
	})
}

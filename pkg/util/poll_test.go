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

package util

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"github.com/pkg/errors"
)

func TestPoll(t *testing.T) {
	t.Run("returns once the condition is done", func(t *testing.T) {
		g := NewWithT(t)
		calls := 0
		err := Poll(context.Background(), time.Millisecond, 0, func(context.Context) (bool, error) {
			calls++
			return calls == 3, nil
		})
		g.Expect(err).ToNot(HaveOccurred())
		g.Expect(calls).To(Equal(3))
	})

	t.Run("checks the condition before the first interval", func(t *testing.T) {
		g := NewWithT(t)
		start := time.Now()
		err := Poll(context.Background(), time.Hour, 0, func(context.Context) (bool, error) {
			return true, nil
		})
		g.Expect(err).ToNot(HaveOccurred())
		g.Expect(time.Since(start)).To(BeNumerically("<", time.Minute))
	})

	t.Run("returns the condition error", func(t *testing.T) {
		g := NewWithT(t)
		boom := errors.New("boom")
		err := Poll(context.Background(), time.Millisecond, 0, func(context.Context) (bool, error) {
			return false, boom
		})
		g.Expect(err).To(MatchError(boom))
	})

	t.Run("reports a stall when the timeout is exceeded", func(t *testing.T) {
		g := NewWithT(t)
		err := Poll(context.Background(), time.Millisecond, 20*time.Millisecond, func(context.Context) (bool, error) {
			return false, nil
		})
		g.Expect(errors.Is(err, ErrStalled)).To(BeTrue())
	})

	t.Run("reports cancellation of the parent context", func(t *testing.T) {
		g := NewWithT(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := Poll(ctx, time.Millisecond, time.Minute, func(context.Context) (bool, error) {
			return false, nil
		})
		g.Expect(err).To(HaveOccurred())
		g.Expect(errors.Is(err, ErrStalled)).To(BeFalse())
	})
}

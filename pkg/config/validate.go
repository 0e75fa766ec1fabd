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

package config

import (
	"net/netip"
	"strings"

	"github.com/pkg/errors"
	kerrors "k8s.io/apimachinery/pkg/util/errors"
	"k8s.io/apimachinery/pkg/util/sets"
)

// ErrInvalidParams is returned by Validate when a run cannot be started.
var ErrInvalidParams = errors.New("invalid parameters")

// Validate checks every precondition of a run. It does not touch any
// infrastructure, so a failing run never connects to vCenter.
func (p *Params) Validate() error {
	var errs []error

	switch {
	case len(p.Nodes) == 0:
		errs = append(errs, errors.New("at least one node is required"))
	case len(p.Nodes) != len(p.Addresses):
		errs = append(errs, errors.Errorf("node list and address list differ in length: %d nodes, %d addresses", len(p.Nodes), len(p.Addresses)))
	}

	seen := sets.New[string]()
	for _, name := range p.Nodes {
		if name == "" {
			errs = append(errs, errors.New("node name must not be empty"))
			continue
		}
		if seen.Has(name) {
			errs = append(errs, errors.Errorf("node %q is listed more than once", name))
		}
		seen.Insert(name)
		if strings.Contains(name, `"`) {
			errs = append(errs, errors.Errorf("node name %q must not contain a double quote", name))
		}
	}
	for _, addr := range p.Addresses {
		if _, err := netip.ParsePrefix(addr); err != nil {
			errs = append(errs, errors.Wrapf(err, "address %q is not in CIDR notation", addr))
		}
	}

	if (p.Host == "") == (p.Cluster == "") {
		errs = append(errs, errors.New("exactly one of host or cluster is required"))
	}
	if (p.Datastore == "") == (p.DatastoreCluster == "") {
		errs = append(errs, errors.New("exactly one of datastore or datastore cluster is required"))
	}
	if p.Template == "" {
		errs = append(errs, errors.New("template is required"))
	}
	if p.Server == "" {
		errs = append(errs, errors.New("server is required"))
	}
	if p.Namespace == "" {
		errs = append(errs, errors.New("namespace must not be empty"))
	}
	if p.TaskPollInterval.Duration <= 0 || p.ReadyPollInterval.Duration <= 0 {
		errs = append(errs, errors.New("poll intervals must be positive"))
	}
	if p.TaskTimeout.Duration < 0 || p.ReadyTimeout.Duration < 0 {
		errs = append(errs, errors.New("timeouts must not be negative"))
	}

	if len(errs) > 0 {
		return errors.Wrap(ErrInvalidParams, kerrors.NewAggregate(errs).Error())
	}
	return nil
}

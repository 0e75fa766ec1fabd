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

package vcsim

import "fmt"

// DatacenterName provide a function to compute vcsim datacenter names given its index.
func DatacenterName(datacenter int) string {
	return fmt.Sprintf("DC%d", datacenter)
}

// ClusterName provide a function to compute vcsim cluster names given its index and the index of a datacenter.
func ClusterName(datacenter, cluster int) string {
	return fmt.Sprintf("%s_C%d", DatacenterName(datacenter), cluster)
}

// HostName provides the name of a standalone vcsim host given its index and the index of a datacenter.
func HostName(datacenter, host int) string {
	return fmt.Sprintf("%s_H%d", DatacenterName(datacenter), host)
}

// DatastoreName provide a function to compute vcsim datastore names given its index.
func DatastoreName(datastore int) string {
	return fmt.Sprintf("LocalDS_%d", datastore)
}

// HostVMName provides the name of a VM running on a standalone vcsim host.
func HostVMName(datacenter, host, vm int) string {
	return fmt.Sprintf("%s_VM%d", HostName(datacenter, host), vm)
}

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

// Package vmx edits the guestinfo section of a VMX file.
package vmx

import (
	"fmt"
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"
)

// Strip removes every line whose key lives in namespace and makes sure the
// remaining content ends with exactly one newline. Empty content stays empty.
func Strip(content, namespace string) string {
	prefix := namespace + "."
	lines := strings.Split(content, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		// VMX keys are case-insensitive.
		if key := strings.TrimSpace(line); len(key) >= len(prefix) && strings.EqualFold(key[:len(prefix)], prefix) {
			continue
		}
		kept = append(kept, line)
	}

	stripped := strings.TrimRight(strings.Join(kept, "\n"), "\r\n")
	if stripped == "" {
		return ""
	}
	return stripped + "\n"
}

// Line formats a single namespaced property. The value is written verbatim.
func Line(namespace, key, value string) string {
	return fmt.Sprintf("%s.%s = \"%s\"\n", namespace, key, value)
}

// Patch replaces the namespace section of content with one line per
// property. Lines are written in key order so patching is idempotent.
func Patch(content, namespace string, properties map[string]string) string {
	var b strings.Builder
	b.WriteString(Strip(content, namespace))
	for _, k := range sets.List(sets.KeySet(properties)) {
		b.WriteString(Line(namespace, k, properties[k]))
	}
	return b.String()
}

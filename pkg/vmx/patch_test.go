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

package vmx

import (
	"strings"
	"testing"

	. "github.com/onsi/gomega"
)

const original = `.encoding = "UTF-8"
config.version = "8"
displayName = "node-a"
guestinfo.hostname = "stale"
guestinfo.interface.0.dhcp = "yes"
memSize = "2048"
`

func TestStrip(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "removes namespace lines",
			content: original,
			want:    ".encoding = \"UTF-8\"\nconfig.version = \"8\"\ndisplayName = \"node-a\"\nmemSize = \"2048\"\n",
		},
		{
			name:    "adds a missing trailing newline",
			content: "displayName = \"node-a\"",
			want:    "displayName = \"node-a\"\n",
		},
		{
			name:    "collapses trailing newlines",
			content: "displayName = \"node-a\"\n\n\r\n",
			want:    "displayName = \"node-a\"\n",
		},
		{
			name:    "keeps keys that only share a prefix",
			content: "guestinfostore = \"x\"\n",
			want:    "guestinfostore = \"x\"\n",
		},
		{
			name:    "matches the namespace regardless of case",
			content: "displayName = \"node-a\"\nguestInfo.hostname = \"old\"\nGUESTINFO.dns.server.0 = \"10.0.0.9\"\n",
			want:    "displayName = \"node-a\"\n",
		},
		{
			name:    "empty content",
			content: "",
			want:    "",
		},
		{
			name:    "only namespace lines",
			content: "guestinfo.hostname = \"stale\"\n",
			want:    "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWithT(t)
			g.Expect(Strip(tt.content, "guestinfo")).To(Equal(tt.want))
		})
	}
}

func TestLine(t *testing.T) {
	g := NewWithT(t)
	g.Expect(Line("guestinfo", "interface.0.ip.0.address", "10.0.0.5/24")).
		To(Equal("guestinfo.interface.0.ip.0.address = \"10.0.0.5/24\"\n"))
}

func TestPatch(t *testing.T) {
	properties := map[string]string{
		"hostname":                 "a",
		"interface.0.dhcp":         "no",
		"interface.0.ip.0.address": "10.0.0.5/24",
	}

	t.Run("replaces the namespace section", func(t *testing.T) {
		g := NewWithT(t)
		patched := Patch(original, "guestinfo", properties)

		g.Expect(patched).To(HavePrefix(".encoding = \"UTF-8\"\n"))
		g.Expect(patched).To(HaveSuffix("guestinfo.interface.0.ip.0.address = \"10.0.0.5/24\"\n"))
		g.Expect(patched).To(ContainSubstring("memSize = \"2048\"\nguestinfo."))
		g.Expect(patched).ToNot(ContainSubstring("stale"))

		var injected []string
		for _, line := range strings.Split(patched, "\n") {
			if strings.HasPrefix(line, "guestinfo.") {
				injected = append(injected, line)
			}
		}
		g.Expect(injected).To(ConsistOf(
			`guestinfo.hostname = "a"`,
			`guestinfo.interface.0.dhcp = "no"`,
			`guestinfo.interface.0.ip.0.address = "10.0.0.5/24"`,
		))
	})

	t.Run("is idempotent", func(t *testing.T) {
		g := NewWithT(t)
		once := Patch(original, "guestinfo", properties)
		g.Expect(Patch(once, "guestinfo", properties)).To(Equal(once))
	})

	t.Run("writes values verbatim", func(t *testing.T) {
		g := NewWithT(t)
		patched := Patch("", "guestinfo", map[string]string{"coreos.config.data": `a\b`})
		g.Expect(patched).To(Equal("guestinfo.coreos.config.data = \"a\\b\"\n"))
	})

	t.Run("uses the given namespace", func(t *testing.T) {
		g := NewWithT(t)
		patched := Patch(original, "custom", map[string]string{"hostname": "a"})
		g.Expect(patched).To(ContainSubstring("guestinfo.hostname = \"stale\"\n"))
		g.Expect(patched).To(HaveSuffix("custom.hostname = \"a\"\n"))
	})
}

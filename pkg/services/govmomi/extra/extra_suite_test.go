/*
Copyright 2019 The Kubernetes Authors.

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

package extra

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	ginkgotypes "github.com/onsi/ginkgo/v2/types"
	. "github.com/onsi/gomega"

	"github.com/spuranam/New-CoreOSCluster/pkg/config"
)

func TestExtra(t *testing.T) {
	RegisterFailHandler(Fail)

	reporterConfig := ginkgotypes.NewDefaultReporterConfig()
	if artifactFolder, exists := os.LookupEnv("ARTIFACTS"); exists {
		reporterConfig.JUnitReport = filepath.Join(artifactFolder, "junit.ginkgo.pkg_services_govmomi_extra.xml")
	}
	RunSpecs(t, "Extra Suite", reporterConfig)
}

var nodes = []config.Node{
	{Name: "a", Address: "10.0.0.5/24"},
	{Name: "b", Address: "10.0.0.6/24"},
}

func newBuilder(payloadPath string) *Builder {
	p := config.NewParams()
	p.Gateway = "10.0.0.1"
	p.DNS = "10.0.0.2"
	p.ConfigPayload = payloadPath
	return NewBuilder(p)
}

var _ = Describe("Builder_Build", func() {
	Context("no config payload is requested", func() {
		var bags map[string]Bag

		BeforeEach(func() {
			var err error
			bags, err = newBuilder("").Build(nodes)
			Expect(err).ToNot(HaveOccurred())
		})

		It("returns one bag per node", func() {
			Expect(bags).To(HaveLen(2))
			Expect(bags).To(HaveKey("a"))
			Expect(bags).To(HaveKey("b"))
		})

		It("sets the global and node properties", func() {
			Expect(bags["a"]).To(Equal(Bag{
				"hostname":                        "a",
				"interface.0.ip.0.address":        "10.0.0.5/24",
				"dns.server.0":                    "10.0.0.2",
				"interface.0.route.0.gateway":     "10.0.0.1",
				"interface.0.route.0.destination": "0.0.0.0/0",
				"interface.0.dhcp":                "no",
				"interface.0.name":                config.DefaultInterfaceName,
				"interface.0.role":                config.DefaultInterfaceRole,
			}))
			Expect(bags["b"]).To(HaveKeyWithValue(KeyHostname, "b"))
			Expect(bags["b"]).To(HaveKeyWithValue(KeyInterfaceAddress, "10.0.0.6/24"))
		})

		It("does not set the payload keys", func() {
			Expect(bags["a"]).ToNot(HaveKey(KeyConfigData))
			Expect(bags["a"]).ToNot(HaveKey(KeyConfigDataEncoded))
		})
	})

	Context("the config payload path does not exist", func() {
		It("treats it as no payload", func() {
			bags, err := newBuilder(filepath.Join(GinkgoT().TempDir(), "missing.ign")).Build(nodes)
			Expect(err).ToNot(HaveOccurred())
			Expect(bags["a"]).ToNot(HaveKey(KeyConfigData))
			Expect(bags["a"]).ToNot(HaveKey(KeyConfigDataEncoded))
		})
	})

	Context("a config payload is requested", func() {
		const payload = "#cloud-config\nhostname: ignored\n"
		var bags map[string]Bag

		BeforeEach(func() {
			path := filepath.Join(GinkgoT().TempDir(), "user-data")
			Expect(os.WriteFile(path, []byte(payload), 0o600)).To(Succeed())
			var err error
			bags, err = newBuilder(path).Build(nodes)
			Expect(err).ToNot(HaveOccurred())
		})

		It("stores the payload base64 encoded", func() {
			Expect(bags["a"]).To(HaveKeyWithValue(KeyConfigData, base64.StdEncoding.EncodeToString([]byte(payload))))
		})

		It("names the encoding", func() {
			Expect(bags["a"]).To(HaveKeyWithValue(KeyConfigDataEncoded, "base64"))
		})

		It("keeps the node hostname", func() {
			Expect(bags["a"]).To(HaveKeyWithValue(KeyHostname, "a"))
		})
	})
})

var _ = Describe("Bag_Merge", func() {
	It("lets later layers win on collision", func() {
		global := Bag{KeyHostname: "global", KeyDNSServer: "10.0.0.2"}
		merged := global.Merge(Bag{KeyHostname: "node"})

		Expect(merged).To(Equal(Bag{KeyHostname: "node", KeyDNSServer: "10.0.0.2"}))
	})

	It("does not modify the receiver", func() {
		global := Bag{KeyHostname: "global"}
		_ = global.Merge(Bag{KeyHostname: "node"})

		Expect(global).To(HaveKeyWithValue(KeyHostname, "global"))
	})
})

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

// Package main is the main package for coreos-cluster.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"k8s.io/klog/v2"
	ctrl "sigs.k8s.io/controller-runtime"

	"github.com/spuranam/New-CoreOSCluster/pkg/config"
	"github.com/spuranam/New-CoreOSCluster/pkg/provisioner"
	"github.com/spuranam/New-CoreOSCluster/pkg/session"
)

// connectFunc opens a vCenter session for validated params.
type connectFunc func(ctx context.Context, p *config.Params) (*session.Session, error)

// runFunc provisions the cluster over an open session.
type runFunc func(ctx context.Context, s *session.Session, p *config.Params) error

func main() {
	log := klog.Background()
	ctx := ctrl.LoggerInto(ctrl.SetupSignalHandler(), log)
	ctrl.SetLogger(log)

	rootCmd := newRootCommand(ctx, connect, provision)
	if err := rootCmd.Execute(); err != nil {
		log.Error(err, "Failed provisioning cluster")
		klog.Flush()
		os.Exit(1)
	}
	klog.Flush()
}

// options are the raw command line values. A value only overrides the
// params file when its flag was set.
type options struct {
	paramsFile string
	p          config.Params
}

func newRootCommand(ctx context.Context, connect connectFunc, run runFunc) *cobra.Command {
	o := &options{}
	cmd := &cobra.Command{
		Use:          "coreos-cluster",
		Short:        "coreos-cluster clones, configures and boots a cluster of CoreOS virtual machines on vSphere",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := o.params(cmd.Flags())
			if err != nil {
				return err
			}
			if err := p.Validate(); err != nil {
				return err
			}

			log := ctrl.LoggerFrom(ctx).WithValues("server", p.Server, "datacenter", p.Datacenter)
			ctx := ctrl.LoggerInto(ctx, log)

			log.Info("Connecting to vCenter")
			s, err := connect(ctx, p)
			if err != nil {
				return err
			}
			runErr := run(ctx, s, p)
			if err := s.Logout(ctx); err != nil {
				log.Error(err, "Unable to log out of vCenter")
			}
			if runErr != nil {
				return runErr
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Cluster provisioning complete")
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&o.paramsFile, "params-file", "", "YAML file holding the parameters. Flags take precedence over its values.")
	fs.StringSliceVar(&o.p.Nodes, "node", nil, "Name of a node. Repeat or separate with commas.")
	fs.StringSliceVar(&o.p.Addresses, "address", nil, "Address of a node in CIDR notation, in the order of --node.")
	fs.StringVar(&o.p.Gateway, "gateway", "", "Default gateway of the nodes.")
	fs.StringVar(&o.p.DNS, "dns", "", "DNS server of the nodes.")
	fs.StringVar(&o.p.ConfigPayload, "config-payload", "", "File injected into every node as its CoreOS config. Skipped when the file does not exist.")
	fs.StringVar(&o.p.Server, "server", "", "vCenter URL. (can also be set via GOVC_URL env var)")
	fs.StringVar(&o.p.Username, "username", "", "vCenter username. (can also be set via GOVC_USERNAME env var)")
	fs.StringVar(&o.p.Password, "password", "", "vCenter password. (can also be set via GOVC_PASSWORD env var)")
	fs.StringVar(&o.p.Thumbprint, "thumbprint", "", "vCenter TLS thumbprint. Certificates are not verified when empty. (can also be set via VSPHERE_TLS_THUMBPRINT env var)")
	fs.BoolVar(&o.p.KeepAlive, "keep-alive", false, "Keep the vCenter session alive while waiting.")
	fs.StringVar(&o.p.Datacenter, "datacenter", "", "Datacenter of the cluster. Defaults to the only datacenter.")
	fs.StringVar(&o.p.Template, "template", "", "Name or instance UUID of the template to clone.")
	fs.StringVar(&o.p.Host, "host", "", "Host receiving new nodes. Mutually exclusive with --cluster.")
	fs.StringVar(&o.p.Cluster, "cluster", "", "Compute cluster receiving new nodes. Mutually exclusive with --host.")
	fs.StringVar(&o.p.Datastore, "datastore", "", "Datastore of new nodes. Mutually exclusive with --datastore-cluster.")
	fs.StringVar(&o.p.DatastoreCluster, "datastore-cluster", "", "Datastore cluster of new nodes. Mutually exclusive with --datastore.")
	fs.StringVar(&o.p.Folder, "folder", "", "VM folder of new nodes. Defaults to the datacenter VM folder.")
	fs.StringVar(&o.p.Namespace, "namespace", config.DefaultNamespace, "Prefix of the injected VMX keys.")
	fs.StringVar(&o.p.InterfaceName, "interface-name", config.DefaultInterfaceName, "Name of the primary network interface in the guest.")
	fs.StringVar(&o.p.InterfaceRole, "interface-role", config.DefaultInterfaceRole, "Role of the primary network interface.")
	fs.DurationVar(&o.p.TaskPollInterval.Duration, "task-poll-interval", config.DefaultTaskPollInterval, "Delay between two reads of the clone tasks.")
	fs.DurationVar(&o.p.TaskTimeout.Duration, "task-timeout", 0, "Maximum wait for the clone tasks. Zero waits forever.")
	fs.DurationVar(&o.p.ReadyPollInterval.Duration, "ready-poll-interval", config.DefaultReadyPollInterval, "Delay between two reads of the guest tools status.")
	fs.DurationVar(&o.p.ReadyTimeout.Duration, "ready-timeout", 0, "Maximum wait for a node to become ready. Zero waits forever.")

	klogFlags := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(klogFlags)
	cmd.PersistentFlags().AddGoFlagSet(klogFlags)

	return cmd
}

// params merges the params file, the flags that were set and the
// environment, in decreasing order of precedence: flags, file, environment.
func (o *options) params(fs *pflag.FlagSet) (*config.Params, error) {
	p := config.NewParams()
	if o.paramsFile != "" {
		var err error
		if p, err = config.Load(o.paramsFile); err != nil {
			return nil, err
		}
	}

	overrides := map[string]func(){
		"node":                func() { p.Nodes = o.p.Nodes },
		"address":             func() { p.Addresses = o.p.Addresses },
		"gateway":             func() { p.Gateway = o.p.Gateway },
		"dns":                 func() { p.DNS = o.p.DNS },
		"config-payload":      func() { p.ConfigPayload = o.p.ConfigPayload },
		"server":              func() { p.Server = o.p.Server },
		"username":            func() { p.Username = o.p.Username },
		"password":            func() { p.Password = o.p.Password },
		"thumbprint":          func() { p.Thumbprint = o.p.Thumbprint },
		"keep-alive":          func() { p.KeepAlive = o.p.KeepAlive },
		"datacenter":          func() { p.Datacenter = o.p.Datacenter },
		"template":            func() { p.Template = o.p.Template },
		"host":                func() { p.Host = o.p.Host },
		"cluster":             func() { p.Cluster = o.p.Cluster },
		"datastore":           func() { p.Datastore = o.p.Datastore },
		"datastore-cluster":   func() { p.DatastoreCluster = o.p.DatastoreCluster },
		"folder":              func() { p.Folder = o.p.Folder },
		"namespace":           func() { p.Namespace = o.p.Namespace },
		"interface-name":      func() { p.InterfaceName = o.p.InterfaceName },
		"interface-role":      func() { p.InterfaceRole = o.p.InterfaceRole },
		"task-poll-interval":  func() { p.TaskPollInterval = o.p.TaskPollInterval },
		"task-timeout":        func() { p.TaskTimeout = o.p.TaskTimeout },
		"ready-poll-interval": func() { p.ReadyPollInterval = o.p.ReadyPollInterval },
		"ready-timeout":       func() { p.ReadyTimeout = o.p.ReadyTimeout },
	}
	fs.Visit(func(f *pflag.Flag) {
		if override, ok := overrides[f.Name]; ok {
			override()
		}
	})

	p.Server = getOrDefault(p.Server, os.Getenv("GOVC_URL"))
	p.Username = getOrDefault(p.Username, os.Getenv("GOVC_USERNAME"))
	p.Password = getOrDefault(p.Password, os.Getenv("GOVC_PASSWORD"))
	p.Thumbprint = getOrDefault(p.Thumbprint, os.Getenv("VSPHERE_TLS_THUMBPRINT"))
	return p, nil
}

func getOrDefault(value, defaultValue string) string {
	if value != "" {
		return value
	}
	return defaultValue
}

func connect(ctx context.Context, p *config.Params) (*session.Session, error) {
	params := session.NewParams().
		WithServer(p.Server).
		WithDatacenter(p.Datacenter).
		WithThumbprint(p.Thumbprint)
	if p.Username != "" {
		params = params.WithUserInfo(p.Username, p.Password)
	}
	if p.KeepAlive {
		feature := session.DefaultFeature()
		feature.EnableKeepAlive = true
		params = params.WithFeatures(feature)
	}
	return session.Create(ctx, params)
}

func provision(ctx context.Context, s *session.Session, p *config.Params) error {
	pr, err := provisioner.New(ctx, s, p)
	if err != nil {
		return err
	}
	return pr.Run(ctx, p)
}

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

// Package datastore gives local access to files stored on a datastore.
package datastore

import (
	"context"
	"os"
	"path"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/vmware/govmomi/vim25/soap"
)

// Transfer moves single files between a datastore and the local disk.
// *object.Datastore implements it.
type Transfer interface {
	DownloadFile(ctx context.Context, path string, file string, param *soap.Download) error
	UploadFile(ctx context.Context, file string, path string, param *soap.Upload) error
}

// Mount is a named local working directory bound to a datastore. Only one
// Mount of a given name may be held at a time.
type Mount struct {
	name string
	dir  string
	ds   Transfer
}

// Acquire creates the working directory of the mount, replacing any stale
// directory of the same name left behind by an earlier run.
func Acquire(ds Transfer, name string) (*Mount, error) {
	dir := filepath.Join(os.TempDir(), name)
	if err := os.RemoveAll(dir); err != nil {
		return nil, errors.Wrapf(err, "unable to remove stale mount %q", dir)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrapf(err, "unable to create mount %q", dir)
	}
	return &Mount{name: name, dir: dir, ds: ds}, nil
}

// Dir returns the local working directory.
func (m *Mount) Dir() string {
	return m.dir
}

// Fetch copies a datastore file into the working directory and returns its
// local path.
func (m *Mount) Fetch(ctx context.Context, remotePath string) (string, error) {
	local := filepath.Join(m.dir, path.Base(remotePath))
	if err := m.ds.DownloadFile(ctx, remotePath, local, &soap.DefaultDownload); err != nil {
		return "", errors.Wrapf(err, "unable to download %q into mount %s", remotePath, m.name)
	}
	return local, nil
}

// Publish replaces a datastore file with a local file.
func (m *Mount) Publish(ctx context.Context, localPath, remotePath string) error {
	if err := m.ds.UploadFile(ctx, localPath, remotePath, &soap.DefaultUpload); err != nil {
		return errors.Wrapf(err, "unable to upload %q from mount %s", remotePath, m.name)
	}
	return nil
}

// Release removes the working directory.
func (m *Mount) Release() error {
	return os.RemoveAll(m.dir)
}

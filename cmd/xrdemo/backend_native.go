//go:build linux || android || darwin

package main

import (
	"github.com/Faultbox/xrkit/internal/config"
	"github.com/Faultbox/xrkit/pkg/openxr/loader"
)

// newNativeBackend opens the platform's OpenXR loader and records the
// extension requests. Instance and session creation belong to the embedding
// application; until BindSession runs every extension reports unavailable.
func newNativeBackend(cfg *config.Config) (*loader.Backend, error) {
	backend, err := loader.New(cfg.XR.RuntimeLib)
	if err != nil {
		return nil, err
	}
	for _, ext := range extensions(cfg) {
		backend.RequestExt(ext)
	}
	return backend, nil
}

//go:build !linux && !android && !darwin

package main

import (
	"errors"

	"github.com/Faultbox/xrkit/internal/config"
	"github.com/Faultbox/xrkit/pkg/openxr"
)

func newNativeBackend(*config.Config) (openxr.Backend, error) {
	return nil, errors.New("native openxr backend not supported on this platform")
}

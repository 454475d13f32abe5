// Package main is the desktop demo for the XR extension subsystems: it
// drives every subsystem against the emulated runtime (or a native OpenXR
// loader) inside an SDL window.
package main

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/xrkit/internal/config"
	"github.com/Faultbox/xrkit/internal/logger"
	"github.com/Faultbox/xrkit/internal/sim"
	"github.com/Faultbox/xrkit/pkg/input"
	"github.com/Faultbox/xrkit/pkg/openxr"
	"github.com/Faultbox/xrkit/pkg/openxr/depthtex"
	"github.com/Faultbox/xrkit/pkg/openxr/framework"
	"github.com/Faultbox/xrkit/pkg/openxr/refreshrate"
	"github.com/Faultbox/xrkit/pkg/openxr/rendermodel"
	"github.com/Faultbox/xrkit/pkg/openxr/simhands"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== xrkit demo ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if err := run(cfg); err != nil {
		logger.Err("demo error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("demo closed normally")
}

func extensions(cfg *config.Config) []string {
	if len(cfg.XR.Extensions) > 0 {
		return cfg.XR.Extensions
	}
	return []string{
		refreshrate.ExtName,
		rendermodel.ExtName,
		simhands.ExtName,
		depthtex.ExtName,
	}
}

func run(cfg *config.Config) error {
	backend, cleanup, err := newBackend(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	window, err := sim.NewWindow(sim.WindowConfig{
		Title:  "xrkit demo",
		Width:  cfg.Graphics.Width,
		Height: cfg.Graphics.Height,
		VSync:  cfg.Graphics.VSync,
	})
	if err != nil {
		return err
	}
	defer window.Close()

	state := &input.State{}
	poller := sim.NewPoller(state)
	defer poller.Close()

	// One-shot subsystem demos before the frame loop starts.
	refreshrate.Probe(backend, cfg.XR.RefreshRateCandidates, true)
	if simhands.Resume(backend, true) {
		defer simhands.Pause(backend, true)
	}
	demoDepth(backend, cfg)

	host := framework.New(backend, state)
	defer host.Shutdown()

	stepper := rendermodel.NewStepper()
	stepper.LeftControllerModelPath = cfg.XR.LeftControllerPath
	stepper.RightControllerModelPath = cfg.XR.RightControllerPath
	stepper.WithAnimation = cfg.XR.WithAnimation
	host.SendEvent(framework.Add("render-model", stepper))
	host.SendEvent(framework.NewEvent("main", rendermodel.DrawController, "true"))

	const frame = time.Second / 72
	for {
		start := time.Now()
		if !poller.Update() {
			return nil
		}
		if !host.Step(framework.NewToken()) {
			return nil
		}
		window.SwapBuffers()
		if d := time.Since(start); d < frame {
			time.Sleep(frame - d)
		}
	}
}

// newBackend builds the configured backend. The sim backend owns a full
// emulated runtime; the native backend resolves against the platform's
// OpenXR loader and stays degraded until a session is bound.
func newBackend(cfg *config.Config) (openxr.Backend, func(), error) {
	switch cfg.XR.Backend {
	case "", "sim":
		rt := sim.NewRuntime()
		backend := sim.NewBackend(rt)
		for _, ext := range extensions(cfg) {
			backend.RequestExt(ext)
		}
		backend.StartSession()
		return backend, func() {}, nil
	case "runtime":
		backend, err := newNativeBackend(cfg)
		if err != nil {
			return nil, nil, err
		}
		return backend, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown xr backend %q", cfg.XR.Backend)
	}
}

func parseResolution(name string) depthtex.Resolution {
	switch name {
	case "quarter":
		return depthtex.ResolutionQuarter
	case "full":
		return depthtex.ResolutionFull
	default:
		return depthtex.ResolutionHalf
	}
}

// demoDepth exercises the depth-texture subsystem end to end: resolution
// enumeration, one texture acquire/release cycle and one swapchain frame.
func demoDepth(backend openxr.Backend, cfg *config.Config) {
	ext, err := depthtex.New(backend)
	if err != nil {
		logger.Warn("depth texture extension not available", zap.Error(err))
		return
	}
	if !ext.SupportsDepthTracking(true) {
		return
	}

	resolutions, err := ext.EnumerateResolutions()
	if err != nil {
		logger.Err("enumerating depth resolutions", zap.Error(err))
		return
	}
	for _, r := range resolutions {
		w, h := r.Dimensions()
		logger.Info("depth resolution", zap.Stringer("tag", r), zap.Uint32("width", w), zap.Uint32("height", h))
	}

	res := parseResolution(cfg.XR.DepthResolution)
	width, height := res.Dimensions()

	texInfo := depthtex.NewTextureCreateInfo(width, height, depthtex.SurfaceOriginTopLeft)
	tex, err := ext.CreateTexture(&texInfo)
	if err != nil {
		logger.Err("creating depth texture", zap.Error(err))
		return
	}
	if surface, err := ext.AcquireTexture(tex); err == nil {
		logger.Diag("depth surface acquired", zap.Uintptr("surface", uintptr(surface.Surface)))
		if err := ext.ReleaseTexture(tex); err != nil {
			logger.Err("releasing depth texture", zap.Error(err))
		}
	} else {
		logger.Err("acquiring depth texture", zap.Error(err))
	}
	if err := ext.DestroyTexture(tex); err != nil {
		logger.Err("destroying depth texture", zap.Error(err))
	}

	scInfo := depthtex.NewSwapchainCreateInfo(res,
		depthtex.SwapchainCreateSmoothDepth|depthtex.SwapchainCreateRawDepth)
	sc, err := ext.CreateSwapchain(&scInfo)
	if err != nil {
		logger.Err("creating depth swapchain", zap.Error(err))
		return
	}
	defer func() {
		if err := ext.DestroySwapchain(sc); err != nil {
			logger.Err("destroying depth swapchain", zap.Error(err))
		}
	}()

	images, err := ext.EnumerateImages(sc)
	if err != nil {
		logger.Err("enumerating depth swapchain images", zap.Error(err))
		return
	}
	index, err := ext.AcquireImage(sc)
	if err != nil {
		logger.Err("acquiring depth swapchain image", zap.Error(err))
		return
	}
	logger.Info("depth swapchain ready", zap.Int("images", len(images)), zap.Uint32("acquired", index))
}

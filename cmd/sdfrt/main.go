package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/gekko3d/sdfrt"
	"github.com/gekko3d/sdfrt/rt/app"
	"github.com/gekko3d/sdfrt/rt/core"
	"github.com/gekko3d/sdfrt/rt/render"
	"github.com/gekko3d/sdfrt/rt/shaders"
	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	cfg := sdfrt.DefaultConfig()
	cfg.BindFlags(flag.CommandLine)
	emitWGSL := flag.Bool("emit-wgsl", false, "print the preprocessed raymarch kernel and exit")
	layoutTable := flag.Bool("layout", false, "print the SceneData offset table and exit")
	spirvOut := flag.String("spirv", "", "compile the raymarch kernel to SPIR-V at this path and exit")
	raysOut := flag.String("rays", "", "write a CPU ray-direction image (BMP) at this path and exit")
	flag.Parse()

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger := sdfrt.NewDefaultLogger("sdfrt", cfg.Debug)

	switch {
	case *emitWGSL:
		src, err := shaders.RaymarchSource()
		if err != nil {
			fail(logger, err)
		}
		fmt.Print(src)
		return
	case *layoutTable:
		fmt.Print(core.SceneDataLayout().Table())
		return
	case *spirvOut != "":
		if err := writeSPIRV(*spirvOut); err != nil {
			fail(logger, err)
		}
		logger.Infof("wrote %s", *spirvOut)
		return
	case *raysOut != "":
		if err := writeRays(cfg, *raysOut); err != nil {
			fail(logger, err)
		}
		logger.Infof("wrote %s", *raysOut)
		return
	}

	runViewer(cfg, logger)
}

func fail(logger sdfrt.Logger, err error) {
	logger.Errorf("%v", err)
	os.Exit(1)
}

func writeSPIRV(path string) error {
	src, err := shaders.RaymarchSource()
	if err != nil {
		return err
	}
	spirv, err := shaders.CompileSPIRV(src)
	if err != nil {
		return err
	}
	return os.WriteFile(path, spirv, 0o644)
}

func writeRays(cfg sdfrt.Config, path string) error {
	res := core.Resolution{Width: uint32(cfg.WindowWidth), Height: uint32(cfg.WindowHeight)}
	sd := render.NewState(cfg).BuildFrame(res, 0)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := core.WriteBMP(f, core.RayImage(sd, res)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func runViewer(cfg sdfrt.Config, logger sdfrt.Logger) {
	if err := glfw.Init(); err != nil {
		panic(err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	window, err := glfw.CreateWindow(cfg.WindowWidth, cfg.WindowHeight, cfg.WindowTitle, nil, nil)
	if err != nil {
		panic(err)
	}
	defer window.Destroy()

	application := app.NewApp(window, cfg, logger)
	if err := application.Init(); err != nil {
		panic(err)
	}
	defer application.Release()

	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		application.Resize(width, height)
	})
	window.SetCursorPosCallback(func(w *glfw.Window, xpos, ypos float64) {
		application.HandleCursor(xpos, ypos)
	})
	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		application.HandleKey(key, action)
	})

	ctx := context.Background()
	for !window.ShouldClose() {
		glfw.PollEvents()
		application.Update()
		application.Render(ctx)
	}
}

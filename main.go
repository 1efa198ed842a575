package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/achilleasa/vista/cmd"
	"github.com/urfave/cli"
)

func init() {
	// glfw requires window calls to be made from the main thread.
	runtime.LockOSThread()
}

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	sceneFlags := []cli.Flag{
		cli.StringFlag{
			Name:  "scene, s",
			Usage: "load scene definition from a local file or URL instead of the built-in scene",
		},
		cli.StringFlag{
			Name:   "assets",
			Value:  ".",
			Usage:  "local folder or URL to resolve the built-in scene assets against",
			EnvVar: "VISTA_ASSETS",
		},
	}
	frameFlags := []cli.Flag{
		cli.IntFlag{
			Name:  "width",
			Value: 800,
			Usage: "frame width",
		},
		cli.IntFlag{
			Name:  "height",
			Value: 600,
			Usage: "frame height",
		},
		cli.IntFlag{
			Name:  "fps",
			Value: 60,
			Usage: "target frame rate",
		},
		cli.IntFlag{
			Name:  "frames",
			Value: 0,
			Usage: "stop after rendering this many frames; 0 renders until interrupted",
		},
	}
	orbitFlag := cli.Float64Flag{
		Name:  "orbit",
		Value: 0,
		Usage: "orbit the camera around its target at this speed in degrees per second",
	}

	app := cli.NewApp()
	app.Name = "vista"
	app.Usage = "interactive scene viewer with a self-resizing render loop"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.StringFlag{
			Name:   "log-level",
			Usage:  "set log level (error, warning, notice, info, debug)",
			EnvVar: "VISTA_LOG_LEVEL",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "run",
			Usage: "render scene in a window",
			Description: `
Open a window and render the scene. The backbuffer follows the window
framebuffer size and the camera projection is updated whenever the window
is resized.

Drag objects with the left mouse button or orbit the camera by dragging the
background. Press escape to exit.`,
			Flags:  append(append([]cli.Flag{}, sceneFlags...), frameFlags...),
			Action: cmd.RunWindow,
		},
		{
			Name:  "headless",
			Usage: "render scene without a display",
			Description: `
Render the scene to an in-memory frame at a fixed rate. When the render loop
ends, the last frame can be saved as a PNG image.`,
			Flags: append(append(append([]cli.Flag{}, sceneFlags...), frameFlags...),
				orbitFlag,
				cli.StringFlag{
					Name:  "out, o",
					Usage: "save the last frame as a PNG image",
				},
			),
			Action: cmd.RunHeadless,
		},
		{
			Name:  "snapshot",
			Usage: "render frames as fast as possible and save the last one",
			Flags: append(append(append([]cli.Flag{}, sceneFlags...), frameFlags...),
				orbitFlag,
				cli.StringFlag{
					Name:  "out, o",
					Value: "frame.png",
					Usage: "image filename for the rendered frame",
				},
			),
			Action: cmd.RenderSnapshot,
		},
		{
			Name:      "inspect",
			Usage:     "display information about a wavefront model or material library",
			ArgsUsage: "model.obj|library.mtl",
			Action:    cmd.InspectModel,
		},
		{
			Name:   "scene",
			Usage:  "print the effective scene definition as YAML",
			Flags:  sceneFlags,
			Action: cmd.ShowScene,
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err.Error())
		os.Exit(1)
	}
}

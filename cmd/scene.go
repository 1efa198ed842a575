package cmd

import (
	"bytes"
	"strings"

	"github.com/achilleasa/vista/asset"
	"github.com/achilleasa/vista/scene"
	"github.com/urfave/cli"
)

// Load the scene selected by the --scene flag or the embedded default scene.
// The returned resource is the base for resolving relative asset paths; its
// stream has already been consumed.
func loadScene(ctx *cli.Context) (*scene.Config, *asset.Resource, error) {
	if scenePath := ctx.String("scene"); scenePath != "" {
		logger.Noticef(`loading scene from "%s"`, scenePath)
		res, err := asset.NewResource(scenePath, nil)
		if err != nil {
			return nil, nil, err
		}
		defer res.Close()

		cfg, err := scene.Load(res)
		if err != nil {
			return nil, nil, err
		}
		return cfg, res, nil
	}

	return scene.Default(), defaultSceneResource(ctx.String("assets")), nil
}

// Get a resource that resolves the assets of the embedded scene against assetsDir.
func defaultSceneResource(assetsDir string) *asset.Resource {
	if assetsDir == "" {
		assetsDir = "."
	}
	return asset.NewResourceFromStream(
		strings.TrimSuffix(assetsDir, "/")+"/"+scene.DefaultSceneName,
		bytes.NewReader(scene.DefaultDocument()),
	)
}

// Print the effective scene definition.
func ShowScene(ctx *cli.Context) error {
	setupLogging(ctx)

	cfg, _, err := loadScene(ctx)
	if err != nil {
		return err
	}

	data, err := cfg.Marshal()
	if err != nil {
		return err
	}

	_, err = ctx.App.Writer.Write(data)
	return err
}

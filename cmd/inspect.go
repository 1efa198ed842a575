package cmd

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/achilleasa/vista/asset"
	"github.com/achilleasa/vista/asset/wavefront"
	"github.com/urfave/cli"
)

// Display information about a wavefront model or material library.
func InspectModel(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing model or material library argument")
	}

	res, err := asset.NewResource(ctx.Args().First(), nil)
	if err != nil {
		return err
	}
	defer res.Close()

	var summary *wavefront.Summary
	if strings.ToLower(filepath.Ext(res.Path())) == ".mtl" {
		summary, err = wavefront.ScanMaterials(res)
	} else {
		summary, err = wavefront.Scan(res)
	}
	if err != nil {
		return err
	}

	logger.Noticef("model information:\n%s", summary.Table())
	return nil
}

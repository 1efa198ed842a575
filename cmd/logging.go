package cmd

import (
	"github.com/achilleasa/vista/log"
	"github.com/urfave/cli"
)

var logger = log.New("vista")

func setupLogging(ctx *cli.Context) {
	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}

	if levelName := ctx.GlobalString("log-level"); levelName != "" {
		level, err := log.ParseLevel(levelName)
		if err != nil {
			logger.Warningf("%s; keeping level %s", err.Error(), log.ActiveLevel())
			return
		}
		log.SetLevel(level)
	}
}

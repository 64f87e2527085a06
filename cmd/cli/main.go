package main

import (
	"context"
	"log"
	"os"

	"github.com/mpetrenko/shiftnotes/internal/buildinfo"
	"github.com/mpetrenko/shiftnotes/internal/client/cli"
	"github.com/mpetrenko/shiftnotes/internal/client/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := cli.NewApp(cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}

package main

import (
	"github.com/DMQQ/movie-picker-server/internal/app"
	"github.com/DMQQ/movie-picker-server/internal/config"
)

func main() {
	app.Go(config.Load())
}

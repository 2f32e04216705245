package main

import (
	"github.com/arvenlabs/billing-svc/internal/app"
	"github.com/arvenlabs/billing-svc/internal/config"
)

func main() {
	config.MustInit()
	app.MustNewApp().Run()
}

package main

import (
	"context"
	"errors"
	"log"
	"os"

	"canteen/internal/app"
	"canteen/internal/app/core"
	"canteen/internal/xpkg/logger"
)

func main() {
	mylog, err := logger.New(os.Getenv("LOG_LEVEL"))
	if err != nil {
		log.Fatalf("log error: %v", err)
	}
	mylog = mylog.Service("canteen")

	mylog.Action("canteen_started").Info("Successfully started")
	if err := app.Execute(context.Background(), mylog, os.Args[1:]); err != nil {
		if !errors.Is(err, core.ErrHelp) {
			mylog.Action("canteen_failed").Error("Error in canteen service", err)
			os.Exit(1)
		}
		return
	}
	mylog.Action("canteen_completed").Info("Successfully completed")
}

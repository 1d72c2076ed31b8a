// Command mockapi serves the Gyaan Buddy REST API from in-memory fixtures for local development.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	echoapi "github.com/trezcool/gyaanbuddy/apps/mockapi/echo"
	"github.com/trezcool/gyaanbuddy/core"
	emailsvc "github.com/trezcool/gyaanbuddy/services/email"
	logsvc "github.com/trezcool/gyaanbuddy/services/logger"
)

const shutdownTimeout = 5 * time.Second

func main() {
	// =========================================================================
	// Set up Dependencies

	conf, err := core.NewConfig()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger := logsvc.NewRollbarLogger(logsvc.NewConsoleWriter(os.Stdout), conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")

	logger.Info(fmt.Sprintf("Mock API initializing : version %q", conf.Build))
	defer logger.Info("Mock API stopped")

	// =========================================================================
	// Start Mock API Service

	server, err := echoapi.NewServer(echoapi.Options{
		Conf:   conf,
		Logger: logger,
		Mailer: emailsvc.NewConsoleService(conf, logger, os.Stdout),
		Prefix: echoapi.PrefixOf(conf.API.BaseURL),
		Delay:  conf.Mock.Delay,
	})
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up mock API: %v", err), err)
	}

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

// Command admin administers a Gyaan Buddy school from the terminal.
package main

import (
	"fmt"
	"os"

	"github.com/trezcool/gyaanbuddy/apps/dashboard"
	"github.com/trezcool/gyaanbuddy/core"
)

func main() {
	conf, err := core.NewConfig()
	errAndDie(err)

	app, err := dashboard.New(dashboard.Options{Conf: conf})
	errAndDie(err)

	// start CLI
	cli := commandLine{app: app, out: os.Stdout}
	err = cli.run(os.Args)
	if cErr := app.Close(); cErr != nil {
		app.Logger.Error("closing app", cErr)
	}
	if err != nil {
		if err != errHelp {
			fmt.Fprintf(os.Stderr, "error: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}

// Command wink is a command-line client for the Wink API.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	wink "github.com/tj-smith47/wink-go"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := newApp(os.Stdout, logrus.StandardLogger())

	err := app.RunContext(ctx, os.Args)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logrus.Info("Interrupted")
			return
		}
		se := wink.ServiceError(err)
		logrus.WithFields(logrus.Fields{
			"category":  se.Category,
			"code":      se.Code,
			"text_code": se.TextCode,
		}).Fatal(err)
	}
}

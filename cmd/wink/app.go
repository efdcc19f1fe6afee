package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	wink "github.com/tj-smith47/wink-go"
	"github.com/urfave/cli/v2"
)

// runner carries state shared by the commands of one invocation.
type runner struct {
	out    io.Writer
	log    *logrus.Logger
	cfg    *config
	client *wink.Client
}

func newApp(out io.Writer, log *logrus.Logger) *cli.App {
	r := &runner{out: out, log: log}

	return &cli.App{
		Name:  "wink",
		Usage: "Talk to the Wink home-automation API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "Path to YAML config (default $HOME/.config/wink/config.yaml)",
				EnvVars: []string{"WINK_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "client-id",
				Usage:   "OAuth client ID",
				EnvVars: []string{"WINK_CLIENT_ID"},
			},
			&cli.StringFlag{
				Name:    "client-secret",
				Usage:   "OAuth client secret",
				EnvVars: []string{"WINK_CLIENT_SECRET"},
			},
			&cli.StringFlag{
				Name:    "username",
				Usage:   "Account username",
				EnvVars: []string{"WINK_USERNAME"},
			},
			&cli.StringFlag{
				Name:    "password",
				Usage:   "Account password",
				EnvVars: []string{"WINK_PASSWORD"},
			},
			&cli.StringFlag{
				Name:    "base-url",
				Usage:   "API origin",
				EnvVars: []string{"WINK_BASE_URL"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Level of logging",
				Value:   "info",
				EnvVars: []string{"WINK_LOG_LEVEL"},
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Usage:   "Timeout for each API request",
				EnvVars: []string{"WINK_TIMEOUT"},
			},
		},

		Before: func(c *cli.Context) error {
			level, err := logrus.ParseLevel(c.String("log-level"))
			if err != nil {
				return err
			}
			r.log.SetLevel(level)

			if r.cfg, err = resolveConfig(c); err != nil {
				return err
			}

			r.client, err = wink.NewClient(r.cfg.Credentials,
				wink.WithBaseURL(r.cfg.BaseURL),
				wink.WithTimeout(r.cfg.Timeout),
				wink.WithLogger(wink.NewLogrusLogger(r.log)),
			)
			return err
		},

		Commands: r.commands(),
	}
}

func (r *runner) commands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "login",
			Usage: "Log in and print the OAuth token",
			Action: r.authed(func(ctx context.Context, c *cli.Context) (any, error) {
				return r.client.Session().Token(), nil
			}),
		},
		{
			Name:  "user",
			Usage: "Show the account",
			Action: r.authed(func(ctx context.Context, c *cli.Context) (any, error) {
				return r.client.GetUser(ctx)
			}),
		},
		{
			Name:      "set-user",
			Usage:     "Update the account",
			ArgsUsage: "<json>",
			Action: r.authed(func(ctx context.Context, c *cli.Context) (any, error) {
				props, err := jsonArg(c, 0)
				if err != nil {
					return nil, err
				}
				return r.client.SetUser(ctx, props)
			}),
		},
		{
			Name:  "devices",
			Usage: "List devices",
			Action: r.authed(func(ctx context.Context, c *cli.Context) (any, error) {
				return r.client.GetDevices(ctx)
			}),
		},
		{
			Name:      "device",
			Usage:     "Show one device",
			ArgsUsage: "<type> <id>",
			Action: r.authed(func(ctx context.Context, c *cli.Context) (any, error) {
				device, err := deviceArg(c)
				if err != nil {
					return nil, err
				}
				return r.client.GetDevice(ctx, device)
			}),
		},
		{
			Name:      "set-device",
			Usage:     "Update one device",
			ArgsUsage: "<type> <id> <json>",
			Action: r.authed(func(ctx context.Context, c *cli.Context) (any, error) {
				device, err := deviceArg(c)
				if err != nil {
					return nil, err
				}
				props, err := jsonArg(c, 2)
				if err != nil {
					return nil, err
				}
				return r.client.SetDevice(ctx, device, props)
			}),
		},
		{
			Name:  "icons",
			Usage: "List icons",
			Action: r.authed(func(ctx context.Context, c *cli.Context) (any, error) {
				return r.client.GetIcons(ctx)
			}),
		},
		{
			Name:  "channels",
			Usage: "List channels",
			Action: r.authed(func(ctx context.Context, c *cli.Context) (any, error) {
				return r.client.GetChannels(ctx)
			}),
		},
		{
			Name:  "services",
			Usage: "List linked services",
			Action: r.authed(func(ctx context.Context, c *cli.Context) (any, error) {
				return r.client.GetServices(ctx)
			}),
		},
		{
			Name:      "new-service",
			Usage:     "Link a service",
			ArgsUsage: "<json>",
			Action: r.authed(func(ctx context.Context, c *cli.Context) (any, error) {
				props, err := jsonArg(c, 0)
				if err != nil {
					return nil, err
				}
				return r.client.NewService(ctx, props)
			}),
		},
		{
			Name:      "trigger",
			Usage:     "Show a trigger",
			ArgsUsage: "<id>",
			Action: r.authed(func(ctx context.Context, c *cli.Context) (any, error) {
				if c.NArg() < 1 {
					return nil, fmt.Errorf("missing trigger id")
				}
				return r.client.GetTrigger(ctx, c.Args().Get(0))
			}),
		},
		{
			Name:      "set-trigger",
			Usage:     "Update a trigger",
			ArgsUsage: "<id> <json>",
			Action: r.authed(func(ctx context.Context, c *cli.Context) (any, error) {
				if c.NArg() < 1 {
					return nil, fmt.Errorf("missing trigger id")
				}
				props, err := jsonArg(c, 1)
				if err != nil {
					return nil, err
				}
				return r.client.SetTrigger(ctx, c.Args().Get(0), props)
			}),
		},
		{
			Name:  "dial-templates",
			Usage: "List dial templates",
			Action: r.authed(func(ctx context.Context, c *cli.Context) (any, error) {
				return r.client.GetDialTemplates(ctx)
			}),
		},
		{
			Name:      "raw",
			Usage:     "Send an arbitrary request and print the response body",
			ArgsUsage: "<method> <path> [json]",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "no-auth",
					Usage: "Skip logging in first",
				},
			},
			Action: r.raw,
		},
	}
}

// authed logs in with the configured credentials, runs fn and prints its
// result.
func (r *runner) authed(fn func(ctx context.Context, c *cli.Context) (any, error)) cli.ActionFunc {
	return func(c *cli.Context) error {
		if err := r.client.Login(c.Context, "", ""); err != nil {
			return err
		}
		v, err := fn(c.Context, c)
		if err != nil {
			return err
		}
		return r.print(v)
	}
}

func (r *runner) raw(c *cli.Context) error {
	if c.NArg() < 2 {
		return fmt.Errorf("usage: raw <method> <path> [json]")
	}
	method := strings.ToUpper(c.Args().Get(0))
	path := c.Args().Get(1)

	var payload any
	if c.NArg() > 2 {
		p, err := jsonArg(c, 2)
		if err != nil {
			return err
		}
		payload = p
	}

	if !c.Bool("no-auth") {
		if err := r.client.Login(c.Context, "", ""); err != nil {
			return err
		}
	}

	resp, err := r.client.Invoke(c.Context, method, path, payload)
	if resp != nil {
		if perr := r.print(resp.Body); perr != nil {
			return perr
		}
	}
	return err
}

// print writes v as indented JSON.
func (r *runner) print(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(r.out, string(data))
	return err
}

// jsonArg returns argument i, which must be valid JSON.
func jsonArg(c *cli.Context, i int) (json.RawMessage, error) {
	if c.NArg() <= i {
		return nil, fmt.Errorf("missing JSON argument")
	}
	arg := c.Args().Get(i)
	if !json.Valid([]byte(arg)) {
		return nil, fmt.Errorf("argument %d is not valid JSON: %s", i+1, arg)
	}
	return json.RawMessage(arg), nil
}

// deviceArg builds a device reference from <type> <id>.
func deviceArg(c *cli.Context) (*wink.Device, error) {
	if c.NArg() < 2 {
		return nil, fmt.Errorf("missing device type or id")
	}
	typ, id := c.Args().Get(0), c.Args().Get(1)
	return &wink.Device{
		ID:   id,
		Type: typ,
		Path: "/" + typ + "s/" + id,
	}, nil
}

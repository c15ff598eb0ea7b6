package main

import (
	"encoding/json"
	"fmt"
	"os"

	"hybrid/app"
	"hybrid/config"
	"hybrid/log"
	"hybrid/models"
	"hybrid/token"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli"
)

const (
	flagConfig   = "config"
	flagHost     = "host"
	flagIdentity = "identity"
	flagToken    = "token"
	flagSecret   = "secret"
)

//nolint:gochecknoglobals
var (
	build   = "n/a"
	version = "n/a"
)

func main() {
	config.App.Build = build
	config.App.Version = version

	newApp := cli.NewApp()
	newApp.Usage = "A " + config.ServiceName + " service"
	newApp.Version = config.App.Version + ":" + config.App.Build
	newApp.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  flagConfig + ", c",
			Value: "./config.yaml",
		},
	}
	newApp.Commands = []cli.Command{
		{
			Name:   "serve",
			Usage:  "starts " + config.ServiceName + " workers",
			Action: serveAction,
		},
		{
			Name:  "mint-token",
			Usage: "prints an x-sakai-token signed with the secret shared with --host",
			Flags: []cli.Flag{
				cli.StringFlag{Name: flagHost, Usage: "hostname of the shared secret"},
				cli.StringFlag{Name: flagIdentity, Usage: "identity to assert"},
			},
			Action: mintTokenAction,
		},
		{
			Name:  "verify-token",
			Usage: "checks an x-sakai-token against a secret",
			Flags: []cli.Flag{
				cli.StringFlag{Name: flagToken, Usage: "token to check"},
				cli.StringFlag{Name: flagSecret, Usage: "shared secret", EnvVar: "HYBRID_SHARED_SECRET"},
			},
			Action: verifyTokenAction,
		},
	}

	if err := newApp.Run(os.Args); err != nil {
		fmt.Println("failed run newApp:", err.Error())
		os.Exit(1)
	}
}

func serveAction(c *cli.Context) error {
	cfg, err := config.ReadConfig(c.GlobalString(flagConfig))
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	logger := log.New(cfg.Log)

	components, err := app.NewComponents(logger, cfg, prometheus.NewRegistry())
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	chief := app.InitChief(logger, cfg, components)
	chief.Run()

	if err := components.Close(); err != nil {
		logger.Warn().Err(err).Msg("unable to close components")
	}
	return nil
}

func mintTokenAction(c *cli.Context) error {
	cfg, err := config.ReadConfig(c.GlobalString(flagConfig))
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	codec := token.NewCodec(token.Secrets(cfg.SecretMap()))
	tok, err := codec.Create(c.String(flagHost), c.String(flagIdentity))
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	fmt.Println(tok)
	return nil
}

func verifyTokenAction(c *cli.Context) error {
	res := models.TokenCheck{}

	identity, err := token.NewCodec(nil).Validate(c.String(flagToken), c.String(flagSecret))
	switch {
	case err != nil:
		res.Error = err.Error()
	case identity == "":
		res.Error = "no token"
	default:
		res.Valid = true
		res.Identity = identity
	}

	raw, _ := json.MarshalIndent(res, "", "  ")
	fmt.Println(string(raw))
	if !res.Valid {
		return cli.NewExitError("", 2)
	}
	return nil
}

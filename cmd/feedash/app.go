package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"

	"github.com/yigit/schooladmin/internal/client/api"
	"github.com/yigit/schooladmin/internal/client/service"
	"github.com/yigit/schooladmin/internal/config"
	"github.com/yigit/schooladmin/internal/pkg/logger"
)

// env carries what every command needs, built once in Before
type env struct {
	cfg    *config.Config
	repo   *api.Repository
	logger zerolog.Logger
	out    io.Writer
}

const envKey = "feedash.env"

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:      "feedash",
		Usage:     "inspect fees, classes, payments and wallets of the school admin API",
		Writer:    out,
		ErrWriter: os.Stderr,
		// main reports errors and picks the exit code
		ExitErrHandler: func(*cli.Context, error) {},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "configs/config.yaml",
				Usage:   "path to the config file",
				EnvVars: []string{"CONFIG_PATH"},
			},
			&cli.StringFlag{
				Name:    "base-url",
				Usage:   "API base URL, overrides client.base_url",
				EnvVars: []string{"FEEDASH_BASE_URL"},
			},
			&cli.StringFlag{
				Name:    "token",
				Usage:   "bearer token, overrides client.token",
				EnvVars: []string{"FEEDASH_TOKEN"},
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "disable logging",
			},
		},
		Before: func(c *cli.Context) error {
			e, err := buildEnv(c, out)
			if err != nil {
				return err
			}
			c.App.Metadata = map[string]interface{}{envKey: e}
			return nil
		},
		Commands: []*cli.Command{
			tokenCommand(),
			feeTypesCommand(),
			dashboardCommand(),
			feeSummaryCommand(),
			classesCommand(),
			divisionsCommand(),
			paymentsCommand(),
			walletCommand(),
		},
	}
}

func buildEnv(c *cli.Context, out io.Writer) (*env, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	level := logger.ParseLevel(cfg.Logging.Level)
	if c.Bool("quiet") {
		level = logger.DisabledLevel
	}
	logCfg := logger.Config{Level: level, Pretty: true, Output: os.Stderr}
	logger.Configure(logCfg)

	baseURL := cfg.Client.BaseURL
	if v := c.String("base-url"); v != "" {
		baseURL = v
	}
	token := cfg.Client.Token
	if v := c.String("token"); v != "" {
		token = v
	}
	// LoadConfig has already validated the timeout
	timeout, _ := time.ParseDuration(cfg.Client.Timeout)

	return &env{
		cfg:    cfg,
		repo:   api.NewRepository(api.Config{BaseURL: baseURL, Token: token, Timeout: timeout}),
		logger: logger.New(logCfg),
		out:    out,
	}, nil
}

func getEnv(c *cli.Context) *env {
	return c.App.Metadata[envKey].(*env)
}

// unwrap turns a failed Result into a command error and logs any warning
func unwrap[T any](e *env, r service.Result[T]) (T, error) {
	if !r.Success {
		var zero T
		return zero, cli.Exit(r.Error, 1)
	}
	if r.Message != "" {
		e.logger.Warn().Msg(r.Message)
	}
	return r.Data, nil
}

func parseAmount(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, errors.New("amount is required")
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	return d, nil
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

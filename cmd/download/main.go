package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rxtech-lab/argo-quant/internal/logger"
	"github.com/rxtech-lab/argo-quant/internal/version"
	"github.com/rxtech-lab/argo-quant/pkg/marketdata"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// downloadConfig builds the download from --config when given, otherwise from the flags.
func downloadConfig(cmd *cli.Command) (marketdata.DownloadConfig, error) {
	if path := cmd.String("config"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return marketdata.DownloadConfig{}, fmt.Errorf("failed to read config: %w", err)
		}

		// api_key: ${POLYGON_API_KEY} keeps the key out of the file
		return marketdata.ParseDownloadConfig([]byte(os.ExpandEnv(string(data))))
	}

	config := marketdata.DownloadConfig{
		Provider:  marketdata.ProviderType(cmd.String("provider")),
		Ticker:    cmd.String("ticker"),
		StartDate: cmd.Timestamp("start").Format(time.DateOnly),
		EndDate:   cmd.Timestamp("end").Format(time.DateOnly),
		Interval:  cmd.String("interval"),
		APIKey:    os.Getenv("POLYGON_API_KEY"),
	}

	return config, config.Validate()
}

func progressReporter() func(current, total float64, message string) {
	var bar *progressbar.ProgressBar

	return func(current, total float64, message string) {
		if bar == nil {
			bar = progressbar.NewOptions64(int64(total),
				progressbar.OptionSetDescription("Downloading"),
				progressbar.OptionShowElapsedTimeOnFinish(),
				progressbar.OptionSetPredictTime(true),
				progressbar.OptionClearOnFinish())
		}

		bar.Describe(message)
		_ = bar.Set64(int64(current))
	}
}

func downloadAction(ctx context.Context, cmd *cli.Command) error {
	config, err := downloadConfig(cmd)
	if err != nil {
		return err
	}

	log, err := logger.NewLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	params, err := config.ToDownloadParams()
	if err != nil {
		return err
	}

	client, err := marketdata.NewClient(config.ToClientConfig(cmd.String("data")), log)
	if err != nil {
		return fmt.Errorf("failed to create market data client: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	path, err := client.Download(ctx, params, progressReporter())
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}

	log.Info("Download completed", zap.String("path", path))

	return nil
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "download",
		Version: version.GetVersion(),
		Usage:   "Download historical market data into a parquet file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Download `YAML` config; replaces the other flags",
			},
			&cli.StringFlag{
				Name:    "ticker",
				Aliases: []string{"t"},
				Usage:   "Ticker symbol",
			},
			&cli.TimestampFlag{
				Name:    "start",
				Aliases: []string{"s"},
				Usage:   "Start date in `YYYY-MM-DD` format",
				Config: cli.TimestampConfig{
					Layouts: []string{time.DateOnly},
				},
			},
			&cli.TimestampFlag{
				Name:    "end",
				Aliases: []string{"e"},
				Usage:   "End date in `YYYY-MM-DD` format. Defaults to today.",
				Value:   time.Now(),
				Config: cli.TimestampConfig{
					Layouts: []string{time.DateOnly},
				},
			},
			&cli.StringFlag{
				Name:    "provider",
				Aliases: []string{"p"},
				Usage:   fmt.Sprintf("Data provider (%s or %s)", marketdata.ProviderPolygon, marketdata.ProviderBinance),
				Value:   string(marketdata.ProviderPolygon),
			},
			&cli.StringFlag{
				Name:    "interval",
				Aliases: []string{"i"},
				Usage:   "Bar interval such as 1m, 1h or 1d",
				Value:   string(marketdata.IntervalOneDay),
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Path to the data output directory",
				Value:   "data",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "schema",
				Usage: "Print the download config JSON schema",
				Action: func(_ context.Context, _ *cli.Command) error {
					schema, err := marketdata.GetDownloadConfigSchema()
					if err != nil {
						return err
					}

					fmt.Println(schema)

					return nil
				},
			},
			{
				Name:  "providers",
				Usage: "List the supported providers",
				Action: func(_ context.Context, _ *cli.Command) error {
					for _, name := range marketdata.GetSupportedProviders() {
						info, err := marketdata.GetProviderInfo(name)
						if err != nil {
							return err
						}

						fmt.Printf("%-10s %s (auth: %t)\n", info.Name, info.Description, info.RequiresAuth)
					}

					return nil
				},
			},
		},
		Action: downloadAction,
	}
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

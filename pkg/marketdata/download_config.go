package marketdata

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-quant/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DownloadConfig describes one download in a YAML or JSON file.
type DownloadConfig struct {
	Provider  ProviderType `yaml:"provider" json:"provider" jsonschema:"title=Provider,description=Market data provider,enum=polygon,enum=binance" validate:"required,oneof=polygon binance"`
	Ticker    string       `yaml:"ticker" json:"ticker" jsonschema:"title=Ticker,description=The trading symbol to download data for (e.g. SPY or BTCUSDT)" validate:"required"`
	StartDate string       `yaml:"start_date" json:"start_date" jsonschema:"title=Start Date,description=Start date (YYYY-MM-DD or RFC3339),format=date" validate:"required"`
	EndDate   string       `yaml:"end_date" json:"end_date" jsonschema:"title=End Date,description=End date (YYYY-MM-DD or RFC3339),format=date" validate:"required"`
	Interval  string       `yaml:"interval" json:"interval" jsonschema:"title=Interval,description=Bar size,enum=1s,enum=1m,enum=3m,enum=5m,enum=15m,enum=30m,enum=1h,enum=2h,enum=4h,enum=6h,enum=8h,enum=12h,enum=1d,enum=3d,enum=1w,enum=1M" validate:"required,oneof=1s 1m 3m 5m 15m 30m 1h 2h 4h 6h 8h 12h 1d 3d 1w 1M"`
	APIKey    string       `yaml:"api_key,omitempty" json:"api_key,omitempty" jsonschema:"title=API Key,description=Polygon.io API key" validate:"required_if=Provider polygon"`
}

// Validate checks the fields and the date range.
func (c DownloadConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid download configuration", err)
	}

	start, err := parseDate(c.StartDate)
	if err != nil {
		return err
	}

	end, err := parseDate(c.EndDate)
	if err != nil {
		return err
	}

	if !end.After(start) {
		return errors.Newf(errors.ErrCodeMalformedDate, "end date %s must be after start date %s", c.EndDate, c.StartDate)
	}

	return nil
}

// ToDownloadParams converts a validated config into download parameters.
func (c DownloadConfig) ToDownloadParams() (DownloadParams, error) {
	start, err := parseDate(c.StartDate)
	if err != nil {
		return DownloadParams{}, err
	}

	end, err := parseDate(c.EndDate)
	if err != nil {
		return DownloadParams{}, err
	}

	interval, err := ParseInterval(c.Interval)
	if err != nil {
		return DownloadParams{}, err
	}

	return DownloadParams{
		Ticker:    c.Ticker,
		StartDate: start,
		EndDate:   end,
		Interval:  interval,
	}, nil
}

// ToClientConfig returns the client configuration writing into dataPath.
func (c DownloadConfig) ToClientConfig(dataPath string) ClientConfig {
	return ClientConfig{
		ProviderType:  c.Provider,
		DataPath:      dataPath,
		PolygonAPIKey: c.APIKey,
	}
}

// ParseDownloadConfig parses and validates a YAML (or JSON) download configuration.
func ParseDownloadConfig(data []byte) (DownloadConfig, error) {
	var config DownloadConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return DownloadConfig{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse download configuration", err)
	}

	if err := config.Validate(); err != nil {
		return DownloadConfig{}, err
	}

	return config, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, errors.Newf(errors.ErrCodeMalformedDate, "invalid date %q, expected YYYY-MM-DD or RFC3339", s)
}

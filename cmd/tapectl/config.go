package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/FoxDenHome/tapectl/scsi/dispatch"
	"github.com/FoxDenHome/tapectl/tools"
)

type Config struct {
	DriveDevice  string      `json:"drive-device"`
	TapeMount    string      `json:"tape-mount"`
	LabelDB      string      `json:"label-db"`
	PollInterval string      `json:"poll-interval"`
	Retry        RetryConfig `json:"retry"`
	Tools        tools.Paths `json:"tools"`
}

type RetryConfig struct {
	MaxAttempts int    `json:"max-attempts"`
	BaseDelay   string `json:"base-delay"`
	MaxDelay    string `json:"max-delay"`
}

func defaultConfig() Config {
	return Config{
		DriveDevice:  "/dev/sg0",
		TapeMount:    "/mnt/tape",
		PollInterval: "2s",
	}
}

func loadConfig(path string) (Config, error) {
	reader, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer func() {
		_ = reader.Close()
	}()

	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()

	config := defaultConfig()
	err = decoder.Decode(&config)
	if err != nil {
		return Config{}, err
	}
	return config, nil
}

func (c Config) pollInterval() (time.Duration, error) {
	if c.PollInterval == "" {
		return 0, nil
	}
	return time.ParseDuration(c.PollInterval)
}

func (c Config) retryPolicy() (dispatch.Policy, error) {
	policy := dispatch.DefaultPolicy
	if c.Retry.MaxAttempts > 0 {
		policy.MaxAttempts = c.Retry.MaxAttempts
	}
	if c.Retry.BaseDelay != "" {
		delay, err := time.ParseDuration(c.Retry.BaseDelay)
		if err != nil {
			return policy, err
		}
		policy.BaseDelay = delay
	}
	if c.Retry.MaxDelay != "" {
		delay, err := time.ParseDuration(c.Retry.MaxDelay)
		if err != nil {
			return policy, err
		}
		policy.MaxDelay = delay
	}
	return policy, nil
}

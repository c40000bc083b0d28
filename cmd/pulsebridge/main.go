package main

import (
	"fmt"
	"os"

	"github.com/pulsebridge/pulsebridge-cli/internal/adapters/driven/config/file"
	"github.com/pulsebridge/pulsebridge-cli/internal/adapters/driven/fitbit"
	"github.com/pulsebridge/pulsebridge-cli/internal/adapters/driven/mqtt"
	"github.com/pulsebridge/pulsebridge-cli/internal/adapters/driven/storage/sqlite"
	"github.com/pulsebridge/pulsebridge-cli/internal/adapters/driving/callback"
	"github.com/pulsebridge/pulsebridge-cli/internal/adapters/driving/cli"
	"github.com/pulsebridge/pulsebridge-cli/internal/core/domain"
	"github.com/pulsebridge/pulsebridge-cli/internal/core/ports/driving"
	"github.com/pulsebridge/pulsebridge-cli/internal/core/services"
)

func main() {
	cli.SetServiceBuilder(buildServices)
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// buildServices wires the adapters to the core services once the
// persistent flags are known.
func buildServices(configDir, dataDir string) (cli.Services, error) {
	cfg, err := file.NewConfigStore(configDir)
	if err != nil {
		return cli.Services{}, fmt.Errorf("loading configuration: %w", err)
	}

	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return cli.Services{}, fmt.Errorf("opening data store: %w", err)
	}

	tokenClient := fitbit.NewTokenClient()
	tokens := services.NewTokenService(store.TokenStore(), tokenClient)

	listener := callback.NewServer(
		cfg.GetString("tls.cert_file"),
		cfg.GetString("tls.key_file"),
	)
	authorizer := services.NewAuthorizeService(
		listener,
		tokenClient,
		store.TokenStore(),
		callback.OpenBrowser,
		fitbit.AuthorizationURL,
		fitbit.Scopes,
	)

	// The broker connection is only dialed when the poll loop starts,
	// so authorize and token commands work without a reachable broker.
	newPoller := func(topic string, detail domain.DetailLevel) (driving.Poller, func(), error) {
		pub, err := mqtt.Connect(brokerConfig(cfg))
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to broker: %w", err)
		}

		fetcher := fitbit.NewAPIClient(tokens)
		poller := services.NewPollService(tokens, fetcher, pub,
			store.CursorStore(), store.ResultStore(), topic, detail)
		return poller, pub.Close, nil
	}

	return cli.Services{
		Authorizer: authorizer,
		Tokens:     tokens,
		Results:    store.ResultStore(),
		NewPoller:  newPoller,
	}, nil
}

// brokerConfig reads MQTT settings, falling back to local-broker
// defaults for anything unset.
func brokerConfig(cfg *file.ConfigStore) mqtt.Config {
	c := mqtt.Config{
		Host:        cfg.GetString("mqtt.host"),
		Port:        cfg.GetInt("mqtt.port"),
		ClientID:    cfg.GetString("mqtt.client_id"),
		Username:    cfg.GetString("mqtt.username"),
		Password:    cfg.GetString("mqtt.password"),
		TopicPrefix: cfg.GetString("mqtt.topic_prefix"),
	}
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 1883
	}
	if c.ClientID == "" {
		c.ClientID = "pulsebridge"
	}
	if c.TopicPrefix == "" {
		c.TopicPrefix = "pulsebridge"
	}
	return c
}

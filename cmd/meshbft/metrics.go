/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	kitstatsd "github.com/go-kit/kit/metrics/statsd"
	"github.com/hyperledger-labs/meshbft/common/flogging"
	floggingmetrics "github.com/hyperledger-labs/meshbft/common/flogging/metrics"
	"github.com/hyperledger-labs/meshbft/common/metrics"
	"github.com/hyperledger-labs/meshbft/common/metrics/disabled"
	"github.com/hyperledger-labs/meshbft/common/metrics/prometheus"
	"github.com/hyperledger-labs/meshbft/common/metrics/statsd"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const statsdWriteInterval = 10 * time.Second

func addMetricsFlags(flags *pflag.FlagSet) {
	flags.String("metrics-provider", "disabled", "Metrics provider: disabled, prometheus, or statsd")
	flags.String("metrics-address", "127.0.0.1:9443", "Listen address of the prometheus /metrics endpoint")
	flags.String("statsd-network", "udp", "Network of the statsd endpoint")
	flags.String("statsd-address", "127.0.0.1:8125", "Address of the statsd endpoint")
	flags.String("statsd-prefix", "meshbft", "Prefix prepended to statsd bucket names")
}

// newMetricsProvider builds the provider selected by the metrics-provider
// flag and hooks the logging observer into it. The returned cleanup stops
// any background serving or send loop.
func newMetricsProvider() (metrics.Provider, func(), error) {
	provider, cleanup, err := buildProvider()
	if err != nil {
		return nil, nil, err
	}
	if _, disabled := provider.(*disabled.Provider); !disabled {
		flogging.SetObserver(floggingmetrics.NewObserver(provider))
	}
	return provider, cleanup, nil
}

func buildProvider() (metrics.Provider, func(), error) {
	logger := flogging.MustGetLogger("meshbft.metrics")

	switch providerType := viper.GetString("metrics-provider"); providerType {
	case "disabled":
		return &disabled.Provider{}, func() {}, nil

	case "prometheus":
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		server := &http.Server{
			Addr:    viper.GetString("metrics-address"),
			Handler: mux,
		}
		go func() {
			if err := server.ListenAndServe(); err != http.ErrServerClosed {
				logger.Errorw("metrics endpoint failed", "error", err)
			}
		}()
		logger.Infow("serving prometheus metrics", "address", server.Addr)
		return &prometheus.Provider{}, func() { server.Close() }, nil

	case "statsd":
		network := viper.GetString("statsd-network")
		address := viper.GetString("statsd-address")
		c, err := net.Dial(network, address)
		if err != nil {
			return nil, nil, errors.WithMessagef(err, "connecting statsd endpoint %s", address)
		}
		c.Close()

		prefix := viper.GetString("statsd-prefix")
		if prefix != "" && !strings.HasSuffix(prefix, ".") {
			prefix = prefix + "."
		}
		ks := kitstatsd.New(prefix, kitLogger{logger: logger})

		ctx, cancel := context.WithCancel(context.Background())
		ticker := time.NewTicker(statsdWriteInterval)
		go ks.SendLoop(ctx, ticker.C, network, address)

		cleanup := func() {
			ticker.Stop()
			cancel()
		}
		return &statsd.Provider{Statsd: ks}, cleanup, nil

	default:
		return nil, nil, errors.Errorf("unknown metrics provider %q", providerType)
	}
}

// kitLogger adapts a flogging logger to the go-kit logging contract.
type kitLogger struct {
	logger *flogging.Logger
}

func (k kitLogger) Log(keyvals ...interface{}) error {
	k.logger.Warn(keyvals...)
	return nil
}

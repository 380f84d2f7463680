package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/joshp123/gotado/internal/exporter"
	"github.com/joshp123/gotado/internal/mqttbridge"
	"github.com/joshp123/gotado/internal/oauth"
	"github.com/joshp123/gotado/internal/rate"
	"github.com/joshp123/gotado/tado"
)

func serveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Poll zone states, export Prometheus metrics and publish to MQTT",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			client, err := a.session(ctx)
			if err != nil {
				return err
			}

			poller := exporter.NewPoller(client, a.cfg.Exporter.PollInterval, a.log)
			// Persist after each poll: a long-running exporter rotates the
			// refresh token many times before it exits.
			poller.OnUpdate(func(exporter.Snapshot) {
				if err := a.persist(ctx); err != nil {
					a.log.Error(err, "persist session")
				}
			})

			if a.cfg.MQTT.Enabled() {
				bridge, mqttClient, err := mqttbridge.Connect(a.cfg.MQTT, a.log)
				if err != nil {
					return err
				}
				defer mqttClient.Disconnect(250)
				poller.OnUpdate(func(snap exporter.Snapshot) {
					_ = bridge.Publish(snap)
				})
			}

			extra := []prometheus.Collector{}
			extra = append(extra, tado.MetricsCollectors()...)
			extra = append(extra, oauth.MetricsCollectors()...)
			extra = append(extra, rate.MetricsCollectors()...)
			registry, err := exporter.NewRegistry(exporter.NewCollector(poller), extra...)
			if err != nil {
				return err
			}
			handler := exporter.Handler(registry, poller, 3*a.cfg.Exporter.PollInterval)

			a.log.Info("serving", "addr", a.cfg.Exporter.ListenAddr, "interval", a.cfg.Exporter.PollInterval.String())
			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				poller.Run(gctx)
				return nil
			})
			g.Go(func() error {
				return exporter.Serve(gctx, a.cfg.Exporter.ListenAddr, handler)
			})
			return g.Wait()
		},
	}
}

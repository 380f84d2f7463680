package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/joshp123/gotado/internal/config"
	"github.com/joshp123/gotado/internal/logging"
	"github.com/joshp123/gotado/internal/oauth"
	"github.com/joshp123/gotado/internal/rate"
	"github.com/joshp123/gotado/tado"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{log: logr.Discard()}
	err := newRootCmd(a).ExecuteContext(ctx)
	if ferr := a.finish(context.WithoutCancel(ctx)); ferr != nil {
		err = errors.Join(err, ferr)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app carries what every command needs. It is filled by the root
// PersistentPreRunE.
type app struct {
	configPath string
	verbose    bool
	debug      bool
	out        outputMode

	cfg       *config.Config
	log       logr.Logger
	logCloser io.Closer
	store     *oauth.Store
	guard     *rate.Guard

	client *tado.Client
	state  oauth.State
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "gotado",
		Short:         "Query and control a tado home",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.setup()
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	root.PersistentFlags().BoolVar(&a.out.json, "json", false, "print JSON instead of tables")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "debug output")

	root.AddCommand(
		versionCmd(),
		loginCmd(a),
		meCmd(a),
		homeCmd(a),
		zonesCmd(a),
		stateCmd(a),
		devicesCmd(a),
		mobileDevicesCmd(a),
		weatherCmd(a),
		homeStateCmd(a),
		capabilitiesCmd(a),
		dayReportCmd(a),
		offsetCmd(a),
		overlayCmd(a),
		presenceCmd(a),
		childLockCmd(a),
		meterCmd(a),
		serveCmd(a),
	)
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), tado.Version)
		},
	}
}

func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	log, closer, err := logging.New(logging.Options{
		Verbose:    a.verbose,
		Debug:      a.debug,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	a.log, a.logCloser = log, closer

	var blob oauth.BlobStore
	if cfg.Blob.Enabled() {
		s3, err := oauth.NewS3Store(cfg.Blob)
		if err != nil {
			return err
		}
		blob = s3
	}
	a.store = oauth.NewStore(cfg.StateFile, blob, log.WithName("state"))

	policy := rate.TadoPolicy()
	policy.Limits[rate.Day] = cfg.Rate.DailyBudget
	policy.Floor = cfg.Rate.Floor
	policy.CacheTTL = cfg.Rate.CacheTTL
	a.guard = rate.NewGuard(policy)
	return nil
}

// newClient builds a client over the rate-limited transport. refresh may
// be empty for the login commands.
func (a *app) newClient(refresh string, homeID int) *tado.Client {
	opts := []tado.Option{
		tado.WithHTTPClient(rate.WrapHTTP(a.guard, &http.Client{})),
		tado.WithTimeout(a.cfg.Timeout),
		tado.WithLogger(a.log.WithName("tado")),
		tado.WithRefreshToken(refresh),
	}
	if a.cfg.HomeID != 0 {
		homeID = a.cfg.HomeID
	}
	if homeID != 0 {
		opts = append(opts, tado.WithHomeID(homeID))
	}
	if a.cfg.Line != "" {
		opts = append(opts, tado.WithLine(tado.Line(a.cfg.Line)))
	}
	a.client = tado.New(opts...)
	return a.client
}

// session resumes the persisted session.
func (a *app) session(ctx context.Context) (*tado.Client, error) {
	state, err := a.store.Load(ctx)
	if errors.Is(err, oauth.ErrStateNotFound) {
		return nil, fmt.Errorf("not logged in: run `gotado login device` first")
	}
	if err != nil {
		return nil, err
	}
	a.state = state

	client := a.newClient(state.RefreshToken, state.HomeID)
	if err := client.Init(ctx); err != nil {
		return nil, err
	}
	return client, nil
}

// finish persists a rotated refresh token. It runs after every command,
// failed ones included: tado rotates refresh tokens on use.
func (a *app) finish(ctx context.Context) error {
	defer func() {
		if a.client != nil {
			_ = a.client.Close()
		}
		if a.logCloser != nil {
			_ = a.logCloser.Close()
		}
	}()
	return a.persist(ctx)
}

func (a *app) persist(ctx context.Context) error {
	if a.client == nil || a.store == nil {
		return nil
	}

	refresh := a.client.RefreshToken()
	if refresh == "" {
		return nil
	}
	next := oauth.State{RefreshToken: refresh, HomeID: a.state.HomeID}
	if a.client.ActivationStatus() == tado.StatusCompleted {
		if id, err := a.client.HomeID(ctx); err == nil {
			next.HomeID = id
		}
	}
	if next.RefreshToken == a.state.RefreshToken && next.HomeID == a.state.HomeID {
		return nil
	}
	if err := a.store.Save(ctx, next); err != nil {
		return err
	}
	a.state = next
	a.log.V(1).Info("persisted session", "home", next.HomeID)
	return nil
}

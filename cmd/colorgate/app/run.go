package app

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	colorgate "github.com/knzm/go-colorgate"
	"github.com/knzm/go-colorgate/internal/metrics"
	"github.com/knzm/go-colorgate/internal/occupancy"
)

func newRunCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start callers of alternating colors against one controller",
		Long: `Starts --callers callers, alternating between the two colors and spaced
--stagger apart. Each caller holds the resource for --hold and logs when it
enters and leaves. The run fails if callers of both colors were ever inside
at the same time.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg.Debug)
			if err != nil {
				return errors.Wrap(err, "failed to build logger")
			}
			defer func() { _ = logger.Sync() }()

			report, err := Run(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			return report.Print(cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.Int("callers", 12, "Number of callers to start")
	flags.Duration("stagger", 30*time.Millisecond, "Delay between caller starts")
	flags.Duration("hold", 100*time.Millisecond, "How long each caller uses the resource")
	flags.String("first", colorgate.White.String(), "Color of the first caller (A/white or B/black)")
	flags.String("metrics-addr", "", "Serve prometheus metrics on this address during the run")
	_ = v.BindPFlags(flags)

	return cmd
}

// Run drives one demonstration and tears the controller down afterwards.
func Run(ctx context.Context, cfg Config, logger *zap.Logger) (*Report, error) {
	ctrl := colorgate.New(colorgate.WithLogger(logger.Named("gate")))
	rec := occupancy.New()

	if cfg.MetricsAddr != "" {
		stop, err := serveMetrics(cfg.MetricsAddr, ctrl, logger)
		if err != nil {
			return nil, err
		}
		defer stop()
	}

	executors := map[colorgate.Color]colorgate.Executor{
		colorgate.A: colorgate.NewExecutor(ctrl.Waiter(colorgate.A)),
		colorgate.B: colorgate.NewExecutor(ctrl.Waiter(colorgate.B)),
	}

	g, gctx := errgroup.WithContext(ctx)
	color := cfg.First
start:
	for i := 0; i < cfg.Callers; i++ {
		name := fmt.Sprintf("caller-%02d", i)
		c := color
		g.Go(func() error {
			_, err := executors[c].Execute(gctx, func() colorgate.Result {
				tok := rec.Enter(name, c)
				logger.Info("enter", zap.String("caller", name), zap.Stringer("color", c))
				select {
				case <-time.After(cfg.Hold):
				case <-gctx.Done():
				}
				logger.Info("exit", zap.String("caller", name), zap.Stringer("color", c))
				rec.Exit(tok)
				return nil
			})
			return errors.Wrap(err, name)
		})
		color = color.Opposite()

		if i < cfg.Callers-1 {
			select {
			case <-time.After(cfg.Stagger):
			case <-gctx.Done():
				break start
			}
		}
	}

	runErr := g.Wait()
	if runErr == nil && ctx.Err() != nil {
		runErr = errors.Wrap(ctx.Err(), "run interrupted")
	}
	for _, e := range executors {
		e.Wait()
	}
	stats := ctrl.Stats()
	if err := ctrl.Close(); err != nil {
		return nil, errors.Wrap(err, "failed to tear down controller")
	}
	if runErr != nil {
		return nil, runErr
	}
	if err := rec.Err(); err != nil {
		return nil, errors.Wrap(err, "mutual exclusion violated")
	}

	return &Report{
		Admissions: rec.Admissions(),
		Peak: map[colorgate.Color]int{
			colorgate.A: rec.Peak(colorgate.A),
			colorgate.B: rec.Peak(colorgate.B),
		},
		Stats: stats,
	}, nil
}

func serveMetrics(addr string, ctrl *colorgate.Controller, logger *zap.Logger) (func(), error) {
	reg := prometheus.NewRegistry()
	if err := reg.Register(metrics.NewCollector("", ctrl)); err != nil {
		return nil, errors.Wrap(err, "failed to register collector")
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to listen on %s", addr)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server stopped", zap.Error(err))
		}
	}()
	logger.Info("serving metrics", zap.Stringer("addr", ln.Addr()))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"

	"github.com/ezchuang/wellness/internal/config"
	"github.com/ezchuang/wellness/internal/core"
	"github.com/ezchuang/wellness/internal/logging"
	"github.com/ezchuang/wellness/internal/loop"
	"github.com/ezchuang/wellness/internal/notify"
	"github.com/ezchuang/wellness/internal/ui"
)

var version = "dev"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	def := config.Default()

	app := cli.NewApp()
	app.Name = config.AppName
	app.Usage = "periodic wellness reminders for your desk"
	app.Version = version
	app.Flags = []cli.Flag{
		cli.IntFlag{
			Name:   "interval, i",
			Value:  def.IntervalMinutes,
			Usage:  "minutes between reminders",
			EnvVar: "WELLNESS_INTERVAL",
		},
		cli.StringFlag{
			Name:   "tips",
			Usage:  "YAML file with a list of {title, message} reminders",
			EnvVar: "WELLNESS_TIPS",
		},
		cli.BoolFlag{
			Name:   "headless",
			Usage:  "run without the terminal UI and start immediately",
			EnvVar: "WELLNESS_HEADLESS",
		},
		cli.BoolFlag{
			Name:   "sound",
			Usage:  "play the system alert sound with each reminder",
			EnvVar: "WELLNESS_SOUND",
		},
		cli.StringFlag{
			Name:   "log-file",
			Value:  def.LogFile,
			Usage:  "path of the rotating log file (empty disables it)",
			EnvVar: "WELLNESS_LOG_FILE",
		},
		cli.StringFlag{
			Name:   "log-level",
			Value:  def.LogLevel,
			Usage:  "debug, info, warn or error",
			EnvVar: "WELLNESS_LOG_LEVEL",
		},
	}
	app.Action = run
	return app
}

func configFrom(c *cli.Context) config.Config {
	return config.Config{
		IntervalMinutes: c.Int("interval"),
		TipsFile:        c.String("tips"),
		Headless:        c.Bool("headless"),
		Sound:           c.Bool("sound"),
		LogFile:         c.String("log-file"),
		LogLevel:        c.String("log-level"),
	}
}

func run(c *cli.Context) error {
	cfg := configFrom(c)
	if err := cfg.Validate(); err != nil {
		return cli.NewExitError(err.Error(), 2)
	}

	opts := logging.Options{File: cfg.LogFile, Level: cfg.LogLevel}
	if cfg.Headless {
		opts.Stderr = os.Stderr
	}
	log, closer, err := logging.New(opts)
	if err != nil {
		return err
	}
	defer closer.Close()

	tips, err := config.LoadTips(cfg.TipsFile)
	if err != nil {
		return cli.NewExitError(err.Error(), 2)
	}
	log.Info("wellness reminder app starting", "tips", len(tips), "headless", cfg.Headless)

	presenter := notify.NewPresenter(notify.New(cfg.Sound), log)
	if cfg.Headless {
		return runHeadless(cfg, tips, presenter, log)
	}

	m, err := ui.NewModel(ui.Options{
		IntervalMinutes: cfg.IntervalMinutes,
		Tips:            tips,
		Presenter:       presenter,
		Logger:          log,
	})
	if err != nil {
		return err
	}
	return ui.Run(m)
}

func runHeadless(cfg config.Config, tips core.TipTable, presenter core.Presenter, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	l := loop.New(loop.RealClock{})
	sched := core.NewScheduler(l, presenter, core.WithTips(tips), core.WithLogger(log))
	if err := headless(ctx, l, sched, cfg.IntervalMinutes, log); err != nil {
		if errors.Is(err, core.ErrInvalidInterval) {
			return cli.NewExitError(err.Error(), 2)
		}
		return err
	}
	return nil
}

// headless starts sched on l and runs the loop until ctx is done. A failed
// start ends the loop and is returned.
func headless(ctx context.Context, l *loop.Loop, sched *core.Scheduler, minutes int, log *slog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var startErr error
	if err := l.Post(func() {
		if startErr = sched.Start(minutes); startErr != nil {
			log.Error("start reminders", "err", startErr)
			cancel()
		}
	}); err != nil {
		return err
	}

	err := l.Run(ctx)
	sched.Shutdown()
	log.Info("wellness reminder app stopped")
	if startErr != nil {
		return fmt.Errorf("start reminders: %w", startErr)
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

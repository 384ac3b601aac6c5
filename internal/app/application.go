package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"go978/internal/dump978"
	"go978/internal/logging"
	"go978/internal/publish"
	"go978/internal/storage"
)

// Application represents the main application
type Application struct {
	config     Config
	logger     *logrus.Logger
	stdout     io.Writer
	stdin      io.Reader
	input      io.ReadCloser
	reader     *dump978.Reader
	inputMu    sync.Mutex
	logRotator *logging.LogRotator
	sinks      []Sink
	pipeline   *Pipeline
	stats      *Stats
	wg         sync.WaitGroup
}

// NewApplication creates a new application instance
func NewApplication(config Config) *Application {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if config.Verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	return &Application{
		config: config,
		logger: logger,
		stdout: os.Stdout,
		stdin:  os.Stdin,
		stats:  &Stats{},
	}
}

// Stats returns the processing counters
func (app *Application) Stats() *Stats {
	return app.stats
}

// Logger returns the application logger
func (app *Application) Logger() *logrus.Logger {
	return app.logger
}

// Start runs the application until the input ends or SIGINT/SIGTERM arrives
func (app *Application) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return app.Run(ctx)
}

// Run decodes the configured input until EOF or ctx is cancelled
func (app *Application) Run(ctx context.Context) error {
	app.logger.WithFields(logrus.Fields{
		"version":    Version,
		"build_time": BuildTime,
		"git_commit": GitCommit,
	}).Info("Starting UAT decoder")

	if err := app.config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := app.initializeComponents(ctx); err != nil {
		app.shutdown()
		return fmt.Errorf("failed to initialize components: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	err := app.run(runCtx)
	cancel()

	app.shutdown()
	return err
}

// initializeComponents opens the input and every configured output
func (app *Application) initializeComponents(ctx context.Context) error {
	var err error

	app.input, err = app.openInput(ctx)
	if err != nil {
		return err
	}

	var outputs []io.Writer
	if !app.config.Quiet {
		outputs = append(outputs, app.stdout)
	}

	if app.config.LogToFile {
		var opts []logging.Option
		if app.config.LogRetention > 0 {
			opts = append(opts, logging.WithRetention(app.config.LogRetention))
		}
		app.logRotator, err = logging.NewLogRotator(app.config.LogDir, app.config.LogRotateUTC, app.logger, opts...)
		if err != nil {
			return fmt.Errorf("failed to initialize log rotator: %w", err)
		}
		app.logger.WithFields(logrus.Fields{
			"file":           app.logRotator.GetCurrentLogFile(),
			"retention_days": app.config.LogRetention,
		}).Info("Report file enabled")
		outputs = append(outputs, app.logRotator)
	}

	if app.config.SQLitePath != "" {
		store, err := storage.OpenSQLite(app.config.SQLitePath)
		if err != nil {
			return fmt.Errorf("failed to open SQLite database: %w", err)
		}
		app.sinks = append(app.sinks, &storeSink{name: "sqlite", store: store})
		app.logger.WithField("path", app.config.SQLitePath).Info("SQLite archive enabled")
	}

	if app.config.PostgresURL != "" {
		store, err := storage.OpenPostgres(ctx, app.config.PostgresURL)
		if err != nil {
			return fmt.Errorf("failed to open PostgreSQL: %w", err)
		}
		app.sinks = append(app.sinks, &storeSink{name: "postgres", store: store})
		app.logger.Info("PostgreSQL archive enabled")
	}

	if app.config.NATSURL != "" {
		publisher, err := publish.NewNATSPublisher(app.config.NATSURL, app.config.NATSSubject, app.logger)
		if err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		app.sinks = append(app.sinks, &natsSink{publisher: publisher})
	}

	var out io.Writer
	switch len(outputs) {
	case 0:
	case 1:
		out = outputs[0]
	default:
		out = io.MultiWriter(outputs...)
	}

	app.pipeline = NewPipeline(app.config.Format, out, app.sinks, app.stats, app.logger)
	return nil
}

// openInput returns the dump978 stream: a TCP connection, a file or stdin
func (app *Application) openInput(ctx context.Context) (io.ReadCloser, error) {
	if addr := app.config.ConnectAddress(); addr != "" {
		dialer := net.Dialer{Timeout: DefaultDialTimeout}
		conn, err := dialer.DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to dump978 at %s: %w", addr, err)
		}
		app.logger.WithField("address", addr).Info("Connected to dump978")
		return conn, nil
	}

	if app.config.Input == "" || app.config.Input == "-" {
		app.logger.Info("Reading dump978 lines from stdin")
		return io.NopCloser(app.stdin), nil
	}

	file, err := os.Open(app.config.Input)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	app.logger.WithField("file", app.config.Input).Info("Reading dump978 lines from file")
	return file, nil
}

// run starts the background components and processes lines until the input
// ends or ctx is cancelled
func (app *Application) run(ctx context.Context) error {
	if app.logRotator != nil {
		app.wg.Add(1)
		go func() {
			defer app.wg.Done()
			app.logRotator.Start(ctx)
		}()
	}

	app.wg.Add(1)
	go func() {
		defer app.wg.Done()
		app.reportStatistics(ctx)
	}()

	reader := dump978.NewReader(app.input, app.logger)
	app.reader = reader
	lines := make(chan string, 256)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		for {
			line, err := reader.Next()
			if err != nil {
				if !errors.Is(err, io.EOF) {
					readErr <- err
				}
				return
			}
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
	}()

	// Unblock a reader waiting on a network connection or file.
	go func() {
		<-ctx.Done()
		app.closeInput()
	}()

	for {
		select {
		case <-ctx.Done():
			app.logger.Info("Received shutdown signal")
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					if ctx.Err() != nil {
						return nil
					}
					return err
				default:
				}
				app.logger.Info("End of input")
				return nil
			}
			if err := app.pipeline.HandleLine(ctx, line); err != nil {
				return err
			}
		}
	}
}

// reportStatistics logs the counters every stats interval
func (app *Application) reportStatistics(ctx context.Context) {
	ticker := time.NewTicker(app.config.StatsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			app.logger.WithFields(app.stats.Snapshot().Fields()).Info("UAT processing statistics")
		}
	}
}

func (app *Application) closeInput() {
	app.inputMu.Lock()
	defer app.inputMu.Unlock()
	if app.input != nil {
		if err := app.input.Close(); err != nil {
			app.logger.WithError(err).Debug("Failed to close input")
		}
		app.input = nil
	}
}

// shutdown waits for background goroutines and releases every resource
func (app *Application) shutdown() {
	app.logger.Info("Shutting down application")

	done := make(chan struct{})
	go func() {
		app.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		app.logger.Warn("Shutdown timeout, forcing exit")
	}

	app.closeInput()

	for _, sink := range app.sinks {
		if err := sink.Close(); err != nil {
			app.logger.WithError(err).WithField("sink", sink.Name()).Error("Failed to close sink")
		}
	}
	app.sinks = nil

	if app.logRotator != nil {
		app.logRotator.Close()
		app.logRotator = nil
	}

	fields := app.stats.Snapshot().Fields()
	if app.reader != nil {
		fields["input_lines"] = app.reader.Lines()
		fields["overlong_lines"] = app.reader.Skipped()
	}
	app.logger.WithFields(fields).Info("Final statistics")

	app.logger.Info("Shutdown completed")
}

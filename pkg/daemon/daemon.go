package daemon

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/distatus/battery"
	"github.com/gin-gonic/gin"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/gallxyz/lowbatt/pkg/alert"
	"github.com/gallxyz/lowbatt/pkg/config"
	"github.com/gallxyz/lowbatt/pkg/events"
	"github.com/gallxyz/lowbatt/pkg/presenter"
	"github.com/gallxyz/lowbatt/pkg/runner"
	"github.com/gallxyz/lowbatt/pkg/sampler"
)

// Daemon wires the alert controller to a sampler, a presenter and the
// HTTP API.
type Daemon struct {
	conf      config.Config
	ctrl      *alert.Controller
	sampler   sampler.Sampler
	presenter presenter.Presenter
	hub       *events.EventHub
	recorder  *TimeSeriesRecorder
	done      chan struct{}

	// batteryInfo is a test seam for GET /battery-info.
	batteryInfo func(ctx context.Context) (*battery.Battery, error)

	// deliverMu is held from a controller transition until its decision has
	// reached the presenter and the hub, so they see decisions in order.
	deliverMu sync.Mutex

	mu            sync.Mutex
	visible       bool
	lastSampleErr error
	missed        int
}

var _ presenter.Actions = &Daemon{}

// New validates the configuration and builds a daemon around s, r and p.
func New(conf config.Config, s sampler.Sampler, r alert.Runner, p presenter.Presenter) (*Daemon, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	policy, err := conf.Policy()
	if err != nil {
		return nil, err
	}

	return &Daemon{
		conf:        conf,
		ctrl:        alert.NewController(policy, conf.ButtonCommand(), r),
		sampler:     s,
		presenter:   p,
		hub:         events.NewEventHub(),
		recorder:    NewTimeSeriesRecorder(60, conf.TickInterval()),
		done:        make(chan struct{}),
		batteryInfo: platformBatteryInfo,
	}, nil
}

// Dismiss handles every dismiss gesture of the presenters.
func (d *Daemon) Dismiss() {
	_, _ = d.dismiss()
}

func (d *Daemon) dismiss() (alert.Decision, bool) {
	d.deliverMu.Lock()
	defer d.deliverMu.Unlock()

	dec, ok := d.ctrl.DismissVisible()
	if !ok {
		logrus.Debug("alert is not shown, ignoring dismiss")
		return dec, false
	}
	d.apply(dec, events.AlertDismissed)
	return dec, true
}

// SecondaryAction handles the secondary gesture of the presenters.
func (d *Daemon) SecondaryAction() {
	_, _ = d.secondaryAction()
}

func (d *Daemon) secondaryAction() (alert.Decision, error) {
	d.deliverMu.Lock()
	defer d.deliverMu.Unlock()

	dec, err := d.ctrl.SecondaryAction()
	if errors.Is(err, alert.ErrSecondaryActionUnavailable) {
		logrus.Debug("secondary action is not available, ignoring")
		return dec, err
	}

	ev := events.ActionEvent{Command: d.conf.ButtonCommand(), Ts: time.Now().Unix()}
	if err != nil {
		ev.Error = err.Error()
		d.hub.Publish(events.ActionFailed, ev)
	} else {
		d.hub.Publish(events.ActionLaunched, ev)
	}

	d.apply(dec, "")
	return dec, err
}

func (d *Daemon) setupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(ginLogger(logrus.StandardLogger()))
	router.GET("/status", d.getStatus)
	router.POST("/dismiss", d.postDismiss)
	router.POST("/secondary-action", d.postSecondaryAction)
	router.GET("/config", d.getConfig)
	router.GET("/battery-info", d.getBatteryInfo)
	router.GET("/version", getVersion)
	router.GET("/events", d.getEvents)

	return router
}

// listen creates the unix socket, replacing a stale one left by a crash.
func listen(unixSocketPath string, allowNonRoot bool) (net.Listener, error) {
	if _, err := os.Stat(unixSocketPath); err == nil {
		conn, err := net.Dial("unix", unixSocketPath)
		if err == nil {
			_ = conn.Close()
			return nil, pkgerrors.Errorf("another daemon is listening on %s", unixSocketPath)
		}
		logrus.WithField("socket", unixSocketPath).Info("removing stale socket")
		if err := os.Remove(unixSocketPath); err != nil {
			return nil, pkgerrors.Wrapf(err, "failed to remove stale socket %s", unixSocketPath)
		}
	}

	l, err := net.Listen("unix", unixSocketPath)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to listen on %s", unixSocketPath)
	}

	mode := os.FileMode(0600)
	if allowNonRoot {
		logrus.Infof("access from other users is allowed, changing permissions of %s to 0777", unixSocketPath)
		mode = 0777
	}
	if err := os.Chmod(unixSocketPath, mode); err != nil {
		_ = l.Close()
		return nil, pkgerrors.Wrapf(err, "failed to change permissions of %s", unixSocketPath)
	}

	return l, nil
}

// Serve runs the loops and the HTTP API, and hands the calling goroutine to
// the presenter. It returns when ctx is done or the presenter quits.
func (d *Daemon) Serve(ctx context.Context, unixSocketPath string) error {
	l, err := listen(unixSocketPath, d.conf.AllowNonRootAccess())
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler: d.setupRoutes(),
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Serve HTTP on unix socket
	go func() {
		logrus.Infof("http server listening on %s", l.Addr().String())
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Error("http server stopped")
			cancel()
		}
	}()

	// Take the first reading before the first decision.
	d.sample(ctx)

	wg := &sync.WaitGroup{}
	wg.Add(2)
	go func() {
		defer wg.Done()
		d.sampleLoop(ctx)
	}()
	go func() {
		defer wg.Done()
		d.tickLoop(ctx)
	}()

	logrus.WithField("presenter", d.presenter.Name()).Info("presenter starts")
	presenterErr := d.presenter.Run(ctx, d)
	if presenterErr != nil {
		logrus.WithError(presenterErr).Error("presenter exited")
	} else if ctx.Err() == nil {
		logrus.Info("presenter closed by user")
	}
	cancel()
	wg.Wait()
	close(d.done)

	logrus.Info("shutting down http server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("failed to shutdown http server: %v", err)
	}

	return presenterErr
}

// Run builds the daemon from conf and serves until SIGINT or SIGTERM.
func Run(conf config.Config, unixSocketPath string) error {
	logrus.WithFields(conf.LogrusFields()).Info("config loaded")

	s, err := sampler.Detect(sampler.DefaultSysfsRoot)
	if err != nil {
		return err
	}

	d, err := New(conf, s, runner.NewShell(), NewPresenter(conf))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle common process-killing signals, so we can gracefully shut down:
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigc)
	go func() {
		select {
		case sig := <-sigc:
			logrus.Infof("caught signal \"%s\": shutting down.", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	err = d.Serve(ctx, unixSocketPath)
	logrus.Info("exiting")
	return err
}

// NewPresenter builds the configured presenter, mirrored to MQTT when a
// broker is set.
func NewPresenter(conf config.Config) presenter.Presenter {
	var primary presenter.Presenter
	switch conf.Presenter() {
	case config.PresenterTray:
		primary = presenter.NewTray(conf.ButtonText())
	case config.PresenterLog:
		primary = presenter.NewLog()
	default:
		primary = presenter.NewTUI(conf.ButtonText(), conf.StyleFile())
	}

	if m := conf.MQTT(); m.Enabled() {
		return presenter.NewMulti(primary, presenter.NewMQTT(m))
	}
	return primary
}

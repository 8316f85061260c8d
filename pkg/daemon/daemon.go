package daemon

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/powerstate/pkg/config"
	"github.com/charlie0129/powerstate/pkg/events"
	"github.com/charlie0129/powerstate/pkg/powerinfo"
	"github.com/charlie0129/powerstate/pkg/powerstate"
)

var (
	conf   config.Config
	sseHub = events.NewEventHub()

	getCurrentPowerState = powerstate.GetCurrentPowerState
	listBatteries        = powerinfo.ListBatteries
	subscribe            = powerstate.Subscribe
	runLoop              = powerstate.Run
)

func setupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(ginLogger(logrus.StandardLogger()))
	router.GET("/config", getConfig)
	router.GET("/status", getStatus)
	router.GET("/batteries", getBatteries)
	router.GET("/events", getEvents)
	router.GET("/version", getVersion)

	return router
}

// Run serves the power state over HTTP on a unix socket until SIGINT or
// SIGTERM. It must be called from the main goroutine: on macOS it drives the
// main run loop that delivers power events.
func Run(configPath string, unixSocketPath string, allowNonRoot bool) error {
	router := setupRoutes()

	var err error
	conf, err = config.NewFile(configPath)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to parse config during startup")
	}
	logrus.WithFields(conf.LogrusFields()).Infof("config loaded")

	if unixSocketPath == "" {
		unixSocketPath = conf.SocketPath()
	}

	// Receive SIGHUP to reload config
	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGHUP)
		for range sigc {
			err := conf.Load()
			if err != nil {
				logrus.Errorf("failed to reload config: %v", err)
				continue
			}
			logrus.Infof("config reloaded")
		}
	}()

	guard, err := subscribe(publishPowerState)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to subscribe to power state changes")
	}
	defer func() {
		if err := guard.Close(); err != nil {
			logrus.Errorf("failed to unsubscribe from power state changes: %v", err)
		}
	}()

	// A socket left behind by a crashed daemon makes Listen fail.
	if err := os.Remove(unixSocketPath); err != nil && !os.IsNotExist(err) {
		return pkgerrors.Wrapf(err, "failed to remove stale socket %s", unixSocketPath)
	}

	l, err := net.Listen("unix", unixSocketPath)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to listen on %s", unixSocketPath)
	}

	if conf.AllowNonRootAccess() || allowNonRoot {
		logrus.Infof("non-root access is allowed, changing permissions of %s to 0777", unixSocketPath)
		err = os.Chmod(unixSocketPath, 0777)
		if err != nil {
			_ = l.Close()
			return pkgerrors.Wrapf(err, "failed to change permissions of %s", unixSocketPath)
		}
	}

	// Handle common process-killing signals, so we can gracefully shut down.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		// Ends open event streams on shutdown.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	// Serve HTTP on unix socket
	go func() {
		logrus.Infof("http server listening on %s", l.Addr().String())
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Errorf("http server failed: %v", err)
			stop()
		}
	}()

	logrus.Debugln("power event loop starts")
	runLoop(ctx)
	logrus.Info("shutting down")

	logrus.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = srv.Shutdown(shutdownCtx)
	if err != nil {
		logrus.Errorf("failed to shutdown http server: %v", err)
	}
	cancel()

	logrus.Info("exiting")
	return nil
}

// publishPowerState forwards every power event to SSE subscribers.
func publishPowerState(status powerstate.Status, err error) {
	if err != nil {
		logrus.Errorf("failed to query power state: %v", err)
		sseHub.Publish(events.PowerError, events.PowerErrorEvent{
			Error: err.Error(),
			Ts:    time.Now().Unix(),
		})
		return
	}

	logrus.WithFields(logrus.Fields{
		"powerState":      status.PowerState,
		"powerSavingMode": status.PowerSavingMode,
		"subscribers":     sseHub.Len(),
	}).Debug("power state changed")

	sseHub.Publish(events.PowerStatus, status)
}

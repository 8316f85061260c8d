package daemon

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/powerstate/pkg/config"
	"github.com/charlie0129/powerstate/pkg/events"
	"github.com/charlie0129/powerstate/pkg/powerinfo"
	"github.com/charlie0129/powerstate/pkg/powerstate"
	"github.com/charlie0129/powerstate/pkg/version"
)

func getConfig(c *gin.Context) {
	fc, err := config.NewRawFileConfigFromConfig(conf)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.IndentedJSON(http.StatusOK, fc)
}

// errorStatusCode maps a powerstate error to an HTTP status code.
func errorStatusCode(err error) int {
	if errors.Is(err, powerstate.ErrUnsupportedPlatform) {
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

func getStatus(c *gin.Context) {
	includeBatteries, err := strconv.ParseBool(c.DefaultQuery("batteries", strconv.FormatBool(conf.IncludeBatteries())))
	if err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	status, err := getCurrentPowerState()
	if err != nil {
		logrus.Errorf("getStatus failed: %v", err)
		code := errorStatusCode(err)
		c.IndentedJSON(code, err.Error())
		_ = c.AbortWithError(code, err)
		return
	}

	if !includeBatteries {
		status.Batteries = []powerinfo.BatteryInfo{}
	}

	c.IndentedJSON(http.StatusOK, status)
}

func getBatteries(c *gin.Context) {
	batteries, err := listBatteries()
	if err != nil {
		logrus.Errorf("getBatteries failed: %v", err)
		c.IndentedJSON(http.StatusInternalServerError, err.Error())
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	c.IndentedJSON(http.StatusOK, batteries)
}

// getEvents streams power events. The current state is sent first, so
// clients do not have to wait for the next change.
func getEvents(c *gin.Context) {
	ch := sseHub.Subscribe()
	defer sseHub.Unsubscribe(ch)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)

	if status, err := getCurrentPowerState(); err != nil {
		c.SSEvent(events.PowerError, events.PowerErrorEvent{Error: err.Error(), Ts: time.Now().Unix()})
	} else {
		c.SSEvent(events.PowerStatus, status)
	}
	c.Writer.Flush()

	c.Stream(func(_ io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case ev, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(ev.Name, string(ev.Data))
			return true
		}
	})
}

func getVersion(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, version.Version)
}

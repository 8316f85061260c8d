package client

import (
	"encoding/json"

	pkgerrors "github.com/pkg/errors"

	"github.com/charlie0129/powerstate/pkg/config"
	"github.com/charlie0129/powerstate/pkg/powerinfo"
	"github.com/charlie0129/powerstate/pkg/powerstate"
)

func (c *Client) GetStatus(includeBatteries bool) (*powerstate.Status, error) {
	path := "/status"
	if !includeBatteries {
		path += "?batteries=false"
	}

	ret, err := c.Get(path)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get power status")
	}

	var status powerstate.Status
	if err := json.Unmarshal([]byte(ret), &status); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal power status")
	}

	return &status, nil
}

func (c *Client) GetBatteries() ([]powerinfo.BatteryInfo, error) {
	ret, err := c.Get("/batteries")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get battery info")
	}

	var batteries []powerinfo.BatteryInfo
	if err := json.Unmarshal([]byte(ret), &batteries); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal battery info")
	}

	return batteries, nil
}

func (c *Client) GetConfig() (*config.RawFileConfig, error) {
	ret, err := c.Get("/config")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get config")
	}

	var conf config.RawFileConfig
	if err := json.Unmarshal([]byte(ret), &conf); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal config")
	}

	return &conf, nil
}

func (c *Client) GetVersion() (string, error) {
	ret, err := c.Get("/version")
	if err != nil {
		return "", pkgerrors.Wrapf(err, "failed to get version")
	}

	var v string
	if err := json.Unmarshal([]byte(ret), &v); err != nil {
		return "", pkgerrors.Wrapf(err, "failed to unmarshal version")
	}

	return v, nil
}

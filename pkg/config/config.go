package config

import "github.com/sirupsen/logrus"

type Config interface {
	LogLevel() string
	JSONOutput() bool
	IncludeBatteries() bool
	OnlyChanges() bool
	SocketPath() string
	AllowNonRootAccess() bool

	SetLogLevel(string)
	SetJSONOutput(bool)
	SetIncludeBatteries(bool)
	SetOnlyChanges(bool)
	SetSocketPath(string)
	SetAllowNonRootAccess(bool)

	LogrusFields() logrus.Fields

	// Load reads the configuration from the source.
	Load() error
	// Save saves the configuration to the source.
	Save() error
}

package hub

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"desmosc/source/settings"
)

// ConfigureLogging sets up the standard logger. Logs go to standard error unless a file is
// named, in which case they're appended to it.
func ConfigureLogging(cfg settings.Log, errOut io.Writer) error {
	level := logrus.WarnLevel
	if cfg.Level != "" {
		var e error
		level, e = logrus.ParseLevel(cfg.Level)
		if e != nil {
			return errors.Wrap(e, "configuring the log")
		}
	}
	logrus.SetLevel(level)
	var out io.Writer = errOut
	if cfg.File != "" {
		f, e := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if e != nil {
			return errors.Wrapf(e, "opening log file %s", cfg.File)
		}
		out = f
	}
	logrus.SetOutput(out)
	if cfg.JSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		return nil
	}
	colour := false
	if f, ok := out.(*os.File); ok {
		colour = isatty.IsTerminal(f.Fd())
	}
	logrus.SetFormatter(&logrus.TextFormatter{DisableColors: !colour, FullTimestamp: cfg.File != ""})
	return nil
}

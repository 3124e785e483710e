// Package logutil configures where log output goes: stdout alone, or
// stdout mirrored to a file, plus a startup countdown while waiting for
// chain genesis.
package logutil

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ConfigurePersistentLogging mirrors stdout into logFilePath, appending
// across restarts so a slot history survives process bounces. Must be
// called before the orchestrator's Run loop starts, since every
// per-slot log line after that point depends on the writer already
// being in place. The file is opened 0o644, not world-writable, since
// it accumulates per-node fetch outcomes and classifier verdicts for
// as long as the harness runs.
func ConfigurePersistentLogging(logFilePath string) error {
	logrus.WithField("path", logFilePath).Info("mirroring logs to disk")
	f, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return errors.Wrap(err, "opening log file")
	}

	logrus.SetOutput(io.MultiWriter(os.Stdout, f))
	logrus.Info("persistent logging active")
	return nil
}

// CountdownToGenesis prints a countdown to stdout, once every
// secondsCount seconds, while startup sleeps until a genesis time that
// lies in the future, and prints "genesis time" once it has passed.
func CountdownToGenesis(genesisTime time.Time, secondsCount int) {
	ticker := time.NewTicker(time.Duration(secondsCount) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-time.After(genesisTime.Sub(time.Now()) + time.Second):
			fmt.Println("genesis time")
			return

		case <-ticker.C:
			fmt.Printf("%02d minutes to genesis!\n", genesisTime.Sub(time.Now()).Round(time.Minute)/time.Minute+1)
		}
	}
}

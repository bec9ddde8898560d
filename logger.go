package shiftlight

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

const logHeader = "timestamp,date,time,lat,lon,alt,speed,sats," +
	"rpm,vspeed,throttle,load,coolant,intake,baro,advance,maf," +
	"stft,ltft,o2,logging,errors"

// consecutive failed writes before the active log is abandoned
const maxWriteFailures = 3

var logNameRe = regexp.MustCompile(`^LOG(\d{5})\.CSV$`)

// LogWriter appends telemetry rows to an 8.3-named CSV file on the
// storage collaborator. After too many consecutive write failures the
// log is abandoned and appends become no-ops until the next Begin.
type LogWriter struct {
	store Storage

	name     string
	failures int
	errors   int
}

func NewLogWriter(store Storage) *LogWriter {
	return &LogWriter{store: store}
}

func (w *LogWriter) Active() bool {
	return w.name != ""
}

func (w *LogWriter) CurrentFile() string {
	return w.name
}

// Errors returns the total storage error count, for STATUS.
func (w *LogWriter) Errors() int {
	return w.errors
}

// Begin opens a new log file unless one is already active. The filename
// continues a rolling counter over the existing files.
func (w *LogWriter) Begin() error {
	if w.name != "" {
		return nil
	}
	name, err := w.nextName()
	if err != nil {
		w.errors++
		return err
	}
	if err := w.store.Append(name, []byte(logHeader+"\n")); err != nil {
		w.errors++
		return err
	}
	w.name = name
	w.failures = 0
	log.WithField("file", name).Info("log file opened")
	return nil
}

func (w *LogWriter) nextName() (string, error) {
	names, err := w.store.List()
	if err != nil {
		return "", err
	}
	next := 1
	for _, n := range names {
		m := logNameRe.FindStringSubmatch(n)
		if m == nil {
			continue
		}
		if seq, err := strconv.Atoi(m[1]); err == nil && seq >= next {
			next = seq + 1
		}
	}
	return fmt.Sprintf("LOG%05d.CSV", next), nil
}

// Append writes one telemetry row. No-op when no log is active.
func (w *LogWriter) Append(t *Telemetry, now time.Time) {
	if w.name == "" {
		return
	}
	row := telemetryRow(t, now, true, w.errors)
	if err := w.store.Append(w.name, []byte(row+"\n")); err != nil {
		w.errors++
		w.failures++
		log.WithField("err", err).Warn("log write failed")
		if w.failures >= maxWriteFailures {
			log.WithField("file", w.name).Error("abandoning log file after repeated write failures")
			w.name = ""
		}
		return
	}
	w.failures = 0
}

// telemetryRow formats one CSV sample row. Fields this build does not
// decode from the bus (baro, advance, maf, fuel trims, o2) are zero.
func telemetryRow(t *Telemetry, now time.Time, logging bool, errCount int) string {
	loggingFlag := 0
	if logging {
		loggingFlag = 1
	}
	return fmt.Sprintf("%d,%s,%s,%.6f,%.6f,%.1f,%.1f,%d,%d,%d,%d,%d,%d,%d,0,0,0,0,0,0,%d,%d",
		now.UnixMilli(),
		now.Format("2006-01-02"),
		now.Format("15:04:05"),
		t.Latitude,
		t.Longitude,
		t.Altitude,
		t.GPSSpeed,
		t.Satellites,
		t.RPM,
		t.SpeedKmh,
		t.Throttle,
		t.Load,
		t.CoolantTemp,
		t.IntakeTemp,
		loggingFlag,
		errCount)
}

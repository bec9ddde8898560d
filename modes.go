package shiftlight

import (
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
)

// Mode is the operational mode of the whole device. It gates logging,
// streaming and LED output; the gates themselves are applied by the
// dashboard loop.
type Mode int

const (
	ModeIdle Mode = iota
	ModeRunning
	ModePaused
	ModeLiveMonitor
	ModeDumping
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeRunning:
		return "running"
	case ModePaused:
		return "paused"
	case ModeLiveMonitor:
		return "live-monitor"
	case ModeDumping:
		return "dumping"
	}
	return "unknown"
}

// Letter is the single-character mode tag used in STATUS replies.
func (m Mode) Letter() string {
	switch m {
	case ModeRunning:
		return "R"
	case ModePaused:
		return "P"
	case ModeLiveMonitor:
		return "L"
	case ModeDumping:
		return "D"
	}
	return "I"
}

const helpText = "Commands: START|S STOP|PAUSE|X LIVE DUMP|D [file] LIST|I STATUS|T HELP|?"

// ModeMachine applies host commands to the operational mode. Every
// (mode, command) pair has a defined outcome: a transition, an
// already-there acknowledgment, or a rejection token. Replies go back
// over the command channel.
type ModeMachine struct {
	mode  Mode
	out   io.Writer
	store Storage
	logw  *LogWriter
	telem *Telemetry
}

func NewModeMachine(out io.Writer, store Storage, logw *LogWriter, telem *Telemetry) *ModeMachine {
	return &ModeMachine{
		mode:  ModeIdle,
		out:   out,
		store: store,
		logw:  logw,
		telem: telem,
	}
}

func (m *ModeMachine) Mode() Mode {
	return m.mode
}

func (m *ModeMachine) Apply(cmd Command) {
	switch cmd.Kind {
	case CmdStart:
		m.start()
	case CmdPause:
		m.pause()
	case CmdLive:
		m.live()
	case CmdDump:
		m.dump(cmd.Arg)
	case CmdStatus:
		m.status()
	case CmdList:
		m.list()
	case CmdHelp:
		m.reply(helpText)
	case CmdOverflow:
		m.reply("ERR:LINE_TOO_LONG")
	default:
		m.reply("? " + cmd.Raw)
	}
}

func (m *ModeMachine) setMode(mode Mode) {
	if mode == m.mode {
		return
	}
	log.WithField("from", m.mode).WithField("to", mode).Info("mode change")
	m.mode = mode
}

func (m *ModeMachine) start() {
	switch m.mode {
	case ModeRunning:
		m.reply("ALREADY_RUNNING")
	case ModeLiveMonitor:
		m.reply("ERR:IN_LIVE_MODE")
	default:
		// a failed log open leaves logging off but the lights on
		if err := m.logw.Begin(); err != nil {
			log.WithField("err", err).Error("unable to open log file")
		}
		m.setMode(ModeRunning)
		m.reply("OK")
	}
}

func (m *ModeMachine) pause() {
	switch m.mode {
	case ModeIdle:
		m.reply("ERR:NOT_RUNNING")
	case ModePaused:
		m.reply("ALREADY_PAUSED")
	default:
		m.setMode(ModePaused)
		m.reply("OK")
	}
}

func (m *ModeMachine) live() {
	if m.mode == ModeLiveMonitor {
		m.reply("ALREADY_LIVE")
		return
	}
	m.setMode(ModeLiveMonitor)
	m.reply("LIVE")
}

// dump transfers a stored file over the command channel. Illegal while
// logging is active; the mode held before the transfer is restored when
// it completes.
func (m *ModeMachine) dump(arg string) {
	switch m.mode {
	case ModeRunning:
		m.reply("ERR:LOGGING_ACTIVE")
		return
	case ModeLiveMonitor:
		m.reply("ERR:IN_LIVE_MODE")
		return
	}

	name := arg
	if name == "" {
		name = m.logw.CurrentFile()
	}
	if name == "" {
		m.reply("ERR:NO_ACTIVE_LOG")
		return
	}

	prev := m.mode
	m.setMode(ModeDumping)
	defer m.setMode(prev)

	rc, err := m.store.Open(name)
	if err != nil {
		m.reply("ERR:NO_FILE")
		return
	}
	defer rc.Close()
	if _, err := io.Copy(m.out, rc); err != nil {
		log.WithField("err", err).WithField("file", name).Error("dump failed")
		return
	}
	m.reply("DONE")
}

func (m *ModeMachine) status() {
	sd := "N"
	var free uint64
	if m.store != nil {
		if f, err := m.store.Free(); err == nil {
			sd = "Y"
			free = f
		}
	}
	file := m.logw.CurrentFile()
	if file == "" {
		file = "-"
	}
	m.reply(fmt.Sprintf("St:%s SD:%s F:%s Free:%dKB RPM:%d Err:%d",
		m.mode.Letter(), sd, file, free/1024, m.telem.RPM, m.logw.Errors()))
}

func (m *ModeMachine) list() {
	names, err := m.store.List()
	if err != nil {
		log.WithField("err", err).Error("unable to list files")
		m.reply("Files:0")
		return
	}
	m.reply(fmt.Sprintf("Files:%d", len(names)))
	for _, n := range names {
		m.reply(n)
	}
}

func (m *ModeMachine) reply(line string) {
	if _, err := io.WriteString(m.out, line+"\n"); err != nil {
		log.WithField("err", err).Warn("unable to write reply")
	}
}

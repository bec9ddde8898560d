package shiftlight

import (
	"strings"
	"time"
)

type CommandKind int

const (
	CmdUnknown CommandKind = iota
	CmdStart
	CmdPause
	CmdLive
	CmdStatus
	CmdList
	CmdDump
	CmdHelp
	CmdOverflow
)

// Command is one parsed instruction from the host. Consumed immediately
// after parse.
type Command struct {
	Kind CommandKind
	Arg  string
	Raw  string
}

const (
	maxLineLen         = 256
	maxPendingCommands = 8
	minCommandInterval = 50 * time.Millisecond
)

// CommandProtocol is the line-oriented ASCII parser over the host
// serial channel. Lines are bounded; a runaway line is dropped wholesale
// up to its terminator. Completed commands queue up but are released no
// faster than one per minCommandInterval.
type CommandProtocol struct {
	buf        []byte
	discarding bool
	pending    []Command
	lastIssued time.Time
}

func NewCommandProtocol() *CommandProtocol {
	return &CommandProtocol{
		buf: make([]byte, 0, maxLineLen),
	}
}

// Feed consumes raw bytes from the command channel, queueing any
// completed lines.
func (p *CommandProtocol) Feed(data []byte) {
	for _, b := range data {
		switch {
		case b == '\n' || b == '\r':
			if p.discarding {
				p.discarding = false
				continue
			}
			if len(p.buf) == 0 {
				continue
			}
			p.queue(ParseCommand(string(p.buf)))
			p.buf = p.buf[:0]
		case p.discarding:
		case len(p.buf) >= maxLineLen:
			p.buf = p.buf[:0]
			p.discarding = true
			p.queue(Command{Kind: CmdOverflow})
		default:
			p.buf = append(p.buf, b)
		}
	}
}

func (p *CommandProtocol) queue(cmd Command) {
	if len(p.pending) >= maxPendingCommands {
		// host is flooding; drop quietly
		return
	}
	p.pending = append(p.pending, cmd)
}

// Next releases the next queued command once the inter-command interval
// has elapsed.
func (p *CommandProtocol) Next(now time.Time) (Command, bool) {
	if len(p.pending) == 0 {
		return Command{}, false
	}
	if !p.lastIssued.IsZero() && now.Sub(p.lastIssued) < minCommandInterval {
		return Command{}, false
	}
	cmd := p.pending[0]
	p.pending = p.pending[1:]
	p.lastIssued = now
	return cmd, true
}

// ParseCommand tokenizes one complete line. Case-insensitive; long
// tokens may carry an argument, single-character aliases only match a
// bare line (except D, which mirrors DUMP's optional filename).
func ParseCommand(line string) Command {
	raw := strings.TrimSpace(line)
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return Command{Kind: CmdUnknown, Raw: raw}
	}
	verb := strings.ToUpper(fields[0])
	arg := strings.Join(fields[1:], " ")
	bare := arg == ""

	switch verb {
	case "START", "S":
		if bare {
			return Command{Kind: CmdStart, Raw: raw}
		}
	case "STOP", "PAUSE", "X":
		if bare {
			return Command{Kind: CmdPause, Raw: raw}
		}
	case "LIVE":
		if bare {
			return Command{Kind: CmdLive, Raw: raw}
		}
	case "STATUS", "T":
		if bare {
			return Command{Kind: CmdStatus, Raw: raw}
		}
	case "LIST", "I":
		if bare {
			return Command{Kind: CmdList, Raw: raw}
		}
	case "DUMP", "D":
		return Command{Kind: CmdDump, Arg: arg, Raw: raw}
	case "HELP", "?":
		if bare {
			return Command{Kind: CmdHelp, Raw: raw}
		}
	}
	return Command{Kind: CmdUnknown, Raw: raw}
}

// Package shell provides the interactive command line of wpan-shell.
package shell

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chzyer/readline"

	"github.com/lrwpan/lrwpan-go/pkg/channel"
	"github.com/lrwpan/lrwpan-go/pkg/ieee802154"
	"github.com/lrwpan/lrwpan-go/pkg/mgmt"
	"github.com/lrwpan/lrwpan-go/pkg/pan"
	"github.com/lrwpan/lrwpan-go/pkg/scan"
)

// Shell runs management commands against one interface.
type Shell struct {
	m *mgmt.Manager

	mu  sync.Mutex
	out io.Writer

	// Scans run in the background so cancel can be issued meanwhile.
	scans sync.WaitGroup
}

// New creates a shell for m writing to out. Run replaces out with the
// readline terminal.
func New(m *mgmt.Manager, out io.Writer) *Shell {
	s := &Shell{m: m, out: out}
	m.OnEvent(s.handleEvent)
	return s
}

// Run starts the interactive command loop.
func (s *Shell) Run(ctx context.Context, cancel context.CancelFunc) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "wpan> ",
		HistoryFile:     "",
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	s.mu.Lock()
	s.out = rl.Stdout()
	s.mu.Unlock()

	s.printHelp()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			s.printf("Exiting...\n")
			cancel()
			return nil
		}

		if !s.Execute(ctx, line) {
			s.printf("Exiting...\n")
			cancel()
			return nil
		}
	}
}

var completer = readline.NewPrefixCompleter(
	readline.PcItem("help"),
	readline.PcItem("ack", readline.PcItem("on"), readline.PcItem("off")),
	readline.PcItem("scan", readline.PcItem("active"), readline.PcItem("passive")),
	readline.PcItem("cancel"),
	readline.PcItem("assoc"),
	readline.PcItem("disassoc"),
	readline.PcItem("send"),
	readline.PcItem("state"),
	readline.PcItem("stats"),
	readline.PcItem("save"),
	readline.PcItem("restore"),
	readline.PcItem("linkdown"),
	readline.PcItem("quit"),
)

// Execute runs one command line. It returns false when the user asked to quit.
func (s *Shell) Execute(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return true
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		s.printHelp()
	case "ack":
		s.cmdAck(args)
	case "scan":
		s.cmdScan(ctx, args)
	case "cancel":
		s.report(s.m.CancelScan())
	case "assoc":
		s.cmdAssoc(ctx, args)
	case "disassoc":
		s.report(s.m.Disassociate(ctx))
	case "send":
		s.cmdSend(ctx, args)
	case "state", "status":
		s.cmdState()
	case "stats":
		s.cmdStats()
	case "save":
		s.report(s.m.SaveState())
	case "restore":
		s.report(s.m.RestoreState(ctx))
	case "linkdown":
		s.m.LinkDown()
		s.printf("OK\n")
	case "quit", "exit", "q":
		return false
	default:
		s.printf("Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return true
}

// Wait blocks until background scans finish.
func (s *Shell) Wait() {
	s.scans.Wait()
}

func (s *Shell) printHelp() {
	s.printf(`
802.15.4 Management Commands:
  ack on|off                  - Request MAC ACKs on data frames
  scan active|passive <set> <ms>
                              - Scan channels, e.g. scan active 11-26 50
  cancel                      - Cancel the running scan
  assoc <pan> <ch> <addr>     - Associate, e.g. assoc 0x1234 15 0x0000
  disassoc                    - Leave the PAN
  send <addr> <hex>           - Send a data frame
  state                       - Show interface state
  stats                       - Show radio and ACK counters
  save | restore              - Persist or reload the interface state
  linkdown                    - Simulate loss of the link
  quit                        - Exit
`)
}

func (s *Shell) cmdAck(args []string) {
	if len(args) != 1 {
		s.printf("Usage: ack on|off\n")
		return
	}
	switch strings.ToLower(args[0]) {
	case "on":
		s.report(s.m.SetAck())
	case "off":
		s.report(s.m.UnsetAck())
	default:
		s.printf("Usage: ack on|off\n")
	}
}

func (s *Shell) cmdScan(ctx context.Context, args []string) {
	if len(args) != 3 {
		s.printf("Usage: scan active|passive <set> <ms>\n")
		return
	}
	kind := strings.ToLower(args[0])
	if kind != "active" && kind != "passive" {
		s.printf("Usage: scan active|passive <set> <ms>\n")
		return
	}
	set, err := channel.ParseSet(args[1])
	if err != nil {
		s.printf("Invalid channel set: %v\n", err)
		return
	}
	ms, err := strconv.ParseUint(args[2], 10, 32)
	if err != nil {
		s.printf("Invalid duration: %s\n", args[2])
		return
	}
	dwell := time.Duration(ms) * time.Millisecond

	s.scans.Add(1)
	go func() {
		defer s.scans.Done()

		var summary scan.Summary
		var err error
		if kind == "active" {
			summary, err = s.m.ActiveScan(ctx, set, dwell)
		} else {
			summary, err = s.m.PassiveScan(ctx, set, dwell)
		}
		if err != nil {
			s.printf("Scan failed: %v\n", err)
			return
		}
		status := "done"
		if summary.Cancelled {
			status = "cancelled"
		}
		s.printf("Scan %s: %d result(s), %d channel(s) in %s\n",
			status, summary.Results, summary.ChannelsScanned, summary.Elapsed.Round(time.Millisecond))
	}()
}

func (s *Shell) cmdAssoc(ctx context.Context, args []string) {
	if len(args) != 3 {
		s.printf("Usage: assoc <pan> <ch> <addr>\n")
		return
	}
	panID, err := strconv.ParseUint(args[0], 0, 16)
	if err != nil {
		s.printf("Invalid PAN ID: %s\n", args[0])
		return
	}
	ch, err := strconv.ParseUint(args[1], 10, 16)
	if err != nil {
		s.printf("Invalid channel: %s\n", args[1])
		return
	}
	addr, err := ieee802154.ParseAddress(args[2])
	if err != nil {
		s.printf("Invalid address: %v\n", err)
		return
	}

	if err := s.m.Associate(ctx, uint16(panID), uint16(ch), addr); err != nil {
		s.report(err)
		return
	}
	st := s.m.State()
	s.printf("Associated with PAN 0x%04x on channel %d, short address 0x%04x\n", st.PANID, st.Channel, st.ShortAddr)
}

func (s *Shell) cmdSend(ctx context.Context, args []string) {
	if len(args) != 2 {
		s.printf("Usage: send <addr> <hex>\n")
		return
	}
	addr, err := ieee802154.ParseAddress(args[0])
	if err != nil {
		s.printf("Invalid address: %v\n", err)
		return
	}
	payload, err := hex.DecodeString(args[1])
	if err != nil {
		s.printf("Invalid payload: %v\n", err)
		return
	}
	s.report(s.m.SendData(ctx, addr, payload))
}

func (s *Shell) cmdState() {
	st := s.m.State()
	s.printf("Interface:   %s\n", s.m.ID())
	s.printf("State:       %s\n", st.State)
	s.printf("PAN ID:      0x%04x\n", st.PANID)
	s.printf("Channel:     %d\n", st.Channel)
	if st.Associated {
		s.printf("Coordinator: %s\n", st.Coordinator)
		s.printf("Short addr:  0x%04x\n", st.ShortAddr)
	}
	s.printf("Ext addr:    %s\n", st.ExtAddr)
	s.printf("ACK mode:    %t\n", st.AckMode)
	s.printf("Sequence:    %d\n", st.Sequence)
	if st.Active != pan.OpNone {
		s.printf("Active:      %s\n", st.Active)
	}
}

func (s *Shell) cmdStats() {
	r := s.m.RadioStats()
	a := s.m.AckStats()
	s.printf("Radio: tunes=%d (failed %d) tx=%d (failed %d) rx=%d acks=%d dropped=%d\n",
		r.Tunes, r.TuneFailures, r.Transmitted, r.TransmitFailures, r.Received, r.AcksRouted, r.Dropped)
	s.printf("ACK:   received=%d timed_out=%d mismatched=%d\n", a.Received, a.TimedOut, a.Mismatched)
}

func (s *Shell) handleEvent(e mgmt.Event) {
	if e.Code != mgmt.EventScanResult || e.ScanResult == nil {
		return
	}
	r := e.ScanResult
	s.printf("  [%s] PAN 0x%04x ch %d coord %s lqi %d\n",
		e.Timestamp.Format("15:04:05.000"), r.PANID, r.Channel, r.Coordinator, r.LinkQuality)
}

func (s *Shell) report(err error) {
	switch {
	case err == nil:
		s.printf("OK\n")
	case errors.Is(err, ieee802154.ErrBusy):
		s.printf("Busy: another request is in progress\n")
	default:
		s.printf("Error: %v\n", err)
	}
}

func (s *Shell) printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, format, args...)
}

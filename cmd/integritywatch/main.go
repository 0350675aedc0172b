// integritywatch runs a one-shot exam-integrity baseline scan across
// the VM/sandbox, remote-access, and browser detection engines, then
// enters a bounded periodic monitoring loop until stopped.
//
//	integritywatch            Run a full scan+monitor session (default)
//	integritywatch install    Install the native-messaging host manifest
//	integritywatch host       Run the native-messaging host (browser-launched)
//	integritywatch history    List recent scan sessions
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"integritywatch/internal/config"
	"integritywatch/internal/coordinator"
	"integritywatch/internal/logging"
	"integritywatch/internal/nativehost"
	"integritywatch/internal/notify"
	"integritywatch/internal/platform"
	"integritywatch/internal/remoteengine"
	"integritywatch/internal/result"
	"integritywatch/internal/store"
	"integritywatch/internal/vmengine"
)

func main() {
	cmd := "run"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	var err error
	switch cmd {
	case "run", "":
		err = runSession()
	case "install":
		err = runInstall(os.Args[2:])
	case "host":
		err = runHost()
	case "history":
		err = runHistory()
	case "help", "-h", "--help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "integritywatch: unknown command %q\n", cmd)
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "integritywatch:", err)
		if err == errInterrupted {
			os.Exit(130)
		}
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: integritywatch [command]

commands:
  run       run a full scan+monitor session (default)
  install   install the native-messaging host manifest into detected browsers
  host      run the native-messaging host (invoked by the browser, not by hand)
  history   list recent scan sessions`)
}

var errInterrupted = fmt.Errorf("interrupted")

// runSession wires cfg, logger, probes, and the three engines into a
// Coordinator, runs the baseline, and — if admissible — waits for the
// monitoring loop to stop on its own, a SIGINT/SIGTERM, or the operator
// pressing enter, per spec §4.6/§5 and §6's exit-code contract.
func runSession() error {
	cfg, err := config.Load("")
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	log, closeLog, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	defer closeLog.Close()

	probes := platform.NewProbes()
	vm := vmengine.New(log, probes)
	remote := remoteengine.New(log, probes, cfg.RemoteAccess.AllowConferenceTools)

	// The browser engine is built before the coordinator generates the
	// real per-run session ID, so it gets the placeholder "pending". The
	// engine only stamps it as SessionID on its DetectionResult, which
	// the coordinator does not use for fusion; the browser result stored
	// in the session report keeps "pending" as its session ID.
	browser := coordinator.NewBrowserEngine(log, cfg, "pending")

	var hist *store.Store
	if cfg.Output.HistoryDB != "" {
		hist, err = store.Open(cfg.Output.HistoryDB)
		if err != nil {
			log.Warn("history store unavailable, continuing without it", "error", err)
			hist = nil
		} else {
			defer hist.Close()
		}
	}

	alerter, err := notify.Connect()
	if err != nil {
		log.Warn("desktop notifications unavailable", "error", err)
	}
	if alerter != nil {
		defer alerter.Close()
	}

	blockedCh := make(chan struct{}, 1)
	opts := []coordinator.Option{
		coordinator.WithHeartbeatSink(func(hb coordinator.HeartbeatPayload) {
			log.Info("heartbeat", "status", hb.Status, "remote", hb.Remote.Verdict, "browser", hb.Browser.Verdict)
			if hb.Status == "BLOCKED" {
				select {
				case blockedCh <- struct{}{}:
				default:
				}
			}
		}),
	}
	if hist != nil {
		opts = append(opts, coordinator.WithHistory(hist))
	}
	if alerter != nil {
		opts = append(opts, coordinator.WithAlerter(alerter))
	}

	coord := coordinator.New(log, cfg, vm, remote, browser, opts...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	report, err := coord.RunSession(ctx)
	if err != nil {
		return fmt.Errorf("run session: %w", err)
	}
	log.Info("baseline scan finished", "final_verdict", report.FinalVerdict)

	if report.FinalVerdict == result.VerdictBlock {
		return fmt.Errorf("baseline scan blocked the session")
	}

	// Wait for the monitoring loop to end on its own (a blocking
	// violation), a signal, or the operator pressing enter, per
	// spec §4.6's "user cancellation, or an external STOP command"
	// stop conditions.
	enterCh := make(chan struct{}, 1)
	go func() {
		bufio.NewReader(os.Stdin).ReadString('\n')
		enterCh <- struct{}{}
	}()

	interrupted := false
	select {
	case <-sigCh:
		interrupted = true
		coord.Stop()
	case <-enterCh:
		coord.Stop()
	case <-blockedCh:
		coord.Stop()
		return fmt.Errorf("monitoring blocked the session")
	case <-ctx.Done():
	}

	if interrupted {
		return errInterrupted
	}
	return nil
}

func runInstall(args []string) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable path: %w", err)
	}
	extensionID := "integritywatch-extension"
	if len(args) > 0 {
		extensionID = args[0]
	}
	installed, err := nativehost.InstallManifests(exe, extensionID)
	if err != nil {
		return fmt.Errorf("install native-messaging manifests: %w", err)
	}
	for _, browser := range installed {
		fmt.Println("installed native-messaging host for", browser)
	}
	if len(installed) == 0 {
		fmt.Println("no supported browsers detected")
	}
	return nil
}

func runHost() error {
	cfg, err := config.Load("")
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	log, closeLog, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	defer closeLog.Close()

	state, err := nativehost.NewState(cfg.Output.RuntimeDir)
	if err != nil {
		return fmt.Errorf("initialize native host state: %w", err)
	}

	host := nativehost.New(log, state, os.Stdin, os.Stdout, cfg.Monitoring.MonitoringIntervalSeconds)
	return host.Run(context.Background())
}

func runHistory() error {
	cfg, err := config.Load("")
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	hist, err := store.Open(cfg.Output.HistoryDB)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer hist.Close()

	sessions, err := hist.ListRecent(20)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}
	if len(sessions) == 0 {
		fmt.Println("no recorded sessions")
		return nil
	}
	for _, s := range sessions {
		fmt.Printf("%s  %s  %s\n", s.Timestamp.Format("2006-01-02 15:04:05"), s.SessionID, s.FinalVerdict)
	}
	return nil
}

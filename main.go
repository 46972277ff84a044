package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/containerd/fifo"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/baraverkstad/journald-logging/internal/ingest"
	"github.com/baraverkstad/journald-logging/internal/lines"
	"github.com/baraverkstad/journald-logging/journal"
)

const envPrefix = "JOURNAL"

func main() {
	rootCmd := &cobra.Command{
		Use:           "journald-logging",
		Short:         "Write log records to the systemd journal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("identifier", "", "SYSLOG_IDENTIFIER of written entries")
	rootCmd.PersistentFlags().String("backend", "", "native send binding (go-systemd, ssgreg)")
	rootCmd.PersistentFlags().Bool("force", false, "write even when not running under systemd")

	rootCmd.AddCommand(newSendCmd(), newServeCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "journald-logging: %v\n", err)
		os.Exit(1)
	}
}

func newSendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send [flags] [message...]",
		Short: "Send a message, or every line read from stdin or a fifo",
		RunE:  runSend,
	}
	cmd.Flags().String("logger", "journald-logging", "LOGGER field value")
	cmd.Flags().String("priority", "info", "priority of a message given as arguments")
	cmd.Flags().String("message-id", "", "explicit MESSAGE_ID")
	cmd.Flags().Bool("auto-message-id", false, "derive MESSAGE_ID from the message")
	cmd.Flags().StringArray("field", nil, "extra KEY=value field (repeatable)")
	cmd.Flags().StringArrayP("opt", "o", nil, "line option key=value (repeatable)")
	cmd.Flags().String("fifo", "", "read lines from this named pipe instead of stdin")
	return cmd
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Accept records over HTTP on a unix socket",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := newBridge(cmd, nil)
			if err != nil {
				return err
			}
			socket, _ := cmd.Flags().GetString("socket")
			fmt.Fprintf(os.Stderr, "journald-logging: serving on %s\n", socket)
			return ingest.New(b).ListenAndServe(socket)
		},
	}
	cmd.Flags().String("socket", "journald-logging", "socket name or absolute path")
	return cmd
}

// newBridge reads the environment, applies the command line on top and
// refuses to run outside systemd unless --force is given.
func newBridge(cmd *cobra.Command, onError journal.ErrorHandler) (*journal.Bridge, error) {
	cfg, err := journal.ConfigFromEnv(envPrefix)
	if err != nil {
		return nil, err
	}
	opts := map[string]string{
		"backend":    cfg.Backend,
		"attach-env": cfg.AttachEnv,
	}
	if v, _ := cmd.Flags().GetString("identifier"); v != "" {
		opts["syslog-identifier"] = v
	} else if cfg.SyslogIdentifier != "" {
		opts["syslog-identifier"] = cfg.SyslogIdentifier
	}
	if v, _ := cmd.Flags().GetString("backend"); v != "" {
		opts["backend"] = v
	}
	if cfg, err = journal.ParseConfig(opts); err != nil {
		return nil, err
	}

	if force, _ := cmd.Flags().GetBool("force"); !force && !journal.Attached(cfg) {
		return nil, errors.Errorf("not running under systemd (%s is not set), use --force", cfg.AttachEnv)
	}
	var bopts []journal.Option
	if onError != nil {
		bopts = append(bopts, journal.WithErrorHandler(onError))
	}
	return journal.New(cfg, bopts...)
}

func runSend(cmd *cobra.Command, args []string) error {
	var failures atomic.Int64
	b, err := newBridge(cmd, func(err error, ev *journal.Event) {
		if failures.Add(1) == 1 {
			fmt.Fprintf(os.Stderr, "journald-logging: %v\n", err)
		}
	})
	if err != nil {
		return err
	}

	tmpl, err := newEventTemplate(cmd)
	if err != nil {
		return err
	}

	if len(args) > 0 {
		name, _ := cmd.Flags().GetString("priority")
		pri, err := journal.ParsePriorityName(name)
		if err != nil {
			return err
		}
		b.Handle(tmpl.event(strings.Join(args, " "), pri, nil))
	} else if err := sendLines(cmd, b, tmpl); err != nil {
		return err
	}

	if n := failures.Load(); n > 0 {
		return errors.Errorf("%d entries could not be delivered", n)
	}
	return nil
}

func sendLines(cmd *cobra.Command, b *journal.Bridge, tmpl *eventTemplate) error {
	lopts, _ := cmd.Flags().GetStringArray("opt")
	optMap, err := parsePairs(lopts, "-o")
	if err != nil {
		return err
	}
	cfg, err := lines.ParseConfig(optMap)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var in io.ReadCloser = os.Stdin
	if path, _ := cmd.Flags().GetString("fifo"); path != "" {
		f, err := fifo.OpenFifo(ctx, path, syscall.O_RDONLY|syscall.O_CREAT, 0o600)
		if err != nil {
			return errors.Wrapf(err, "opening fifo %s", path)
		}
		in = f
		// unblock the scanner on interrupt
		go func() {
			<-ctx.Done()
			f.Close()
		}()
	}
	defer in.Close()

	p := lines.NewProcessor(cfg, func(m lines.Message) {
		b.Handle(tmpl.event(m.Text, m.Priority, m.Fields))
	})
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 64*1024), cfg.MultilineMaxBytes)
	sc.Split(lines.ScanLines(cfg.MultilineMaxBytes))
	for sc.Scan() {
		p.Add(sc.Bytes())
	}
	p.Flush()
	if err := sc.Err(); err != nil && ctx.Err() == nil {
		return errors.Wrap(err, "reading input")
	}
	return nil
}

// eventTemplate holds what the command line sets on every event.
type eventTemplate struct {
	logger string
	msgID  journal.MessageIDRequest
	fields map[string]string
}

func newEventTemplate(cmd *cobra.Command) (*eventTemplate, error) {
	t := &eventTemplate{}
	t.logger, _ = cmd.Flags().GetString("logger")
	t.msgID.ID, _ = cmd.Flags().GetString("message-id")
	t.msgID.Auto, _ = cmd.Flags().GetBool("auto-message-id")
	pairs, _ := cmd.Flags().GetStringArray("field")
	var err error
	if t.fields, err = parsePairs(pairs, "--field"); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *eventTemplate) event(msg string, pri journal.Priority, fields map[string]string) *journal.Event {
	ev := &journal.Event{
		Level:   journal.LevelForPriority(pri),
		Message: msg,
		Logger:  t.logger,
	}
	journal.FillRuntime(ev)
	ctx := make(map[string]string, len(t.fields)+len(fields))
	for k, v := range fields {
		ctx[k] = v
	}
	for k, v := range t.fields {
		ctx[k] = v
	}
	if len(ctx) > 0 || t.msgID.Requested() {
		ev.Extra = &journal.Extra{MessageID: t.msgID, Context: ctx}
	}
	return ev
}

func parsePairs(pairs []string, flag string) (map[string]string, error) {
	m := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, errors.Errorf("invalid %s %q: want key=value", flag, p)
		}
		m[k] = v
	}
	return m, nil
}

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/photo-bracket/photo-bracket/bracket"
	"github.com/photo-bracket/photo-bracket/bracket/photo"
	"github.com/photo-bracket/photo-bracket/bracket/session"
	"github.com/photo-bracket/photo-bracket/bracket/trace"
	"github.com/photo-bracket/photo-bracket/tui"
)

var (
	resumeID     string // Journal ID of a session to continue
	sessionLabel string // Label stored with a new session
	logFile      string // Where logs go while the terminal judge owns the screen
)

// judgeCmd runs the terminal judge over a directory of photos
var judgeCmd = &cobra.Command{
	Use:   "judge [DIR|FILE...]",
	Short: "Judge photos interactively in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if resumeID == "" && len(args) == 0 {
			return errors.New("give at least one directory, or --resume a session")
		}

		store, err := openJournal(ctx, cfg.Journal)
		if err != nil {
			return err
		}
		defer store.Close()

		opts := []session.Option{session.WithTraceLevel(trace.TraceLevel(cfg.Judge.Trace))}
		var s *session.Session
		if resumeID != "" {
			if store == nil {
				return errors.New("--resume needs a journal; journal.driver is none")
			}
			s, err = session.Resume(ctx, store, resumeID, photo.Resolve, opts...)
		} else {
			var photos []*photo.Photo
			photos, err = photo.Scan(args, cfg.Library.ScanOptions())
			if err != nil {
				return err
			}
			if len(photos) == 0 {
				return fmt.Errorf("no photos found in %s", strings.Join(args, ", "))
			}
			label := sessionLabel
			if label == "" {
				label = strings.Join(args, ", ")
			}
			s, err = session.New(ctx, bracket.New(photo.Items(photos)...), store, label, opts...)
		}
		if err != nil {
			return err
		}
		if s.ID() != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "session %s\n", s.ID())
		}

		restore, err := redirectLogs(logFile)
		if err != nil {
			return err
		}
		model := tui.New(ctx, s, cfg.Display.Settings())
		_, runErr := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
		restore()
		s.Bracket().FlushAll()
		if runErr != nil {
			return runErr
		}

		out := cmd.OutOrStdout()
		for _, k := range model.Survivors() {
			fmt.Fprintln(out, k)
		}
		return nil
	},
}

// redirectLogs keeps log lines off the terminal judge's screen. With an
// empty path they are dropped.
func redirectLogs(path string) (restore func(), err error) {
	prev := logrus.StandardLogger().Out
	var w io.Writer = io.Discard
	var f *os.File
	if path != "" {
		if f, err = os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		w = f
	}
	logrus.SetOutput(w)
	return func() {
		logrus.SetOutput(prev)
		if f != nil {
			f.Close()
		}
	}, nil
}

func init() {
	judgeCmd.Flags().StringVar(&resumeID, "resume", "", "Continue the journaled session with this ID")
	judgeCmd.Flags().StringVar(&sessionLabel, "label", "", "Label for a new session (default: the directories given)")
	judgeCmd.Flags().StringVar(&logFile, "log-file", "", "Append logs to this file while judging")
}

// Package cli implements the linkkit command line.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"linkkit/internal/clipboard"
	"linkkit/internal/logging"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type app struct {
	out, errOut io.Writer
	clip        clipboard.Writer
	log         *logrus.Logger
	logLevel    string
}

// NewRootCommand builds the command tree writing to out and errOut.
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	return newRoot(&app{out: out, errOut: errOut, clip: clipboard.NewSystem(errOut)})
}

func newRoot(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "linkkit",
		Short:         "UTM links, QR codes and short links",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			l, err := logging.New(a.logLevel, "text", a.errOut)
			if err != nil {
				return err
			}
			a.log = l
			return nil
		},
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "log level")

	root.AddCommand(a.utmCommand(), a.shortenCommand(), a.openCommand(), a.listCommand(), a.qrCommand())
	return root
}

// Execute runs the CLI against the process arguments.
func Execute() int {
	if err := NewRootCommand(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}

// copyOut puts text on the clipboard and reports the outcome on errOut.
func (a *app) copyOut(text string) clipboard.Outcome {
	return clipboard.Copy(a.clip, text, clipboard.NotifierFunc(func(o clipboard.Outcome, msg string) {
		fmt.Fprintln(a.errOut, msg)
	}))
}

func defaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "linkkit", "links.json")
}

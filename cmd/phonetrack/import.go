package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/polkiloo/phonetrack/internal/app"
	"github.com/polkiloo/phonetrack/internal/domain/model"
)

func newImportCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "import IMAGE",
		Short: "Extract phone numbers from an image and add them after review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			image, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			return withTracker(cmd, func(ctx context.Context, tracker *app.Tracker) error {
				status, err := tracker.UploadImage(ctx, image, filepath.Base(args[0]))
				if err != nil {
					return fmt.Errorf("upload %s: %w", args[0], err)
				}
				printStatus(cmd.OutOrStdout(), status)
				if len(status.Candidates) == 0 {
					return nil
				}

				if !yes {
					ok, err := confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "Add these numbers?")
					if err != nil {
						return err
					}
					if !ok {
						_, err := tracker.ResetImport()
						return err
					}
				}

				status, err = tracker.ConfirmImport(ctx)
				if err != nil {
					return fmt.Errorf("confirm: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), status.Message)
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm the extracted numbers without asking")
	return cmd
}

func printStatus(w io.Writer, status model.ImportStatus) {
	fmt.Fprintln(w, status.Message)
	for _, n := range status.Candidates {
		fmt.Fprintf(w, "  %s\n", n)
	}
}

func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N] ", question)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

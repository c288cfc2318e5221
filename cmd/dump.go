package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/smazurov/scalerwatch/internal/recorder"
	"github.com/smazurov/scalerwatch/internal/report"
	"github.com/spf13/cobra"
)

// Dump writes up to limit recorded reports from r to w as JSON lines.
// A limit of zero dumps everything. It returns the number written.
func Dump(r io.Reader, w io.Writer, limit int, changesOnly bool) (int, error) {
	rd, err := recorder.NewReader(r)
	if err != nil {
		return 0, err
	}

	enc := json.NewEncoder(w)
	n := 0
	for limit <= 0 || n < limit {
		rec, err := rd.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return n, err
		}
		var rep report.Report
		if err := rec.Decode(&rep); err != nil {
			return n, fmt.Errorf("record %d: %w", n+1, err)
		}
		if changesOnly && !rep.Changed {
			continue
		}
		if err := enc.Encode(rep); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// CreateDumpCmd creates the dump command.
func CreateDumpCmd() *cobra.Command {
	var limit int
	var changesOnly bool

	cmd := &cobra.Command{
		Use:   "dump [recording]",
		Short: "Print a recording as JSON lines",
		Args:  cobra.ExactArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			f, err := os.Open(args[0])
			if err != nil {
				fmt.Fprintln(os.Stderr, "dump:", err)
				os.Exit(1)
			}
			defer f.Close()

			if _, err := Dump(f, os.Stdout, limit, changesOnly); err != nil {
				fmt.Fprintln(os.Stderr, "dump:", err)
				f.Close()
				os.Exit(1)
			}
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Stop after this many reports (0 for all)")
	cmd.Flags().BoolVar(&changesOnly, "changes", false, "Only print reports where the frame changed")
	return cmd
}

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ecolens/binscan/internal/acquire"
	"github.com/ecolens/binscan/internal/report"
	"github.com/ecolens/binscan/internal/scan"
	"github.com/ecolens/binscan/internal/session"
	"github.com/ecolens/binscan/internal/storage"
	"github.com/spf13/cobra"
)

func newScanCmd() *cobra.Command {
	var writeReport bool

	cmd := &cobra.Command{
		Use:   "scan FILE",
		Short: "Classify a single image file",
		Long: `Submits one image to the configured scan endpoint and prints the
classification. Set SCAN_API_URL to override the endpoint.`,
		Example: `  # Classify a photo
  binscan scan leaf.png

  # Classify and export the report document
  binscan scan leaf.png --report`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer file.Close()

			previews := storage.New()
			manager := acquire.NewManager(previews, nil)
			ctl := session.New(previews.Delete, nil)

			payload, err := manager.PickFile(filepath.Base(args[0]), file)
			if err != nil {
				return err
			}

			gen, err := ctl.BeginScan(payload.Name, payload.Preview)
			if err != nil {
				return err
			}

			submitter := scan.NewSubmitter(scan.ResolveBaseURL())
			// One-shot invocation; no progress display to pace.
			submitter.FloorMin = time.Millisecond
			submitter.FloorMax = 2 * time.Millisecond

			if err := submitter.Submit(cmd.Context(), ctl, gen, payload.Data, payload.Name); err != nil {
				return err
			}

			snap := ctl.Snapshot()
			res := snap.Result
			fmt.Printf("File:        %s\n", snap.SourceFile)
			fmt.Printf("Detected:    %t\n", res.Detected)
			fmt.Printf("Label:       %s\n", res.Label)
			fmt.Printf("Confidence:  %d%%\n", report.ConfidencePercent(res.Confidence))
			for _, suggestion := range res.Suggestions {
				fmt.Printf("Suggestion:  %s\n", suggestion)
			}

			if writeReport {
				doc := report.Build(snap.SourceFile, snap.Preview, res, time.Now())
				path, err := report.Save(".", doc)
				if err != nil {
					return err
				}
				fmt.Printf("Report:      %s\n", path)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&writeReport, "report", false, "Write the scan report JSON next to the image")

	return cmd
}

package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/traqcheck/intake-client/internal/batch"
	"github.com/traqcheck/intake-client/internal/coordinator"
	"github.com/traqcheck/intake-client/internal/domain"
	"github.com/traqcheck/intake-client/internal/gateway"
	"github.com/traqcheck/intake-client/internal/poller"
	"github.com/traqcheck/intake-client/internal/session"
)

// newRootCommand builds the traqcheck command tree. Command output goes to
// out and logs to logOut.
func newRootCommand(out, logOut io.Writer) *cobra.Command {
	var opts globalOptions
	var app *application

	root := &cobra.Command{
		Use:          "traqcheck",
		Short:        "Upload resumes and follow candidate extraction",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			app, err = initializeApp(opts, out, logOut)
			if err != nil {
				return err
			}
			app.startMetrics(cmd.Context())
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil {
				app.stopMetrics()
			}
		},
	}
	root.SetOut(out)
	root.SetErr(logOut)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to a config file (default ./traqcheck.yaml if present)")
	flags.StringVar(&opts.baseURL, "base-url", "", "backend base URL, overrides api.base_url")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")

	appFn := func() *application { return app }
	root.AddCommand(
		newUploadCommand(appFn),
		newWatchCommand(appFn),
		newListCommand(appFn),
		newShowCommand(appFn),
		newRequestDocsCommand(appFn),
		newSubmitDocsCommand(appFn),
		newReparseCommand(appFn),
		newBatchCommand(appFn),
	)
	return root
}

func newUploadCommand(appFn func() *application) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a resume and watch extraction until it settles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFn()
			file, err := domain.LoadFile(args[0])
			if err != nil {
				return err
			}

			sess := app.newSession()
			defer closeSession(app, sess)
			defer app.renderProgress()()

			result, h, err := sess.Upload(cmd.Context(), file)
			if err != nil {
				return explainError(file.Name, err)
			}
			fmt.Fprintf(app.out, "uploaded %s as %s\n", file.Name, result.ID)
			return waitAndPrint(cmd, app, sess, h)
		},
	}
}

func newWatchCommand(appFn func() *application) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <id>",
		Short: "Poll an existing candidate until extraction settles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFn()
			sess := app.newSession()
			defer closeSession(app, sess)
			defer app.renderProgress()()

			h, err := sess.Track(cmd.Context(), domain.CandidateID(args[0]))
			if err != nil {
				return err
			}
			return explainError(args[0], waitAndPrint(cmd, app, sess, h))
		},
	}
}

func newListCommand(appFn func() *application) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List candidates, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFn()
			summaries, err := app.client.ListSummaries(cmd.Context())
			if err != nil {
				return err
			}
			printSummaries(app.out, summaries)
			return nil
		},
	}
}

func newShowCommand(appFn func() *application) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Read a candidate once",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFn()
			coord, view := app.newCoordinator()
			if err := coord.Refresh(cmd.Context(), domain.CandidateID(args[0])); err != nil {
				return explainError(args[0], err)
			}
			printSnapshot(app.out, view.Snapshot(), view.Preview())
			return nil
		},
	}
}

func newRequestDocsCommand(appFn func() *application) *cobra.Command {
	var (
		channel   string
		sendNow   bool
		uploadURL string
	)

	cmd := &cobra.Command{
		Use:   "request-docs <id>",
		Short: "Generate a PAN/Aadhaar request for a candidate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFn()
			id := domain.CandidateID(args[0])
			defaults := app.config.Requests

			if !cmd.Flags().Changed("channel") {
				channel = defaults.Channel
			}
			ch, err := domain.ParseChannel(channel)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("send-now") {
				sendNow = defaults.SendNow
			}
			if uploadURL == "" {
				uploadURL = defaults.UploadURL(id.String())
			}

			coord, view := app.newCoordinator()
			result, err := coord.RequestDocuments(cmd.Context(), id, domain.RequestOptions{
				Channel:      ch,
				UploadURL:    uploadURL,
				OrgName:      defaults.OrgName,
				SupportEmail: defaults.SupportEmail,
				SendNow:      sendNow,
			})
			if err != nil && !errors.Is(err, coordinator.ErrReconcileFailed) {
				return err
			}

			fmt.Fprintf(app.out, "request %s created\n\n", result.ID)
			preview := view.Preview()
			if preview == nil {
				preview = &result.Preview
			}
			printPreview(app.out, preview)
			return err
		},
	}

	cmd.Flags().StringVar(&channel, "channel", "auto", "delivery channel: auto, email or sms")
	cmd.Flags().BoolVar(&sendNow, "send-now", false, "ask the backend to deliver the request immediately")
	cmd.Flags().StringVar(&uploadURL, "upload-url", "", "link the candidate uses to upload (default from requests.upload_url_template)")
	return cmd
}

func newSubmitDocsCommand(appFn func() *application) *cobra.Command {
	var panPath, aadhaarPath string

	cmd := &cobra.Command{
		Use:   "submit-docs <id>",
		Short: "Submit PAN and/or Aadhaar files for a candidate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFn()
			sel := &coordinator.Selection{}
			if panPath != "" {
				f, err := domain.LoadFile(panPath)
				if err != nil {
					return err
				}
				sel.SetPAN(&f)
			}
			if aadhaarPath != "" {
				f, err := domain.LoadFile(aadhaarPath)
				if err != nil {
					return err
				}
				sel.SetAadhaar(&f)
			}

			coord, view := app.newCoordinator()
			result, err := coord.SubmitDocuments(cmd.Context(), domain.CandidateID(args[0]), sel)
			if err != nil && !errors.Is(err, coordinator.ErrReconcileFailed) {
				return err
			}

			printSaved(app.out, result.Saved)
			if docs := view.Documents(); len(docs) > 0 {
				fmt.Fprintf(app.out, "\n%d document(s) on file\n", len(docs))
			}
			return err
		},
	}

	cmd.Flags().StringVar(&panPath, "pan", "", "PAN card file")
	cmd.Flags().StringVar(&aadhaarPath, "aadhaar", "", "Aadhaar card file")
	return cmd
}

func newReparseCommand(appFn func() *application) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "reparse <id>",
		Short: "Re-queue extraction for a candidate's stored resume",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFn()
			id := domain.CandidateID(args[0])

			coord, _ := app.newCoordinator()
			result, err := coord.Reparse(cmd.Context(), id)
			if err != nil && !errors.Is(err, coordinator.ErrReconcileFailed) {
				return err
			}
			fmt.Fprintf(app.out, "%s  status: %s\n", id, result.Status)
			if !watch {
				return err
			}

			sess := app.newSession()
			defer closeSession(app, sess)
			defer app.renderProgress()()

			h, err := sess.Track(cmd.Context(), id)
			if err != nil {
				return err
			}
			return waitAndPrint(cmd, app, sess, h)
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "poll until the new extraction settles")
	return cmd
}

func newBatchCommand(appFn func() *application) *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "batch <file>...",
		Short: "Upload several resumes concurrently and wait for each",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFn()
			files := make([]domain.File, 0, len(args))
			for _, path := range args {
				f, err := domain.LoadFile(path)
				if err != nil {
					return err
				}
				files = append(files, f)
			}

			cfg := batch.WorkerPoolConfig{WorkerCount: app.config.Batch.Workers}
			if cmd.Flags().Changed("workers") {
				cfg.WorkerCount = workers
			}
			pool := batch.NewWorkerPool(app.sessionFactory(), cfg, app.logger)

			results, err := pool.Run(cmd.Context(), files)
			if err != nil {
				return err
			}
			printBatchResults(app.out, results)

			failed := 0
			for _, r := range results {
				if !r.OK() {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent uploads (default batch.workers)")
	return cmd
}

// waitAndPrint blocks until h ends, then prints the final view.
func waitAndPrint(cmd *cobra.Command, app *application, sess *session.Session, h *poller.Handle) error {
	err := h.Wait(cmd.Context())
	fmt.Fprintln(app.out)
	printSnapshot(app.out, sess.View().Snapshot(), sess.View().Preview())
	return err
}

// explainError names what a backend rejection refers to: the candidate on
// 404, the file on 413.
func explainError(subject string, err error) error {
	switch {
	case gateway.IsNotFound(err):
		return fmt.Errorf("no candidate %s: %w", subject, err)
	case gateway.IsStatus(err, http.StatusRequestEntityTooLarge):
		return fmt.Errorf("%s is larger than the backend accepts: %w", subject, err)
	}
	return err
}

func closeSession(app *application, sess *session.Session) {
	if err := sess.Close(); err != nil {
		app.logger.Warn("failed to close session", "error", err)
	}
}

/*
Package cli provides command-line helpers for the simparse command.

Output Formatting:

Command results can be written as text, JSON, YAML or CSV:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, results); err != nil {
		return err
	}

CSV output requires a value implementing Rows.

Progress Reporting:

Linting a large rule directory reports progress on stderr:

	progress := cli.NewProgressReporter(os.Stderr)
	progress.Start(int64(len(files)))
	for i, f := range files {
		lint(f)
		progress.Update(int64(i + 1))
	}
	progress.Finish()

Signal Handling:

	ctx, stop := cli.SetupSignalHandler()
	defer stop()
	// ctx is cancelled on SIGINT or SIGTERM

Exit Codes:

ExitCode maps a command error to the process exit status. Commands that
have already printed their diagnostics return an ExitError with Silent
set so main does not print them twice.
*/
package cli

/*
Package cli provides command-line interface utilities for Skywatch.

The cli package includes output formatters, typed command errors, and signal
handling helpers used by the skywatch command.

Output Formatting:

The cli package supports text and JSON output for displaying command results:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, entries); err != nil {
		return err
	}

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx := cli.SetupSignalHandler()
	// Use ctx for the acquisition loops; they exit between cycles
	// when it is cancelled.
*/
package cli

/*
Package cli provides command-line interface utilities for policylint.

The cli package includes the output formatters used to render lint results,
typed errors for command and configuration failures, and the signal-handling
context used by watch mode.

Output Formatting:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, report); err != nil {
		return err
	}

Signal Handling:

	ctx := cli.SetupSignalHandler()
	// ctx is cancelled on SIGINT/SIGTERM
*/
package cli

package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/offloadmywork/funee/internal/watch"
	"github.com/offloadmywork/funee/pkg/bundler"
)

var buildCmd = &cobra.Command{
	Use:   "build [entry]",
	Short: "Bundle a program starting from a single entry export",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBuild,
}

func init() {
	buildCmd.Flags().StringP("export", "e", "default", "name of the entry module's export the bundle calls")
	buildCmd.Flags().StringP("output", "o", "", "write the bundle here instead of stdout")
	buildCmd.Flags().Int("max-macro-iterations", 0, "bound on macro-calls-macro recursion (default: the runtime's own default)")
	buildCmd.Flags().Bool("watch", false, "re-run the build whenever a visited file changes")
	_ = viper.BindPFlag("build.export", buildCmd.Flags().Lookup("export"))
	_ = viper.BindPFlag("build.output", buildCmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("build.maxMacroIterations", buildCmd.Flags().Lookup("max-macro-iterations"))
	_ = viper.BindPFlag("build.watch", buildCmd.Flags().Lookup("watch"))
}

func runBuild(cmd *cobra.Command, args []string) error {
	entry := "./main.ts"
	if len(args) == 1 {
		entry = args[0]
	} else if files := viper.GetStringSlice("build.files"); len(files) > 0 {
		entry = files[0]
	}

	entryURI, err := expandPath(entry)
	if err != nil {
		return fmt.Errorf("resolving entry path %q: %w", entry, err)
	}

	opts := bundler.Options{
		EntryURI:           entryURI,
		EntryExportName:    viper.GetString("build.export"),
		MaxMacroIterations: viper.GetInt("build.maxMacroIterations"),
	}

	output := viper.GetString("build.output")

	if viper.GetBool("build.watch") {
		return runWatch(opts, output)
	}

	result := runOnce(opts)
	if result.Code == "" {
		cmd.SilenceErrors = true
		return errBuildFailed
	}
	return writeResult(result, output)
}

// errBuildFailed is a sentinel so cobra reports a non-zero exit without
// printing a redundant "Error:" line -- runOnce already printed the
// diagnostics via pterm.
var errBuildFailed = errors.New("build failed")

// runOnce runs a single build and reports its summary (file count, macro
// expansion count, output size), the same shape bennypowers-cem's
// generate command reports duration and bennypowers-cem's watch session
// reports regeneration summaries.
func runOnce(opts bundler.Options) bundler.Result {
	start := time.Now()
	result := bundler.Build(opts)
	duration := time.Since(start)

	for _, msg := range result.Messages {
		if msg.URI != "" {
			pterm.Error.Printf("%s (%s)\n", msg.Text, msg.URI)
		} else {
			pterm.Error.Println(msg.Text)
		}
	}

	if result.Code == "" {
		pterm.Error.Printf("Build failed in %s\n", duration)
		return result
	}

	pterm.Success.Printf(
		"Bundled %d file(s), expanded %d macro call(s), wrote %d bytes in %s\n",
		len(result.VisitedURIs), result.MacroExpansions, len(result.Code), duration,
	)
	return result
}

func writeResult(result bundler.Result, output string) error {
	if output == "" {
		fmt.Println(result.Code)
		return nil
	}
	if err := os.WriteFile(output, []byte(result.Code), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}
	pterm.Info.Printf("Wrote %s\n", output)
	return nil
}

// runWatch re-runs runOnce whenever internal/watch reports a change to any
// file the last build's source graph visited, per spec.md §5: there is no
// incremental compilation, every change re-runs the whole pipeline.
func runWatch(opts bundler.Options, output string) error {
	w, err := watch.New(watch.DefaultDebounce)
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer w.Close()

	sessionID := w.SessionID()
	pterm.Info.Printf("[%s] watching %s (Ctrl+C to stop)\n", sessionID, opts.EntryURI)

	result := runOnce(opts)
	_ = writeResult(result, output)
	w.SetPaths(append([]string{opts.EntryURI}, result.VisitedURIs...))

	for {
		select {
		case changed := <-w.Events():
			pterm.Info.Printf("[%s] change detected (%d path(s)), rebuilding...\n", sessionID, len(changed))
			result = runOnce(opts)
			_ = writeResult(result, output)
			w.SetPaths(append([]string{opts.EntryURI}, result.VisitedURIs...))
		case werr := <-w.Errors():
			pterm.Warning.Printf("[%s] watcher error: %v\n", sessionID, werr)
		}
	}
}

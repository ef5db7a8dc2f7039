// Command funee is the CLI entry point: `funee build [entry]` runs the
// whole pipeline once, `funee build --watch` re-runs it on every change to
// a file the last build's source graph visited (spec.md §5). Laid out the
// same way the teacher's cmd/esbuild is laid out -- one cmd/<binary>
// directory holding package main -- except the command tree itself is
// built with cobra/viper (SPEC_FULL.md §2.3), the way bennypowers-cem and
// jinterlante1206-AleutianLocal build theirs.
package main

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}

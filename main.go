// =============================================================================
// txtmerge - Main Entry Point
// =============================================================================
//
// USAGE:
//   txtmerge merge       - Merge source files into a target file
//   txtmerge months      - List the months present in a file
//   txtmerge duplicates  - Report duplicate records across files
//   txtmerge version     - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : Decoding, classification, duplicate detection, merging
//   - pkg/       : File and report utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/txtmerge/cmd"
)

func main() {
	cmd.Execute()
}

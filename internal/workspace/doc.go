// Package workspace manages the directories coderunner works in.
//
// Persistent mode uses the configured data directory as is: the script, the
// virtual environment and the repository clone live there and are left for
// the next step of the pipeline.
//
// Ephemeral mode creates a unique directory (coderunner-<timestamp>-<random>)
// for the sync actions that only need a throwaway clone, and removes it on
// Cleanup.
package workspace

// Package git fetches user repositories with the external git binary.
//
// Every operation resolves credentials first, runs git through the process
// executor with a per-child environment override, and releases the
// credentials (the SSH key file) before returning. go-git is used only to
// parse endpoints and reference names.
package git

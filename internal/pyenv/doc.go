// Package pyenv prepares the Python environment a script runs in: the
// virtual environment, its dependencies and the script file itself. All
// work is delegated to the uv binary through the process executor.
package pyenv

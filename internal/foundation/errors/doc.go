// Package errors provides the classified error primitives used across coderunner.
//
// Every failure that leaves a component is a ClassifiedError built with the fluent
// ErrorBuilder. The category decides how the CLI reports it, the message is the
// human label and the detail carries diagnostic payload such as a stderr tail.
//
// Key features:
//   - ErrorCategory: config, network, not_found, execution, ...
//   - ErrorSeverity: Impact level (fatal, error, warning, info)
//   - RetryStrategy: always never or user action here, nothing is retried
//   - ClassifiedError: Structured error with category, detail and context
//   - CLIErrorAdapter: exit code mapping and presentation
//
// Example usage:
//
//	err := errors.ExecutionError("Installation failed.").
//		WithDetail(strings.Join(tail, "\n")).
//		WithContext("exit_code", 7).
//		Build()
package errors

// Package formatting resolves subject and body formatters by name.
//
// A formatter is any default-constructible type whose pointer or value
// implements Formatter. Formatters are registered under a name at process
// startup and a fresh instance is created on every resolution:
//
//	type Upper struct{}
//
//	func (Upper) Format(value string) string { return strings.ToUpper(value) }
//
//	func init() {
//		formatting.Register("Upper", Upper{})
//	}
//
// Resolving a name that was never registered fails with
// UnknownFormatterError. Resolving a registered type that does not
// implement Formatter fails with FormatterContractViolationError.
package formatting

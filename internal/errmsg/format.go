// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

const (
	// Image operations
	OpImageResolve Op = "find image"
	OpImageProbe   Op = "read image size"
	OpImageDecode  Op = "decode image"
	OpImageResize  Op = "resize image"
	OpImageLoad    Op = "load images"

	// Cache operations
	OpCacheOpen  Op = "open image cache"
	OpCacheWrite Op = "write image cache"
	OpIndexOpen  Op = "open image size index"

	// Initialization
	OpConfigLoad Op = "load configuration"
	OpLogOpen    Op = "open log file"
	OpInitialize Op = "initialize viewer"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}

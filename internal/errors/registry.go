package errors

import "sort"

// Error codes.
const (
	CodeMisconfiguredSelector = "E001"
	CodeElementNotFound       = "E002"
	CodeAssertionFailure      = "E003"
	CodeStaleContextMutation  = "E004"
	CodeEmptyTest             = "E005"
	CodeWaitTimeout           = "E006"
	CodeAsyncWorkFailed       = "E007"
	CodeHandlerNotFound       = "E008"
	CodeDuplicateSelector     = "E009"
	CodeRenderFailed          = "E010"
	CodeInvalidConfig         = "E020"
	CodeConfigNotFound        = "E021"
	CodeConfigExists          = "E022"
	CodeTestsFailed           = "E030"
)

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	CodeMisconfiguredSelector: {
		Category: CategorySelector,
		Message:  "Misconfigured selector",
		Detail:   "The selector name is not registered. Register it with selector.Register before resolving it.",
	},
	CodeElementNotFound: {
		Category: CategoryRender,
		Message:  "Element not found",
		Detail:   "The selector matched no element in the container, but the action requires exactly one.",
	},
	CodeAssertionFailure: {
		Category: CategoryAssertion,
		Message:  "Assertion failed",
	},
	CodeStaleContextMutation: {
		Category: CategoryContext,
		Message:  "Stale context mutation",
		Detail:   "A step was added after the test context was finalized. Arrange and assert steps must be declared in the describe block, not inside a running test.",
	},
	CodeEmptyTest: {
		Category: CategoryContext,
		Message:  "Test has no assertions",
		Detail:   "AsTest was called without any ToRender, ToNotRender or ToCall step.",
	},
	CodeWaitTimeout: {
		Category: CategoryAsync,
		Message:  "Timed out waiting for pending work",
		Detail:   "Asynchronous work started by the component did not settle before the wait timeout.",
	},
	CodeAsyncWorkFailed: {
		Category: CategoryAsync,
		Message:  "Asynchronous work failed",
	},
	CodeHandlerNotFound: {
		Category: CategoryRender,
		Message:  "Handler not found",
		Detail:   "Neither the element nor any of its ancestors handles this event.",
	},
	CodeDuplicateSelector: {
		Category: CategorySelector,
		Message:  "Duplicate selector name",
		Detail:   "Selector names must be unique within a registry.",
	},
	CodeRenderFailed: {
		Category: CategoryRender,
		Message:  "Render failed",
	},
	CodeInvalidConfig: {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
	},
	CodeConfigNotFound: {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
	},
	CodeConfigExists: {
		Category: CategoryConfig,
		Message:  "Configuration file already exists",
	},
	CodeTestsFailed: {
		Category: CategoryCLI,
		Message:  "Tests failed",
	},
}

// GetAllCodes returns all registered error codes sorted.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

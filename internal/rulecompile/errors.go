package rulecompile

import "fmt"

// ErrorCode names the kind of compile failure.
type ErrorCode string

const (
	CodeUnknownField       ErrorCode = "unknown_field"
	CodeBadType            ErrorCode = "bad_type"
	CodeUnknownGateway     ErrorCode = "unknown_gateway"
	CodeEmptyValues        ErrorCode = "empty_values"
	CodeInvalidRegex       ErrorCode = "invalid_regex"
	CodeInvalidTimezone    ErrorCode = "invalid_timezone"
	CodeBadDecimal         ErrorCode = "bad_decimal"
	CodeWeightsSumZero     ErrorCode = "weights_sum_zero"
	CodeInvalidPixKeyType  ErrorCode = "invalid_pix_key_type"
	CodeUnknownConditional ErrorCode = "unknown_condition_type"
	CodeUnknownRoute       ErrorCode = "unknown_route"
	CodeDuplicatePriority  ErrorCode = "duplicate_priority"
	CodeDuplicateRuleID    ErrorCode = "duplicate_rule_id"
)

// CompileError is one structural or semantic failure found while
// compiling a rule, carrying the JSON path it occurred at, e.g.
// "rules[3].condition_json.all[1].pattern".
type CompileError struct {
	Path    string
	Code    ErrorCode
	Message string
}

func (e CompileError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Path, e.Code, e.Message)
}

func newErr(path string, code ErrorCode, format string, args ...any) CompileError {
	return CompileError{Path: path, Code: code, Message: fmt.Sprintf(format, args...)}
}

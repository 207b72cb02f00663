package assertions

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Operator names a comparison
type Operator string

const (
	OpEquals         Operator = "=="
	OpNotEquals      Operator = "!="
	OpGreaterOrEqual Operator = ">="
	OpContains       Operator = "contains"
	OpNotContains    Operator = "!contains"
	OpExists         Operator = "exists"
	OpNotExists      Operator = "!exists"
	OpEmpty          Operator = "empty"
	OpNotEmpty       Operator = "!empty"
	OpLength         Operator = "length"
	OpIn             Operator = "in"
	OpMatches        Operator = "matches"
	OpType           Operator = "type"
)

func (o Operator) String() string {
	return string(o)
}

// Check is one expectation about an observed value
type Check struct {
	Subject  string
	Operator Operator
	Expected any
	Actual   any
}

// Result is the outcome of evaluating a Check
type Result struct {
	Passed   bool
	Message  string
	Expected any
	Actual   any
	Subject  string
	Operator string
}

// Evaluate compares the check's actual value with its expectation
func Evaluate(c Check) *Result {
	actual := unwrap(c.Actual)
	result := &Result{
		Subject:  c.Subject,
		Operator: c.Operator.String(),
		Expected: c.Expected,
		Actual:   actual,
	}

	result.Passed, result.Message = compare(actual, c.Operator, c.Expected)

	// For length operator, show the computed length as the actual value
	if c.Operator == OpLength {
		result.Actual = computeLength(actual)
	}

	return result
}

// AllPassed reports whether every result passed
func AllPassed(results []*Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}

// Failures returns the results that did not pass
func Failures(results []*Result) []*Result {
	var failed []*Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}

// unwrap converts gjson results into plain values; a missing path or JSON null becomes nil
func unwrap(v any) any {
	switch r := v.(type) {
	case gjson.Result:
		if !r.Exists() {
			return nil
		}
		return r.Value()
	case *gjson.Result:
		if r == nil {
			return nil
		}
		return unwrap(*r)
	}
	return v
}

func compare(actual any, op Operator, expected any) (bool, string) {
	switch op {
	case OpEquals:
		return equals(actual, expected)
	case OpNotEquals:
		if passed, _ := equals(actual, expected); passed {
			return false, fmt.Sprintf("expected not to equal %v", expected)
		}
		return true, ""
	case OpGreaterOrEqual:
		return greaterOrEqual(actual, expected)
	case OpContains:
		return contains(actual, expected)
	case OpNotContains:
		if passed, _ := contains(actual, expected); passed {
			return false, fmt.Sprintf("expected not to contain %v", expected)
		}
		return true, ""
	case OpExists:
		return exists(actual)
	case OpNotExists:
		if passed, _ := exists(actual); passed {
			return false, fmt.Sprintf("expected not to exist, got %v", formatValue(actual))
		}
		return true, ""
	case OpEmpty:
		return empty(actual)
	case OpNotEmpty:
		if passed, _ := empty(actual); passed {
			return false, "expected a non-empty value"
		}
		return true, ""
	case OpLength:
		return length(actual, expected)
	case OpIn:
		return in(actual, expected)
	case OpMatches:
		return matches(actual, expected)
	case OpType:
		return typeCheck(actual, expected)
	default:
		return false, fmt.Sprintf("unknown operator: %v", op)
	}
}

func equals(actual, expected any) (bool, string) {
	if reflect.DeepEqual(actual, expected) {
		return true, ""
	}

	actualNum, aOk := toFloat64(actual)
	expectedNum, eOk := toFloat64(expected)
	if aOk && eOk && actualNum == expectedNum {
		return true, ""
	}

	if actual != nil && expected != nil && fmt.Sprintf("%v", actual) == fmt.Sprintf("%v", expected) {
		return true, ""
	}

	return false, fmt.Sprintf("expected %v, got %v", formatValue(expected), formatValue(actual))
}

func greaterOrEqual(actual, expected any) (bool, string) {
	actualNum, aOk := toFloat64(actual)
	expectedNum, eOk := toFloat64(expected)
	if !aOk || !eOk {
		return false, fmt.Sprintf("cannot compare non-numeric values: %v >= %v", actual, expected)
	}
	if actualNum >= expectedNum {
		return true, ""
	}
	return false, fmt.Sprintf("expected %v >= %v", actual, expected)
}

func contains(actual, expected any) (bool, string) {
	if actual == nil {
		return false, fmt.Sprintf("expected a value containing '%v', got nothing", expected)
	}
	actualStr := fmt.Sprintf("%v", actual)
	expectedStr := fmt.Sprintf("%v", expected)
	if strings.Contains(actualStr, expectedStr) {
		return true, ""
	}
	return false, fmt.Sprintf("expected '%v' to contain '%v'", actual, expected)
}

func exists(actual any) (bool, string) {
	if actual == nil {
		return false, "expected to exist"
	}
	return true, ""
}

func empty(actual any) (bool, string) {
	switch v := actual.(type) {
	case nil:
		return true, ""
	case string:
		if strings.TrimSpace(v) == "" {
			return true, ""
		}
	default:
		if n := computeLength(actual); n == 0 {
			return true, ""
		}
	}
	return false, fmt.Sprintf("expected empty, got %v", formatValue(actual))
}

// computeLength returns the length of a value, or -1 if length cannot be computed
func computeLength(actual any) int {
	switch v := actual.(type) {
	case string:
		return len(v)
	case []any:
		return len(v)
	case map[string]any:
		return len(v)
	case nil:
		return -1
	default:
		rv := reflect.ValueOf(actual)
		switch rv.Kind() {
		case reflect.Slice, reflect.Array, reflect.Map, reflect.String:
			return rv.Len()
		default:
			return -1
		}
	}
}

func length(actual, expected any) (bool, string) {
	expectedLen, ok := toInt(expected)
	if !ok {
		return false, fmt.Sprintf("expected length must be a number, got %v", expected)
	}

	actualLen := computeLength(actual)
	if actualLen == -1 {
		return false, fmt.Sprintf("cannot get length of %T", actual)
	}

	if actualLen == expectedLen {
		return true, ""
	}
	return false, fmt.Sprintf("expected length %d, got %d", expectedLen, actualLen)
}

func in(actual, expected any) (bool, string) {
	rv := reflect.ValueOf(expected)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return false, fmt.Sprintf("expected a list for 'in' operator, got %T", expected)
	}

	for i := 0; i < rv.Len(); i++ {
		if passed, _ := equals(actual, rv.Index(i).Interface()); passed {
			return true, ""
		}
	}
	return false, fmt.Sprintf("expected %v to be in %v", formatValue(actual), expected)
}

func matches(actual, expected any) (bool, string) {
	actualStr := fmt.Sprintf("%v", actual)
	pattern := strings.Trim(fmt.Sprintf("%v", expected), "/")

	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, fmt.Sprintf("invalid regex pattern: %v", err)
	}

	if re.MatchString(actualStr) {
		return true, ""
	}
	return false, fmt.Sprintf("expected '%v' to match /%v/", actual, pattern)
}

func typeCheck(actual, expected any) (bool, string) {
	expectedType := fmt.Sprintf("%v", expected)
	actualType := TypeOf(actual)

	if actualType == expectedType {
		return true, ""
	}
	return false, fmt.Sprintf("expected type %s, got %s", expectedType, actualType)
}

// TypeOf returns the JSON type name of a value
func TypeOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64, float32, int, int64, int32:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return reflect.TypeOf(v).String()
	}
}

// formatValue formats a value for messages, summarizing large values
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "<absent>"
	case []any:
		return fmt.Sprintf("[array with %d items]", len(val))
	case map[string]any:
		return fmt.Sprintf("{object with %d keys}", len(val))
	case string:
		return strconv.Quote(val)
	}
	str := fmt.Sprintf("%v", v)
	if len(str) > 100 {
		return str[:100] + "..."
	}
	return str
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case int32:
		return int(n), true
	case float64:
		return int(n), true
	case float32:
		return int(n), true
	case string:
		if i, err := strconv.Atoi(n); err == nil {
			return i, true
		}
	}
	return 0, false
}

package preprocess

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"modernc.org/sqlite"
)

// SQL functions registered on the sqlite driver. The regex helpers take the
// subject text first and a Go (RE2) pattern second; NULL subjects never match.
const (
	fnRegexpExtract    = "regexp_extract"
	fnRegexpExtractAll = "regexp_extract_all"
	fnSplitPart        = "split_part"
)

var (
	registerOnce sync.Once
	registerErr  error

	patternMu    sync.Mutex
	patternCache = map[string]*regexp.Regexp{}
)

// maxCachedPatterns bounds the compiled pattern cache; label lookups build one
// pattern per distinct phenotype code.
const maxCachedPatterns = 8192

// registerFunctions installs the regex helpers on the driver exactly once per
// process. Registration applies to connections opened afterwards.
func registerFunctions() error {
	registerOnce.Do(func() {
		if err := sqlite.RegisterDeterministicScalarFunction(fnRegexpExtract, 3, regexpExtract); err != nil {
			registerErr = fmt.Errorf("register %s: %w", fnRegexpExtract, err)
			return
		}
		if err := sqlite.RegisterDeterministicScalarFunction(fnRegexpExtractAll, 2, regexpExtractAll); err != nil {
			registerErr = fmt.Errorf("register %s: %w", fnRegexpExtractAll, err)
			return
		}
		if err := sqlite.RegisterDeterministicScalarFunction(fnSplitPart, 3, splitPart); err != nil {
			registerErr = fmt.Errorf("register %s: %w", fnSplitPart, err)
		}
	})
	return registerErr
}

// regexpExtract(text, pattern, group) returns the given capture group of the
// first match, or '' when nothing matches.
func regexpExtract(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	text, ok := textArg(args[0])
	if !ok {
		return "", nil
	}
	pattern, _ := textArg(args[1])
	re, err := compile(pattern)
	if err != nil {
		return nil, err
	}
	group, ok := args[2].(int64)
	if !ok {
		return nil, fmt.Errorf("%s: group must be an integer", fnRegexpExtract)
	}
	m := re.FindStringSubmatch(text)
	if m == nil || group < 0 || int(group) >= len(m) {
		return "", nil
	}
	return m[group], nil
}

// regexpExtractAll(text, pattern) returns every non-overlapping match as a
// JSON array, suitable for json_each.
func regexpExtractAll(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	text, ok := textArg(args[0])
	if !ok {
		return "[]", nil
	}
	pattern, _ := textArg(args[1])
	re, err := compile(pattern)
	if err != nil {
		return nil, err
	}
	matches := re.FindAllString(text, -1)
	if matches == nil {
		matches = []string{}
	}
	b, err := json.Marshal(matches)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// splitPart(text, sep, n) returns the 1-based nth field of text split on sep,
// or '' when there is no such field. A NULL text yields NULL.
func splitPart(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	text, ok := textArg(args[0])
	if !ok {
		return nil, nil
	}
	sep, _ := textArg(args[1])
	n, ok := args[2].(int64)
	if !ok {
		return nil, fmt.Errorf("%s: index must be an integer", fnSplitPart)
	}
	if sep == "" {
		if n == 1 {
			return text, nil
		}
		return "", nil
	}
	parts := strings.Split(text, sep)
	if n < 1 || int(n) > len(parts) {
		return "", nil
	}
	return parts[n-1], nil
}

func textArg(v driver.Value) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case []byte:
		return string(t), true
	default:
		return "", false
	}
}

func compile(pattern string) (*regexp.Regexp, error) {
	patternMu.Lock()
	defer patternMu.Unlock()
	if re, ok := patternCache[pattern]; ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile pattern %q: %w", pattern, err)
	}
	if len(patternCache) >= maxCachedPatterns {
		clear(patternCache)
	}
	patternCache[pattern] = re
	return re, nil
}

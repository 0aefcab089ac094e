package trigger

import (
	"errors"
	"fmt"
	"regexp"
	"regexp/syntax"
	"time"
)

const (
	maxPatternLen = 512
	// upper bound on parsed regexp nodes, to reject pathologically large patterns at validation time
	maxPatternOps = 1000

	DefaultMatchBudget = 10 * time.Millisecond
)

// ErrMatchTimeout indicates a regex evaluation exceeded its wall-clock budget. Recovered by the engine as "no match".
var ErrMatchTimeout = errors.New("regex match timed out")

// CompileSafe compiles a pattern after checking it against size and complexity bounds, so one tenant's pattern cannot eat the evaluation capacity of others.
func CompileSafe(pattern string) (*regexp.Regexp, error) {
	if len(pattern) > maxPatternLen {
		return nil, fmt.Errorf("pattern longer than %d bytes", maxPatternLen)
	}
	parsed, err := syntax.Parse(pattern, syntax.Perl)
	if err != nil {
		return nil, err
	}
	if n := countOps(parsed); n > maxPatternOps {
		return nil, fmt.Errorf("pattern too complex (%d ops, max %d)", n, maxPatternOps)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	if re.MatchString("") {
		return nil, fmt.Errorf("pattern matches the empty string")
	}
	return re, nil
}

func countOps(re *syntax.Regexp) int {
	n := 1
	if re.Op == syntax.OpRepeat {
		reps := re.Max
		if reps < 0 {
			reps = re.Min
		}
		n += reps
	}
	for _, sub := range re.Sub {
		n += countOps(sub)
	}
	return n
}

// findBounded runs re.FindString under a wall-clock budget. On timeout the search goroutine is abandoned; RE2 execution is linear in input size, so it terminates on its own shortly after.
func findBounded(re *regexp.Regexp, text string, budget time.Duration) (string, bool, error) {
	type result struct {
		match string
		ok    bool
	}
	ch := make(chan result, 1)
	go func() {
		m := re.FindString(text)
		ch <- result{match: m, ok: m != ""}
	}()

	timer := time.NewTimer(budget)
	defer timer.Stop()
	select {
	case res := <-ch:
		return res.match, res.ok, nil
	case <-timer.C:
		return "", false, fmt.Errorf("%w: pattern %q", ErrMatchTimeout, re.String())
	}
}

package sqlargs

import (
	"errors"
	"fmt"
	"strconv"
)

var ErrNotPositional = errors.New("query parameter is not positional")

// Positional orders params keyed "1", "2", ... into bind arguments. Keys must
// be canonical positive integers covering 1..len(params) with no gaps.
func Positional(params map[string]any) ([]any, error) {
	args := make([]any, len(params))
	for key, val := range params {
		n, err := strconv.Atoi(key)
		if err != nil || n < 1 || strconv.Itoa(n) != key {
			return nil, fmt.Errorf("%w: %q", ErrNotPositional, key)
		}
		if n > len(params) {
			return nil, fmt.Errorf("%w: %q leaves a gap", ErrNotPositional, key)
		}
		args[n-1] = val
	}
	return args, nil
}

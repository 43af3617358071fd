package browser

import "fmt"

// WaitResult is the outcome of a bounded wait for one of several selectors:
// either the selector that matched first, or a timeout.
type WaitResult struct {
	found    bool
	index    int
	selector string
}

// Found reports that selector, at position index of the waited list,
// matched first.
func Found(index int, selector string) WaitResult {
	return WaitResult{found: true, index: index, selector: selector}
}

// TimedOut reports that no selector matched before the deadline.
func TimedOut() WaitResult {
	return WaitResult{index: -1}
}

// IsFound is false for a timed out wait.
func (r WaitResult) IsFound() bool { return r.found }

// Index is the position of the matched selector, or -1.
func (r WaitResult) Index() int { return r.index }

// Selector is the matched selector, or "".
func (r WaitResult) Selector() string { return r.selector }

func (r WaitResult) String() string {
	if !r.found {
		return "timed out"
	}
	return fmt.Sprintf("found %q", r.selector)
}

package deepcall

import "fmt"

// Result is the outcome of Call. A Result that is not Found means no method
// ran; a Found result may still carry a nil value.
type Result struct {
	value any
	found bool
}

func Found(value any) Result {
	return Result{value: value, found: true}
}

func NotFound() Result {
	return Result{}
}

func (r Result) Found() bool { return r.found }
func (r Result) Value() any  { return r.value }

func (r Result) String() string {
	if !r.found {
		return "<not found>"
	}
	return fmt.Sprint(r.value)
}

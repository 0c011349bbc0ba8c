package vrp

import "fmt"

type Kind int8

const (
	PICKUP Kind = iota
	DELIVERY
)

func (k Kind) String() string {
	switch k {
	case PICKUP:
		return "pickup"
	case DELIVERY:
		return "delivery"
	default:
		return fmt.Sprintf("kind(%d)", int8(k))
	}
}

// pickup or delivery of a task; compared by value
type Action struct {
	Task int  `json:"task"`
	Kind Kind `json:"kind"`
}

// end of chain
var None = Action{Task: -1}

func (a Action) IsNone() bool {
	return a.Task < 0
}

func (a Action) String() string {
	if a.IsNone() {
		return "none"
	}
	return fmt.Sprintf("%s(%d)", a.Kind, a.Task)
}

func Pickup(task int) Action   { return Action{Task: task, Kind: PICKUP} }
func Delivery(task int) Action { return Action{Task: task, Kind: DELIVERY} }

package state

import "github.com/pkg/errors"

// 开奖结果生命周期：pending -> published -> settled
type DrawState string

const (
	StatePending   DrawState = "pending"
	StatePublished DrawState = "published"
	StateSettled   DrawState = "settled"
)

type Event string

const (
	EvtPublish Event = "publish"
	EvtSettle  Event = "settle"
)

var ErrInvalidTransition = errors.New("invalid draw state transition")

// NextState 返回事件作用后的新状态；非法转移返回错误。
// settled 上重复 settle 视为幂等，保持 settled。
func NextState(cur DrawState, evt Event) (DrawState, error) {
	switch cur {
	case StatePending:
		if evt == EvtPublish {
			return StatePublished, nil
		}
	case StatePublished:
		if evt == EvtSettle {
			return StateSettled, nil
		}
	case StateSettled:
		if evt == EvtSettle {
			return StateSettled, nil
		}
	}
	return cur, errors.Wrapf(ErrInvalidTransition, "%s on %s", evt, cur)
}

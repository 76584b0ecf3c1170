package monitor

import (
	"sync/atomic"

	"github.com/KNICEX/market-monitor/internal/metrics"
)

// AlertQueue 单生产者/单消费者 FIFO 队列. 满时丢弃最旧的告警, Push 从不阻塞
type AlertQueue struct {
	ch      chan Alert
	dropped atomic.Int64
}

func NewAlertQueue(size int) *AlertQueue {
	if size <= 0 {
		size = 256
	}
	return &AlertQueue{ch: make(chan Alert, size)}
}

// Push returns false when an older alert had to be discarded.
func (q *AlertQueue) Push(alert Alert) bool {
	evicted := false
	for {
		select {
		case q.ch <- alert:
			return !evicted
		default:
		}
		select {
		case <-q.ch:
			evicted = true
			q.dropped.Add(1)
			metrics.AlertsDropped.Inc()
		default:
		}
	}
}

// C 供外部广播方消费
func (q *AlertQueue) C() <-chan Alert {
	return q.ch
}

// Drain 取出当前所有排队的告警
func (q *AlertQueue) Drain() []Alert {
	var res []Alert
	for {
		select {
		case a := <-q.ch:
			res = append(res, a)
		default:
			return res
		}
	}
}

func (q *AlertQueue) Len() int {
	return len(q.ch)
}

func (q *AlertQueue) Dropped() int64 {
	return q.dropped.Load()
}

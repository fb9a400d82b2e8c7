package alarm

import (
	"container/heap"

	"github.com/dixieflatline76/Paperize/pkg/wallpaper"
)

// alarmHeap implements container/heap.Interface for wallpaper alarms,
// earliest TriggerAt first.
type alarmHeap []wallpaper.Alarm

func (h alarmHeap) Len() int           { return len(h) }
func (h alarmHeap) Less(i, j int) bool { return h[i].TriggerAt.Before(h[j].TriggerAt) }
func (h alarmHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *alarmHeap) Push(x any) {
	*h = append(*h, x.(wallpaper.Alarm))
}

func (h *alarmHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// heapPut arms a, replacing any alarm under the same code.
func heapPut(h *alarmHeap, a wallpaper.Alarm) {
	heapRemoveByCode(h, a.Code)
	heap.Push(h, a)
}

func heapPop(h *alarmHeap) wallpaper.Alarm {
	return heap.Pop(h).(wallpaper.Alarm)
}

// heapRemoveByCode removes the alarm armed under code, if any.
func heapRemoveByCode(h *alarmHeap, code wallpaper.RequestCode) bool {
	for i, a := range *h {
		if a.Code == code {
			heap.Remove(h, i)
			return true
		}
	}
	return false
}

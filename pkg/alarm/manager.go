package alarm

import (
	"container/heap"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/dixieflatline76/Paperize/pkg/wallpaper"
	"github.com/dixieflatline76/Paperize/util/log"
)

const maxSleepCap = 60 * time.Second

// FireFunc receives every alarm that comes due.
type FireFunc func(ctx context.Context, a wallpaper.Alarm)

// Option configures a Manager.
type Option func(*Manager)

// WithExactPolicy decides whether exact alarms are allowed. The default
// allows them.
func WithExactPolicy(allowed func() bool) Option {
	return func(m *Manager) { m.exactAllowed = allowed }
}

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

type opKind int

const (
	opAdd opKind = iota
	opRemove
	opSnapshot
)

// op is one request to the run loop. Requests share one channel so they
// apply in call order.
type op struct {
	kind  opKind
	alarm wallpaper.Alarm
	code  wallpaper.RequestCode
	reply chan []wallpaper.Alarm
}

// Manager implements wallpaper.AlarmService.
type Manager struct {
	ops          chan op
	ctx          context.Context
	exactAllowed func() bool
	now          func() time.Time
}

var _ wallpaper.AlarmService = (*Manager)(nil)

// New creates and starts a Manager. onFire runs on its own goroutine for
// each due alarm, so it may arm or cancel alarms itself. The manager stops
// when ctx is cancelled.
func New(ctx context.Context, onFire FireFunc, opts ...Option) *Manager {
	m := &Manager{
		ops:          make(chan op, 64),
		ctx:          ctx,
		exactAllowed: func() bool { return true },
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	go m.run(onFire)
	return m
}

// CanScheduleExact reports whether RegisterExact would be accepted.
func (m *Manager) CanScheduleExact() bool {
	return m.exactAllowed()
}

// RegisterExact arms a, replacing any alarm under the same code.
func (m *Manager) RegisterExact(ctx context.Context, a wallpaper.Alarm) error {
	if !m.CanScheduleExact() {
		return fmt.Errorf("%w: %s alarm", wallpaper.ErrExactAlarmDenied, a.Code)
	}
	return m.Register(ctx, a)
}

// Register arms a, replacing any alarm under the same code.
func (m *Manager) Register(ctx context.Context, a wallpaper.Alarm) error {
	select {
	case m.ops <- op{kind: opAdd, alarm: a}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-m.ctx.Done():
		return fmt.Errorf("alarm manager stopped: %w", m.ctx.Err())
	}
}

// Cancel disarms the alarm under code. Unknown codes are ignored.
func (m *Manager) Cancel(code wallpaper.RequestCode) {
	select {
	case m.ops <- op{kind: opRemove, code: code}:
	case <-m.ctx.Done():
	}
}

// Pending returns the armed alarms, earliest first.
func (m *Manager) Pending() []wallpaper.Alarm {
	reply := make(chan []wallpaper.Alarm, 1)
	select {
	case m.ops <- op{kind: opSnapshot, reply: reply}:
	case <-m.ctx.Done():
		return nil
	}
	select {
	case out := <-reply:
		return out
	case <-m.ctx.Done():
		return nil
	}
}

func (m *Manager) run(onFire FireFunc) {
	h := &alarmHeap{}
	heap.Init(h)

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	resetTimer := func() <-chan time.Time {
		if timer != nil {
			timer.Stop()
		}
		if h.Len() == 0 {
			return nil
		}
		dur := (*h)[0].TriggerAt.Sub(m.now())
		if dur > maxSleepCap {
			dur = maxSleepCap
		}
		if dur < 0 {
			dur = 0
		}
		timer = time.NewTimer(dur)
		return timer.C
	}

	timerCh := resetTimer()

	for {
		select {
		case <-m.ctx.Done():
			return

		case o := <-m.ops:
			switch o.kind {
			case opAdd:
				heapPut(h, o.alarm)
				log.Debugf("[Alarm] armed %s for %s", o.alarm.Code, o.alarm.TriggerAt.Format(time.RFC3339))
				timerCh = resetTimer()
			case opRemove:
				if heapRemoveByCode(h, o.code) {
					log.Debugf("[Alarm] cancelled %s", o.code)
				}
				timerCh = resetTimer()
			case opSnapshot:
				snap := slices.Clone(*h)
				slices.SortFunc(snap, func(a, b wallpaper.Alarm) int { return a.TriggerAt.Compare(b.TriggerAt) })
				o.reply <- snap
			}

		case <-timerCh:
			now := m.now()
			for h.Len() > 0 && !(*h)[0].TriggerAt.After(now) {
				a := heapPop(h)
				go onFire(m.ctx, a)
			}
			timerCh = resetTimer()
		}
	}
}

package biz

import (
	"sync"

	"github.com/kart-io/sentinel-weather/internal/weather/synthetic"
)

// demoDay 进程内共享的一天演示数据。当前快照与历史序列都取自这里，
// 当前值始终等于各序列的最后一个点。跨过整点后重新生成。
type demoDay struct {
	mu  sync.Mutex
	gen *synthetic.Generator
	day *synthetic.Day
}

func newDemoDay(gen *synthetic.Generator) *demoDay {
	return &demoDay{gen: gen}
}

// Generate 返回当前的演示数据，满足 reconcile.DaySource。
func (d *demoDay) Generate() synthetic.Day {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current()
}

// Jitter 扰动并返回演示数据。
func (d *demoDay) Jitter() synthetic.Day {
	d.mu.Lock()
	defer d.mu.Unlock()

	day := d.gen.JitterDay(d.current())
	d.day = &day
	return day
}

func (d *demoDay) current() synthetic.Day {
	if d.day == nil || !d.gen.Fresh(*d.day) {
		day := d.gen.Generate()
		d.day = &day
	}
	return *d.day
}

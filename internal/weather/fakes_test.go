package weathersvc

import (
	"context"
	"sync/atomic"

	"github.com/kart-io/sentinel-weather/internal/weather/biz"
)

// countingService 只统计定时任务调用次数。
type countingService struct {
	biz.Service
	refresh atomic.Int32
	ticks   atomic.Int32
}

func (c *countingService) Refresh(context.Context) error {
	c.refresh.Add(1)
	return nil
}

func (c *countingService) DemoTick(context.Context) error {
	c.ticks.Add(1)
	return nil
}

func (c *countingService) refreshes() int32 { return c.refresh.Load() }

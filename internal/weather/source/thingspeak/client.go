// Package thingspeak 实现 ThingSpeak 频道的传感器数据源。
//
// 字段映射：field1 温度，field2 湿度，field3 光照，field4 气压，field5 降雨，field6 紫外线。
package thingspeak

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kart-io/sentinel-weather/internal/weather/model"
	"github.com/kart-io/sentinel-weather/internal/weather/source"
	"github.com/kart-io/sentinel-weather/pkg/errors"
	"github.com/kart-io/sentinel-weather/pkg/utils/httpclient"
	"github.com/kart-io/sentinel-weather/pkg/utils/json"
)

// Name 数据源名称。
const Name = "thingspeak"

const (
	// 每 10 分钟一个采样点
	sampleMinutes = 10
	// ThingSpeak 单次请求的结果上限
	maxResults = 8000
)

// Config ThingSpeak 配置。
type Config struct {
	BaseURL   string
	ChannelID string
	APIKey    string
	Timeout   time.Duration
}

// Client ThingSpeak 数据源。
type Client struct {
	cfg  Config
	http *httpclient.Client
}

var _ source.SensorSource = (*Client)(nil)

// New 创建数据源。传输层不重试。
func New(cfg Config, opts ...httpclient.Option) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.thingspeak.com"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{cfg: cfg, http: httpclient.NewClient(cfg.Timeout, 0, opts...)}
}

// Name 返回数据源名称。
func (c *Client) Name() string { return Name }

func (c *Client) configured() error {
	if c.cfg.ChannelID == "" || c.cfg.APIKey == "" {
		return errors.ErrSourceMisconfigured.WithMessage("thingspeak channel id or api key not configured")
	}
	return nil
}

type feed struct {
	CreatedAt string          `json:"created_at"`
	EntryID   int             `json:"entry_id"`
	Field1    json.RawMessage `json:"field1"`
	Field2    json.RawMessage `json:"field2"`
	Field3    json.RawMessage `json:"field3"`
	Field4    json.RawMessage `json:"field4"`
	Field5    json.RawMessage `json:"field5"`
	Field6    json.RawMessage `json:"field6"`
}

type feedsResponse struct {
	Feeds *[]feed `json:"feeds"`
}

// Latest 读取频道最新一条记录。
func (c *Client) Latest(ctx context.Context) (model.SensorReading, error) {
	if err := c.configured(); err != nil {
		return model.SensorReading{}, err
	}

	q := url.Values{"api_key": {c.cfg.APIKey}}
	var raw json.RawMessage
	if err := c.http.GetJSON(ctx, c.url("feeds/last.json", q), &raw); err != nil {
		return model.SensorReading{}, source.Classify(err)
	}

	// 空频道返回 -1
	if bytes.Equal(bytes.TrimSpace(raw), []byte("-1")) {
		return model.SensorReading{}, errors.ErrSourceNotFound.WithMessagef("thingspeak channel %s has no entries", c.cfg.ChannelID)
	}

	var f feed
	if err := json.Unmarshal(raw, &f); err != nil {
		return model.SensorReading{}, errors.ErrSourceMalformed.WithCause(err)
	}
	return f.reading(), nil
}

// History 读取最近 hours 小时的记录，按每 10 分钟一个采样点计算条数。
func (c *Client) History(ctx context.Context, hours int) ([]model.SensorReading, error) {
	if err := c.configured(); err != nil {
		return nil, err
	}

	q := url.Values{
		"api_key": {c.cfg.APIKey},
		"results": {strconv.Itoa(ResultsFor(hours))},
	}
	var resp feedsResponse
	if err := c.http.GetJSON(ctx, c.url("feeds.json", q), &resp); err != nil {
		return nil, source.Classify(err)
	}
	if resp.Feeds == nil {
		return nil, errors.ErrSourceMalformed.WithMessage("thingspeak response has no feeds")
	}

	readings := make([]model.SensorReading, 0, len(*resp.Feeds))
	for _, f := range *resp.Feeds {
		readings = append(readings, f.reading())
	}
	return readings, nil
}

// ResultsFor 返回覆盖 hours 小时所需的记录条数。
func ResultsFor(hours int) int {
	n := hours * 60 / sampleMinutes
	switch {
	case n < 1:
		return 1
	case n > maxResults:
		return maxResults
	}
	return n
}

func (c *Client) url(path string, q url.Values) string {
	return fmt.Sprintf("%s/channels/%s/%s?%s", c.cfg.BaseURL, url.PathEscape(c.cfg.ChannelID), path, q.Encode())
}

func (f feed) reading() model.SensorReading {
	r := model.SensorReading{
		EntryID:     f.EntryID,
		Temperature: parseField(f.Field1),
		Humidity:    parseField(f.Field2),
		Light:       parseField(f.Field3),
		Pressure:    parseField(f.Field4),
		Rainfall:    parseField(f.Field5),
		UVIndex:     parseField(f.Field6),
	}
	if t, err := time.Parse(time.RFC3339, f.CreatedAt); err == nil {
		r.CreatedAt = t
	}
	return r
}

// parseField 字段可能是字符串、数字或 null，无法解析为有限数值时返回 nil。
func parseField(raw json.RawMessage) *float64 {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return nil
		}
		s = strings.TrimSpace(str)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

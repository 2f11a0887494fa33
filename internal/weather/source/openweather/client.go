// Package openweather 实现 OpenWeather 的实况与预报数据源。
package openweather

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kart-io/logger"

	"github.com/kart-io/sentinel-weather/internal/weather/model"
	"github.com/kart-io/sentinel-weather/internal/weather/source"
	"github.com/kart-io/sentinel-weather/pkg/errors"
	"github.com/kart-io/sentinel-weather/pkg/utils/httpclient"
)

// Name 数据源名称。
const Name = "openweather"

const msToKmh = 3.6

// Config OpenWeather 配置。
type Config struct {
	BaseURL string
	APIKey  string
	Country string
	Lang    string
	Timeout time.Duration
}

// Client OpenWeather 数据源。
type Client struct {
	cfg  Config
	http *httpclient.Client
}

var (
	_ source.AmbientSource  = (*Client)(nil)
	_ source.ForecastSource = (*Client)(nil)
)

// New 创建数据源。传输层不重试。
func New(cfg Config, opts ...httpclient.Option) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openweathermap.org/data/2.5"
	}
	if cfg.Lang == "" {
		cfg.Lang = "zh_cn"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{cfg: cfg, http: httpclient.NewClient(cfg.Timeout, 0, opts...)}
}

// Name 返回数据源名称。
func (c *Client) Name() string { return Name }

// Configured 是否配置了 API Key。
func (c *Client) Configured() bool { return c.cfg.APIKey != "" }

type weatherResponse struct {
	Name  string `json:"name"`
	Coord *struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Weather []struct {
		ID          int    `json:"id"`
		Description string `json:"description"`
	} `json:"weather"`
	Main *struct {
		Temp     *float64 `json:"temp"`
		Humidity *float64 `json:"humidity"`
		Pressure *float64 `json:"pressure"`
	} `json:"main"`
	Wind *struct {
		Speed *float64 `json:"speed"`
		Deg   float64  `json:"deg"`
	} `json:"wind"`
	Rain *struct {
		OneHour *float64 `json:"1h"`
	} `json:"rain"`
}

type uviResponse struct {
	Value *float64 `json:"value"`
}

// Current 查询城市当前天气，紫外线指数单独查询，失败时为 0。
func (c *Client) Current(ctx context.Context, city string) (model.AmbientReading, error) {
	if !c.Configured() {
		return model.AmbientReading{}, errors.ErrSourceMisconfigured.WithMessage("openweather api key not configured")
	}

	var resp weatherResponse
	if err := c.http.GetJSON(ctx, c.url("weather", c.cityQuery(city)), &resp); err != nil {
		return model.AmbientReading{}, source.Classify(err)
	}
	if resp.Main == nil || len(resp.Weather) == 0 || resp.Coord == nil {
		return model.AmbientReading{}, errors.ErrSourceMalformed.WithMessage("openweather response is missing main, weather or coord")
	}

	r := model.AmbientReading{
		City:        resp.Name,
		Lat:         resp.Coord.Lat,
		Lon:         resp.Coord.Lon,
		Temperature: resp.Main.Temp,
		Humidity:    resp.Main.Humidity,
		Pressure:    resp.Main.Pressure,
		WindSpeed:   model.Float(0),
		Rainfall:    model.Float(0),
		UVIndex:     model.Float(c.uvIndex(ctx, resp.Coord.Lat, resp.Coord.Lon)),
		WeatherID:   resp.Weather[0].ID,
		Description: resp.Weather[0].Description,
	}
	if r.City == "" {
		r.City = city
	}
	if resp.Wind != nil && resp.Wind.Speed != nil {
		r.WindSpeed = model.Float(*resp.Wind.Speed * msToKmh)
	}
	if resp.Rain != nil && resp.Rain.OneHour != nil {
		r.Rainfall = model.Float(*resp.Rain.OneHour)
	}
	return r, nil
}

func (c *Client) uvIndex(ctx context.Context, lat, lon float64) float64 {
	q := url.Values{
		"lat":   {fmt.Sprintf("%g", lat)},
		"lon":   {fmt.Sprintf("%g", lon)},
		"appid": {c.cfg.APIKey},
	}
	var resp uviResponse
	if err := c.http.GetJSON(ctx, c.url("uvi", q), &resp); err != nil {
		logger.Debugw("uv index lookup failed", "source", Name, "error", err.Error())
		return 0
	}
	if resp.Value == nil || *resp.Value < 0 {
		return 0
	}
	return *resp.Value
}

type forecastResponse struct {
	List *[]struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp     float64 `json:"temp"`
			Humidity float64 `json:"humidity"`
		} `json:"main"`
		Pop     float64 `json:"pop"`
		Weather []struct {
			ID int `json:"id"`
		} `json:"weather"`
		Wind struct {
			Speed float64 `json:"speed"`
			Deg   float64 `json:"deg"`
		} `json:"wind"`
	} `json:"list"`
}

// Forecast 查询 5 天 / 3 小时预报。
func (c *Client) Forecast(ctx context.Context, city string) ([]model.ForecastPoint, error) {
	if !c.Configured() {
		return nil, errors.ErrSourceMisconfigured.WithMessage("openweather api key not configured")
	}

	var resp forecastResponse
	if err := c.http.GetJSON(ctx, c.url("forecast", c.cityQuery(city)), &resp); err != nil {
		return nil, source.Classify(err)
	}
	if resp.List == nil {
		return nil, errors.ErrSourceMalformed.WithMessage("openweather forecast has no list")
	}

	points := make([]model.ForecastPoint, 0, len(*resp.List))
	for _, item := range *resp.List {
		p := model.ForecastPoint{
			Time:        time.Unix(item.Dt, 0),
			Temperature: item.Main.Temp,
			Humidity:    item.Main.Humidity,
			Pop:         item.Pop,
			WeatherID:   800,
			WindSpeed:   item.Wind.Speed,
			WindDeg:     item.Wind.Deg,
		}
		if len(item.Weather) > 0 {
			p.WeatherID = item.Weather[0].ID
		}
		points = append(points, p)
	}
	return points, nil
}

func (c *Client) cityQuery(city string) url.Values {
	q := city
	if c.cfg.Country != "" {
		q = city + "," + c.cfg.Country
	}
	return url.Values{
		"q":     {q},
		"units": {"metric"},
		"lang":  {c.cfg.Lang},
		"appid": {c.cfg.APIKey},
	}
}

func (c *Client) url(path string, q url.Values) string {
	return c.cfg.BaseURL + "/" + path + "?" + q.Encode()
}

// Package main is the entry point for the Sentinel Weather Service.
//
//	@title			Sentinel Weather API
//	@version		1.0
//	@description	气象对账与建议服务 - 传感器与环境数据源对账，LLM 生成出行与趋势建议
//
//	@contact.name	Sentinel Weather Team
//	@contact.url	https://github.com/kart-io/sentinel-weather
//
//	@BasePath		/
package main

import (
	_ "go.uber.org/automaxprocs/maxprocs"

	"github.com/kart-io/sentinel-weather/cmd/weather/app"
)

func main() {
	app.NewApp().Run()
}

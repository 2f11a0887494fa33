// Package weather holds the OpenAPI document served under /swagger.
// 由 handler 上的注解维护，修改接口后执行
// swag init -g cmd/weather/main.go -o api/swagger/weather --instanceName weather 重新生成。
package weather

import "github.com/swaggo/swag"

const docTemplateweather = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/healthz": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "ops"
                ],
                "summary": "健康检查",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/middleware.HealthResponse"
                        }
                    },
                    "503": {
                        "description": "Service Unavailable",
                        "schema": {
                            "$ref": "#/definitions/middleware.HealthResponse"
                        }
                    }
                }
            }
        },
        "/metrics": {
            "get": {
                "produces": [
                    "text/plain"
                ],
                "tags": [
                    "ops"
                ],
                "summary": "Prometheus 指标",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "string"
                        }
                    }
                }
            }
        },
        "/v1/advisory": {
            "post": {
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "advisory"
                ],
                "summary": "全部建议",
                "parameters": [
                    {
                        "description": "当前气象",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handler.ConditionsRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/response.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/model.Advisories"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/response.Response"
                        }
                    }
                }
            }
        },
        "/v1/advisory/prediction": {
            "post": {
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "advisory"
                ],
                "summary": "趋势预测",
                "parameters": [
                    {
                        "description": "当前气象",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handler.ConditionsRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/response.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/model.PredictionResult"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/response.Response"
                        }
                    }
                }
            }
        },
        "/v1/advisory/probability": {
            "post": {
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "advisory"
                ],
                "summary": "天气类型概率",
                "parameters": [
                    {
                        "description": "当前气象",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handler.ConditionsRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/response.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/model.ProbabilityForecast"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/response.Response"
                        }
                    }
                }
            }
        },
        "/v1/advisory/travel": {
            "post": {
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "advisory"
                ],
                "summary": "出行建议",
                "parameters": [
                    {
                        "description": "当前气象",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handler.ConditionsRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/response.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/model.TravelAdvice"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/response.Response"
                        }
                    }
                }
            }
        },
        "/v1/stats": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "ops"
                ],
                "summary": "运行统计",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/response.Response"
                        }
                    }
                }
            }
        },
        "/v1/weather/current": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "weather"
                ],
                "summary": "当前气象",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/response.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/model.CurrentConditions"
                                        }
                                    }
                                }
                            ]
                        }
                    }
                },
                "description": "对账后的当前气象数据，数据源不可用时返回演示数据",
                "parameters": [
                    {
                        "type": "string",
                        "description": "城市，缺省为配置的默认城市",
                        "name": "city",
                        "in": "query"
                    }
                ]
            }
        },
        "/v1/weather/forecast": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "weather"
                ],
                "summary": "多日预报",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/response.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/biz.ForecastResult"
                                        }
                                    }
                                }
                            ]
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "description": "城市",
                        "name": "city",
                        "in": "query"
                    }
                ]
            }
        },
        "/v1/weather/history": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "weather"
                ],
                "summary": "历史序列",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/response.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/model.History"
                                        }
                                    }
                                }
                            ]
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "integer",
                        "default": 24,
                        "description": "小时数，1 到 168",
                        "name": "hours",
                        "in": "query"
                    }
                ]
            }
        }
    },
    "definitions": {
        "biz.ForecastResult": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/model.ForecastDay"
                    }
                },
                "source": {
                    "type": "string"
                }
            }
        },
        "handler.ConditionsRequest": {
            "type": "object",
            "required": [
                "humidity",
                "pressure",
                "temperature"
            ],
            "properties": {
                "humidity": {
                    "type": "number"
                },
                "lightIntensity": {
                    "type": "number"
                },
                "observedAt": {
                    "type": "string"
                },
                "pressure": {
                    "type": "number"
                },
                "provenance": {
                    "$ref": "#/definitions/model.Provenance"
                },
                "rainfall": {
                    "type": "number"
                },
                "temperature": {
                    "type": "number"
                },
                "uvIndex": {
                    "type": "number"
                },
                "weatherDescription": {
                    "type": "string",
                    "maxLength": 200
                },
                "windSpeed": {
                    "type": "number"
                }
            }
        },
        "middleware.CheckResult": {
            "type": "object",
            "properties": {
                "message": {
                    "type": "string"
                },
                "optional": {
                    "type": "boolean"
                },
                "status": {
                    "$ref": "#/definitions/middleware.HealthStatus"
                }
            }
        },
        "middleware.HealthResponse": {
            "type": "object",
            "properties": {
                "checks": {
                    "type": "object",
                    "additionalProperties": {
                        "$ref": "#/definitions/middleware.CheckResult"
                    }
                },
                "status": {
                    "$ref": "#/definitions/middleware.HealthStatus"
                },
                "version": {
                    "type": "string"
                }
            }
        },
        "middleware.HealthStatus": {
            "type": "string",
            "enum": [
                "UP",
                "DEGRADED",
                "DOWN"
            ],
            "x-enum-varnames": [
                "HealthStatusUp",
                "HealthStatusDegraded",
                "HealthStatusDown"
            ]
        },
        "model.AdvisorySource": {
            "type": "string",
            "enum": [
                "remote",
                "heuristic"
            ],
            "x-enum-varnames": [
                "SourceRemote",
                "SourceHeuristic"
            ]
        },
        "model.Advisories": {
            "type": "object",
            "properties": {
                "prediction": {
                    "$ref": "#/definitions/model.PredictionResult"
                },
                "probability": {
                    "$ref": "#/definitions/model.ProbabilityForecast"
                },
                "travel": {
                    "$ref": "#/definitions/model.TravelAdvice"
                }
            }
        },
        "model.CurrentConditions": {
            "type": "object",
            "properties": {
                "humidity": {
                    "type": "number"
                },
                "lightIntensity": {
                    "type": "number"
                },
                "observedAt": {
                    "type": "string"
                },
                "pressure": {
                    "type": "number"
                },
                "provenance": {
                    "$ref": "#/definitions/model.Provenance"
                },
                "rainfall": {
                    "type": "number"
                },
                "temperature": {
                    "type": "number"
                },
                "uvIndex": {
                    "type": "number"
                },
                "weatherDescription": {
                    "type": "string"
                },
                "windSpeed": {
                    "type": "number"
                }
            }
        },
        "model.ForecastDay": {
            "type": "object",
            "properties": {
                "date": {
                    "type": "string"
                },
                "day": {
                    "type": "string"
                },
                "highTemp": {
                    "type": "integer"
                },
                "humidity": {
                    "type": "string"
                },
                "lowTemp": {
                    "type": "integer"
                },
                "precipitation": {
                    "type": "string"
                },
                "weather": {
                    "type": "string"
                },
                "weatherId": {
                    "type": "integer"
                },
                "wind": {
                    "type": "string"
                }
            }
        },
        "model.History": {
            "type": "object",
            "properties": {
                "humidity": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/model.TimeSeriesPoint"
                    }
                },
                "light": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/model.TimeSeriesPoint"
                    }
                },
                "pressure": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/model.TimeSeriesPoint"
                    }
                },
                "rainfall": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/model.TimeSeriesPoint"
                    }
                },
                "temperature": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/model.TimeSeriesPoint"
                    }
                },
                "uvIndex": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/model.TimeSeriesPoint"
                    }
                },
                "windSpeed": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/model.TimeSeriesPoint"
                    }
                },
                "provenance": {
                    "$ref": "#/definitions/model.Provenance"
                }
            }
        },
        "model.PredictionResult": {
            "type": "object",
            "properties": {
                "prediction": {
                    "type": "string"
                },
                "recommendations": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "source": {
                    "$ref": "#/definitions/model.AdvisorySource"
                },
                "trends": {
                    "$ref": "#/definitions/model.Trends"
                }
            }
        },
        "model.ProbabilityForecast": {
            "type": "object",
            "properties": {
                "forecastText": {
                    "type": "string"
                },
                "probabilities": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/model.WeatherProbability"
                    }
                },
                "source": {
                    "$ref": "#/definitions/model.AdvisorySource"
                }
            }
        },
        "model.Provenance": {
            "type": "string",
            "enum": [
                "live",
                "demo"
            ],
            "x-enum-varnames": [
                "ProvenanceLive",
                "ProvenanceDemo"
            ]
        },
        "model.TimeSeriesPoint": {
            "type": "object",
            "properties": {
                "time": {
                    "type": "string"
                },
                "timestamp": {
                    "type": "string"
                },
                "value": {
                    "type": "number"
                }
            }
        },
        "model.TravelAdvice": {
            "type": "object",
            "properties": {
                "description": {
                    "type": "string"
                },
                "items": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "reason": {
                    "type": "string"
                },
                "source": {
                    "$ref": "#/definitions/model.AdvisorySource"
                },
                "suitable": {
                    "type": "boolean"
                },
                "title": {
                    "type": "string"
                }
            }
        },
        "model.Trends": {
            "type": "object",
            "properties": {
                "general": {
                    "type": "string"
                },
                "humidity": {
                    "type": "string"
                },
                "pressure": {
                    "type": "string"
                },
                "temperature": {
                    "type": "string"
                }
            }
        },
        "model.WeatherProbability": {
            "type": "object",
            "properties": {
                "probability": {
                    "type": "integer"
                },
                "type": {
                    "$ref": "#/definitions/model.WeatherType"
                }
            }
        },
        "model.WeatherType": {
            "type": "string",
            "enum": [
                "sunny",
                "cloudy",
                "rain",
                "windy"
            ],
            "x-enum-varnames": [
                "WeatherSunny",
                "WeatherCloudy",
                "WeatherRain",
                "WeatherWindy"
            ]
        },
        "response.Response": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "integer"
                },
                "data": {},
                "message": {
                    "type": "string"
                },
                "request_id": {
                    "type": "string"
                },
                "timestamp": {
                    "type": "integer"
                }
            }
        }
    }
}`

// SwaggerInfoweather holds exported Swagger Info so clients can modify it
var SwaggerInfoweather = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Sentinel Weather API",
	Description:      "气象对账与建议服务 - 传感器与环境数据源对账，LLM 生成出行与趋势建议",
	InfoInstanceName: "weather",
	SwaggerTemplate:  docTemplateweather,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfoweather.InstanceName(), SwaggerInfoweather)
}

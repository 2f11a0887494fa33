package advisory

import (
	"context"

	"github.com/kart-io/sentinel-weather/internal/weather/model"
	"github.com/kart-io/sentinel-weather/pkg/infra/pool"
	"github.com/kart-io/sentinel-weather/pkg/llm"
)

// Service 汇总三种建议的解析器。
type Service struct {
	prediction  *Resolver[model.PredictionResult]
	travel      *Resolver[model.TravelAdvice]
	probability *Resolver[model.ProbabilityForecast]
	pool        *pool.Pool
}

// NewService 创建建议服务。provider 为 nil 时全部走启发式计算；
// workers 为 nil 时 AdviseAll 顺序执行。
func NewService(provider llm.ChatProvider, workers *pool.Pool, cfg Config) *Service {
	return &Service{
		prediction:  NewResolver(PredictionKind(), provider, cfg),
		travel:      NewResolver(TravelKind(), provider, cfg),
		probability: NewResolver(ProbabilityKind(), provider, cfg),
		pool:        workers,
	}
}

// Prediction 趋势预测。
func (s *Service) Prediction(ctx context.Context, c model.CurrentConditions) model.PredictionResult {
	return s.prediction.Resolve(ctx, c).Result
}

// Travel 出行建议。
func (s *Service) Travel(ctx context.Context, c model.CurrentConditions) model.TravelAdvice {
	return s.travel.Resolve(ctx, c).Result
}

// Probability 天气类型概率。
func (s *Service) Probability(ctx context.Context, c model.CurrentConditions) model.ProbabilityForecast {
	return s.probability.Resolve(ctx, c).Result
}

// AdviseAll 并行解析三种建议，各种类之间互不影响。
func (s *Service) AdviseAll(ctx context.Context, c model.CurrentConditions) model.Advisories {
	var out model.Advisories
	tasks := []func(){
		func() { out.Prediction = s.Prediction(ctx, c) },
		func() { out.Travel = s.Travel(ctx, c) },
		func() { out.Probability = s.Probability(ctx, c) },
	}

	if s.pool == nil {
		for _, task := range tasks {
			task()
		}
		return out
	}
	s.pool.Go(tasks...)
	return out
}

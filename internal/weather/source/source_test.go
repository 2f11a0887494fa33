package source

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kart-io/sentinel-weather/pkg/errors"
	"github.com/kart-io/sentinel-weather/pkg/utils/httpclient"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"404", &httpclient.StatusError{StatusCode: 404}, errors.ErrSourceNotFound},
		{"401", &httpclient.StatusError{StatusCode: 401}, errors.ErrSourceMisconfigured},
		{"403", &httpclient.StatusError{StatusCode: 403}, errors.ErrSourceMisconfigured},
		{"400", &httpclient.StatusError{StatusCode: 400}, errors.ErrSourceMisconfigured},
		{"429", &httpclient.StatusError{StatusCode: 429}, errors.ErrSourceTransient},
		{"500", &httpclient.StatusError{StatusCode: 500}, errors.ErrSourceTransient},
		{"wrapped decode", fmt.Errorf("get: %w", &httpclient.DecodeError{Err: fmt.Errorf("eof")}), errors.ErrSourceMalformed},
		{"deadline", context.DeadlineExceeded, errors.ErrSourceTransient},
		{"already classified", errors.ErrSourceNotFound.WithMessage("empty"), errors.ErrSourceNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, Classify(tt.err), tt.want)
		})
	}
	assert.NoError(t, Classify(nil))
}

func TestRateLimited_Unlimited(t *testing.T) {
	rl := NewRateLimited(0, 0)
	for i := 0; i < 100; i++ {
		assert.NoError(t, rl.wait(context.Background()))
	}
}

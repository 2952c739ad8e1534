package ai

import (
	"context"

	"github.com/maltehb/capr/internal/forecast"
)

type Advisor interface {
	Advise(ctx context.Context, bundle forecast.Bundle) (*Advice, error)
}

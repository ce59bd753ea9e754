package services

import (
	"context"
	"time"

	awspkg "github.com/joseguilhermeromano/Pastel360/pkg/aws"
	"go.uber.org/zap"
)

// recordCount publishes a business counter without blocking the caller.
func recordCount(metrics *awspkg.MetricsClient, log *zap.Logger, name string) {
	if !metrics.IsEnabled() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metrics.RecordCount(ctx, name, map[string]string{"Service": "pastel360-api"}); err != nil {
			log.Debug("Failed to record metric", zap.String("metric", name), zap.Error(err))
		}
	}()
}

package service

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "juribank/backend/internal/session/service"

type registryMetrics struct {
	created    metric.Int64Counter
	rejected   metric.Int64Counter
	terminated metric.Int64Counter
	flagged    metric.Int64Counter
}

func newRegistryMetrics(m metric.Meter) (*registryMetrics, error) {
	if m == nil {
		m = noop.NewMeterProvider().Meter(meterName)
	}
	var (
		rm  registryMetrics
		err error
	)
	if rm.created, err = m.Int64Counter("anonsession.created",
		metric.WithDescription("Anonymous sessions created")); err != nil {
		return nil, err
	}
	if rm.rejected, err = m.Int64Counter("anonsession.rejected",
		metric.WithDescription("Session creations and validations rejected, by reason")); err != nil {
		return nil, err
	}
	if rm.terminated, err = m.Int64Counter("anonsession.terminated",
		metric.WithDescription("Sessions removed, by reason")); err != nil {
		return nil, err
	}
	if rm.flagged, err = m.Int64Counter("anonsession.flagged",
		metric.WithDescription("Behavior flags raised, by flag")); err != nil {
		return nil, err
	}
	return &rm, nil
}

func reasonAttr(reason string) metric.AddOption {
	return metric.WithAttributes(attribute.String("reason", reason))
}

func flagAttr(flag string) metric.AddOption {
	return metric.WithAttributes(attribute.String("flag", flag))
}

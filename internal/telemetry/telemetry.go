// Package telemetry provides OpenTelemetry metrics for blueprint.
//
// Telemetry is disabled by default. When off, no-op providers are installed
// and instruments cost nothing.
//
// # Configuration
//
//	telemetry.enabled: true   (BLUEPRINT_TELEMETRY_ENABLED) enable metrics
//	telemetry.stdout:  true   (BLUEPRINT_TELEMETRY_STDOUT) export to stderr
package telemetry

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const instrumentationScope = "github.com/example/blueprint"

var shutdownFns []func(context.Context) error

// Options select the exporters.
type Options struct {
	Enabled     bool
	Stdout      bool
	ServiceName string
	Version     string
	// Writer receives stdout exports; defaults to os.Stderr.
	Writer io.Writer
}

// Init configures the global meter provider.
func Init(ctx context.Context, opts Options) error {
	if !opts.Enabled {
		otel.SetMeterProvider(metricnoop.NewMeterProvider())
		return nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(opts.ServiceName),
			semconv.ServiceVersionKey.String(opts.Version),
		),
	)
	if err != nil {
		return fmt.Errorf("telemetry: resource: %w", err)
	}

	mp, err := buildMeterProvider(res, opts)
	if err != nil {
		return fmt.Errorf("telemetry: meter provider: %w", err)
	}
	otel.SetMeterProvider(mp)
	shutdownFns = append(shutdownFns, mp.Shutdown)
	return nil
}

func buildMeterProvider(res *resource.Resource, opts Options) (*sdkmetric.MeterProvider, error) {
	mpOpts := []sdkmetric.Option{sdkmetric.WithResource(res)}

	// A CLI process is short lived; Shutdown flushes whatever the reader holds.
	if opts.Stdout {
		w := opts.Writer
		if w == nil {
			w = os.Stderr
		}
		exp, err := stdoutmetric.New(stdoutmetric.WithWriter(w))
		if err != nil {
			return nil, err
		}
		mpOpts = append(mpOpts, sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(15*time.Second)),
		))
	}

	return sdkmetric.NewMeterProvider(mpOpts...), nil
}

// Meter returns a meter with the given instrumentation name (or the global scope).
func Meter(name string) metric.Meter {
	if name == "" {
		name = instrumentationScope
	}
	return otel.Meter(name)
}

// Shutdown flushes metrics and shuts down providers.
func Shutdown(ctx context.Context) {
	for _, fn := range shutdownFns {
		_ = fn(ctx)
	}
	shutdownFns = nil
}

// Instruments are the counters the services record into.
type Instruments struct {
	operations metric.Int64Counter
	rejections metric.Int64Counter
}

// NewInstruments creates the blueprint counters on m.
func NewInstruments(m metric.Meter) (*Instruments, error) {
	ops, err := m.Int64Counter("blueprint.operations",
		metric.WithDescription("Store operations by name and outcome"),
		metric.WithUnit("{operation}"))
	if err != nil {
		return nil, err
	}
	rej, err := m.Int64Counter("blueprint.gate.rejections",
		metric.WithDescription("Mutations rejected by a gate"),
		metric.WithUnit("{rejection}"))
	if err != nil {
		return nil, err
	}
	return &Instruments{operations: ops, rejections: rej}, nil
}

// RecordOperation counts one call to op, tagged ok or error.
func (i *Instruments) RecordOperation(ctx context.Context, op string, err error) {
	if i == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	i.operations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("outcome", outcome),
	))
}

// RecordRejection counts one gate rejection.
func (i *Instruments) RecordRejection(ctx context.Context, gate, code string) {
	if i == nil {
		return
	}
	i.rejections.Add(ctx, 1, metric.WithAttributes(
		attribute.String("gate", gate),
		attribute.String("code", code),
	))
}

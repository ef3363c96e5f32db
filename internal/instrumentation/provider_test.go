package instrumentation

import (
	"context"
	"strings"
	"testing"
	"time"
)

func providerConfig(metricsExporter, tracingExporter string) Config {
	return Config{
		ServiceName:     "gdocs-mcp",
		ServiceVersion:  "test",
		Enabled:         true,
		MetricsExporter: metricsExporter,
		TracingExporter: tracingExporter,
	}
}

func TestNewProvider_Disabled(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{
		ServiceName:    "gdocs-mcp",
		ServiceVersion: "test",
		Enabled:        false,
	})
	if err != nil {
		t.Fatalf("NewProvider returned error: %v", err)
	}

	if provider.Enabled() {
		t.Error("disabled config produced an enabled provider")
	}

	// Disabled providers still hand out working no-op recorders.
	if provider.Metrics() == nil {
		t.Error("Metrics returned nil for disabled provider")
	}
	if provider.Tracer("dispatcher") == nil {
		t.Error("Tracer returned nil for disabled provider")
	}

	if err := provider.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown returned error for disabled provider: %v", err)
	}
}

func TestNewProvider_Prometheus(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	provider, err := NewProvider(ctx, providerConfig(ExporterPrometheus, ExporterNone))
	if err != nil {
		t.Fatalf("NewProvider returned error: %v", err)
	}
	defer func() { _ = provider.Shutdown(ctx) }()

	if !provider.Enabled() {
		t.Error("provider not enabled")
	}
	if provider.Metrics() == nil {
		t.Error("Metrics returned nil")
	}
	if provider.PrometheusHandler() == nil {
		t.Error("PrometheusHandler returned nil with the prometheus exporter configured")
	}
	if provider.Tracer("dispatcher") == nil {
		t.Error("Tracer returned nil")
	}
}

func TestNewProvider_StdoutExporters(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	provider, err := NewProvider(ctx, providerConfig(ExporterStdout, ExporterStdout))
	if err != nil {
		t.Fatalf("NewProvider returned error: %v", err)
	}
	defer func() { _ = provider.Shutdown(ctx) }()

	if !provider.Enabled() {
		t.Error("provider not enabled")
	}
	// Only the prometheus exporter backs the metrics endpoint.
	if provider.PrometheusHandler() != nil {
		t.Error("PrometheusHandler returned non-nil with the stdout exporter configured")
	}
}

func TestNewProvider_ConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{
			name:    "unknown metrics exporter",
			config:  providerConfig("graphite", ExporterNone),
			wantErr: "unsupported metrics exporter",
		},
		{
			name:    "unknown tracing exporter",
			config:  providerConfig(ExporterPrometheus, "zipkin"),
			wantErr: "unsupported tracing exporter",
		},
		{
			name:    "otlp tracing without endpoint",
			config:  providerConfig(ExporterPrometheus, ExporterOTLP),
			wantErr: "OTLP endpoint is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			_, err := NewProvider(ctx, tt.config)
			if err == nil {
				t.Fatal("NewProvider succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestProvider_Shutdown(t *testing.T) {
	ctx := context.Background()

	provider, err := NewProvider(ctx, providerConfig(ExporterPrometheus, ExporterNone))
	if err != nil {
		t.Fatalf("NewProvider returned error: %v", err)
	}

	if err := provider.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown returned error: %v", err)
	}
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cheetahbyte/licensemgr/internal/handlers/dto"
	"github.com/cheetahbyte/licensemgr/internal/metrics"
	"github.com/cheetahbyte/licensemgr/internal/registry"
)

type LicenseService struct {
	registry *registry.Registry
	metrics  *metrics.Metrics
}

func NewLicenseService(reg *registry.Registry, m *metrics.Metrics) *LicenseService {
	m.TrackActive(reg.Len)
	return &LicenseService{
		registry: reg,
		metrics:  m,
	}
}

func toResponse(l registry.License) dto.LicenseResponse {
	return dto.LicenseResponse{Key: l.Key, Host: l.Host, Expires: l.Expires}
}

// expiresMillis truncates a JSON number to whole milliseconds, saturating
// at the int64 range.
func expiresMillis(f float64) int64 {
	switch {
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	}
	return int64(f)
}

func (svc *LicenseService) ListLicenses(ctx context.Context) []dto.LicenseResponse {
	all := svc.registry.List()
	out := make([]dto.LicenseResponse, len(all))
	for i, l := range all {
		out[i] = toResponse(l)
	}
	return out
}

func (svc *LicenseService) GetLicense(ctx context.Context, key string) (dto.LicenseResponse, error) {
	l, ok := svc.registry.Get(key)
	if !ok {
		return dto.LicenseResponse{}, registry.ErrNotFound
	}
	return toResponse(l), nil
}

func (svc *LicenseService) NewLicense(ctx context.Context, data dto.LicenseCreationRequest) (dto.LicenseResponse, error) {
	license, err := svc.registry.Create(data.Host, expiresMillis(data.Expires))
	if err != nil {
		if !errors.Is(err, registry.ErrHostRequired) {
			slog.ErrorContext(ctx, "failed to create license", "err", err.Error())
		}
		return dto.LicenseResponse{}, fmt.Errorf("new license: %w", err)
	}

	svc.metrics.Created.Inc()
	slog.InfoContext(ctx, "license created",
		"license", license.Key,
		"host", license.Host,
		"expires", license.ExpiresAt().UTC().Format(time.RFC3339),
	)

	return toResponse(license), nil
}

func (svc *LicenseService) DeleteLicense(ctx context.Context, key string) error {
	if err := svc.registry.Delete(key); err != nil {
		slog.WarnContext(ctx, "license is not found", "license", key)
		return fmt.Errorf("delete license: %w", err)
	}

	svc.metrics.Deleted.Inc()
	slog.InfoContext(ctx, "license deleted", "license", key)
	return nil
}

func (svc *LicenseService) ValidateLicense(ctx context.Context, key, host string) registry.Status {
	status := svc.registry.Validate(key, host)

	svc.metrics.Validations.WithLabelValues(status.String()).Inc()
	if status == registry.StatusExpired {
		svc.metrics.Removed.WithLabelValues("validate").Inc()
	}

	slog.DebugContext(ctx, "license validated", "license", key, "host", host, "outcome", status.String())
	return status
}

func (svc *LicenseService) Sweep(ctx context.Context) int {
	removed := svc.registry.Sweep()
	svc.recordSweep(ctx, removed)
	return removed
}

func (svc *LicenseService) recordSweep(ctx context.Context, removed int) {
	svc.metrics.Sweeps.Inc()
	svc.metrics.Removed.WithLabelValues("sweep").Add(float64(removed))
	slog.InfoContext(ctx, "expired licenses swept", "removed", removed, "remaining", svc.registry.Len())
}

// RunSweeper blocks until ctx is cancelled.
func (svc *LicenseService) RunSweeper(ctx context.Context, interval time.Duration) {
	slog.InfoContext(ctx, "license sweeper started", "interval", interval.String())
	svc.registry.RunSweeper(ctx, interval, func(removed int) {
		svc.recordSweep(ctx, removed)
	})
	slog.InfoContext(ctx, "license sweeper stopped")
}

func (svc *LicenseService) Count() int {
	return svc.registry.Len()
}

package services

import (
	"github.com/cheetahbyte/licensemgr/internal/config"
	"github.com/cheetahbyte/licensemgr/internal/metrics"
	"github.com/cheetahbyte/licensemgr/internal/registry"
)

type ServiceStack struct {
	license *LicenseService
	auth    *AuthService
}

func InitServices(reg *registry.Registry, m *metrics.Metrics, admin config.AdminConfig) ServiceStack {
	license := NewLicenseService(reg, m)
	auth := NewAuthService(admin)
	return ServiceStack{license: license, auth: auth}
}

func (s ServiceStack) License() *LicenseService { return s.license }

func (s ServiceStack) Auth() *AuthService { return s.auth }

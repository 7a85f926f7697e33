package tenantcfg

import (
	"context"

	"github.com/guestflow/faqbot/internal/domain/retrieval"
)

// StaticProvider resolves tenant settings from configuration loaded at
// startup. Tenants without an override get zero-valued settings, which
// the retrieval core fills with its defaults.
type StaticProvider struct {
	overrides map[string]retrieval.TenantSettings
}

// NewStaticProvider constructs the provider.
func NewStaticProvider(overrides map[string]retrieval.TenantSettings) *StaticProvider {
	if overrides == nil {
		overrides = make(map[string]retrieval.TenantSettings)
	}
	return &StaticProvider{overrides: overrides}
}

// Get implements retrieval.ConfigProvider.
func (p *StaticProvider) Get(_ context.Context, tenantID string) (retrieval.TenantSettings, error) {
	return p.overrides[tenantID], nil
}

var _ retrieval.ConfigProvider = (*StaticProvider)(nil)

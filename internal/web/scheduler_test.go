package web

import (
	"testing"
	"time"

	"github.com/hpungsan/plusblocks/internal/block"
)

func TestMaintenance_PrunesExpired(t *testing.T) {
	env, _ := setupTest(t)
	if err := env.Cache.SetVariant(&block.VariantCode{
		Category: block.ContextMarketing, BlockSlug: "testimonials", VariantSlug: "grid",
		Format: block.FormatReact, Version: block.VersionV4, Theme: block.ThemeLight,
		CachedAt: testNow.Add(-8 * 24 * time.Hour).UnixMilli(),
	}); err != nil {
		t.Fatalf("SetVariant: %v", err)
	}

	m, err := NewMaintenance(env, 20*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("NewMaintenance: %v", err)
	}
	m.Start()
	defer m.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for env.Cache.Stats().TotalEntries != 0 {
		if time.Now().After(deadline) {
			t.Fatal("expired entry was not pruned by the scheduled job")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestNewMaintenance_RejectsZeroInterval(t *testing.T) {
	env, _ := setupTest(t)
	if _, err := NewMaintenance(env, 0, nil); err == nil {
		t.Fatal("expected error for zero interval")
	}
}

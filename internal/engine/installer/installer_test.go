package installer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/nixster/internal/core/domain"
	"go.trai.ch/nixster/internal/core/ports"
	"go.trai.ch/nixster/internal/core/ports/mocks"
	"go.trai.ch/nixster/internal/engine/installer"
	"go.uber.org/mock/gomock"
)

const profile = "/nix/profiles/science"

type fixture struct {
	catalog *mocks.MockCatalogStore
	pm      *mocks.MockPackageManager
	span    *mocks.MockSpan
	logger  *mocks.MockLogger
	inst    *installer.Installer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &fixture{
		catalog: mocks.NewMockCatalogStore(ctrl),
		pm:      mocks.NewMockPackageManager(ctrl),
		span:    mocks.NewMockSpan(ctrl),
		logger:  mocks.NewMockLogger(ctrl),
	}

	tracer := mocks.NewMockTracer(ctrl)
	tracer.EXPECT().Start(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ string, _ ...ports.SpanOption) (context.Context, ports.Span) {
			return ctx, f.span
		}).AnyTimes()
	f.span.EXPECT().End().AnyTimes()
	f.logger.EXPECT().Debug(gomock.Any()).AnyTimes()

	f.inst = installer.New(f.catalog, f.pm, tracer, f.logger)
	return f
}

func (f *fixture) catalogHas(name string, entries ...domain.CatalogEntry) {
	f.catalog.EXPECT().Match(gomock.Any(), domain.ParsePackageRequest(name)).Return(entries, nil)
}

func TestInstall_SingleChannel(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.catalogHas("r",
		domain.CatalogEntry{Name: "r", Version: "3.5.1", Channel: "nixos-18.09", Attribute: "R"},
		domain.CatalogEntry{Name: "r", Version: "3.4.4", Channel: "nixos-18.09", Attribute: "R-old"},
	)
	f.catalogHas("python", domain.CatalogEntry{Name: "python", Version: "3.7.0", Channel: "nixos-18.09", Attribute: "python3"})

	f.pm.EXPECT().Install(gomock.Any(), domain.InstallRequest{
		Channel:    "nixos-18.09",
		Attributes: []string{"R", "python3"},
		Profile:    profile,
		Clean:      true,
	}).Return(nil)

	require.NoError(t, f.inst.Install(context.Background(), profile, []string{"r", "python"}, true))
}

func TestInstall_MixedChannelsWarnsAndCleansOnce(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.catalogHas("r", domain.CatalogEntry{Name: "r", Channel: "nixos-18.09", Attribute: "R"})
	f.catalogHas("nodejs==8.9.4", domain.CatalogEntry{Name: "nodejs", Version: "8.9.4", Channel: "nixos-18.03", Attribute: "nodejs-8_x"})
	f.catalogHas("python", domain.CatalogEntry{Name: "python", Channel: "nixos-18.09", Attribute: "python3"})

	f.logger.EXPECT().Warn("installing packages from multiple channels: nixos-18.09, nixos-18.03")

	gomock.InOrder(
		f.pm.EXPECT().Install(gomock.Any(), domain.InstallRequest{
			Channel:    "nixos-18.09",
			Attributes: []string{"R", "python3"},
			Profile:    profile,
			Clean:      true,
		}).Return(nil),
		f.pm.EXPECT().Install(gomock.Any(), domain.InstallRequest{
			Channel:    "nixos-18.03",
			Attributes: []string{"nodejs-8_x"},
			Profile:    profile,
			Clean:      false,
		}).Return(nil),
	)

	err := f.inst.Install(context.Background(), profile, []string{"r", "nodejs==8.9.4", "python"}, true)
	require.NoError(t, err)
}

func TestInstall_NoMatchInstallsNothing(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.catalogHas("r", domain.CatalogEntry{Name: "r", Channel: "nixos-18.09", Attribute: "R"})
	f.catalogHas("nosuchthing")

	err := f.inst.Install(context.Background(), profile, []string{"r", "nosuchthing", "python"}, true)
	require.ErrorIs(t, err, domain.ErrNoMatchingPackage)

	var missing *domain.MissingPackageError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "nosuchthing", missing.Package)
}

func TestInstall_EmptySetClearsProfile(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.pm.EXPECT().Uninstall(gomock.Any(), profile).Return(nil)

	require.NoError(t, f.inst.Install(context.Background(), profile, nil, true))
}

func TestInstall_EmptySetWithoutClean(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	require.NoError(t, f.inst.Install(context.Background(), profile, nil, false))
}

func TestInstall_ClearFailure(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.pm.EXPECT().Uninstall(gomock.Any(), profile).Return(domain.ErrCommandFailed)
	f.span.EXPECT().RecordError(gomock.Any())

	err := f.inst.Install(context.Background(), profile, []string{}, true)
	require.ErrorIs(t, err, domain.ErrCommandFailed)
}

func TestInstall_PackageManagerFailure(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.catalogHas("r", domain.CatalogEntry{Name: "r", Channel: "nixos-18.09", Attribute: "R"})
	f.pm.EXPECT().Install(gomock.Any(), gomock.Any()).Return(domain.ErrCommandFailed)
	f.span.EXPECT().RecordError(gomock.Any())

	err := f.inst.Install(context.Background(), profile, []string{"r"}, false)
	require.ErrorIs(t, err, domain.ErrCommandFailed)
}

func TestInstall_CatalogFailure(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.catalog.EXPECT().Match(gomock.Any(), gomock.Any()).Return(nil, domain.ErrCatalogQueryFailed)

	err := f.inst.Install(context.Background(), profile, []string{"r"}, false)
	require.ErrorIs(t, err, domain.ErrCatalogQueryFailed)
}

func TestUpgrade_PicksHighestPriority(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.catalogHas("nodejs",
		domain.CatalogEntry{Name: "nodejs", Version: "10.9.0", Attribute: "nodejs-10_x", Priority: 0},
		domain.CatalogEntry{Name: "nodejs", Version: "10.9.0", Attribute: "nodejs-slim-10_x", Priority: 5},
		domain.CatalogEntry{Name: "nodejs", Version: "8.11.4", Attribute: "nodejs-8_x", Priority: 5},
	)
	f.pm.EXPECT().Upgrade(gomock.Any(), domain.DefaultUpgradeChannel, profile, []string{"nodejs-slim-10_x"}).Return(nil)

	require.NoError(t, f.inst.Upgrade(context.Background(), profile, []string{"nodejs"}))
}

func TestUpgrade_Everything(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.pm.EXPECT().Upgrade(gomock.Any(), domain.DefaultUpgradeChannel, profile, gomock.Nil()).Return(nil)

	require.NoError(t, f.inst.Upgrade(context.Background(), profile, nil))
}

func TestUpgrade_UnknownName(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.catalogHas("nosuchthing")

	err := f.inst.Upgrade(context.Background(), profile, []string{"nosuchthing"})
	require.ErrorIs(t, err, domain.ErrNoMatchingPackage)
}

package domain_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/nixster/internal/core/domain"
)

func TestValidateContainerID(t *testing.T) {
	valid := []string{"0123456789ab", "ABCDEFabcdef"}
	for _, id := range valid {
		require.NoError(t, domain.ValidateContainerID(id), id)
	}

	invalid := []string{
		"",
		"abc",
		"0123456789abc",
		strings.Repeat("a", 64),
		"0123456789a;",
		"$(rm -rf /)a",
		"0123456789a ",
		"01234-6789ab",
	}
	for _, id := range invalid {
		err := domain.ValidateContainerID(id)
		require.ErrorIs(t, err, domain.ErrInvalidContainerID, "%q", id)
	}
}

func TestShortContainerID(t *testing.T) {
	full := "4f66ad9a0b2e91d8c3b6b0d9f11f0e0a5b7c8d9e0f1a2b3c4d5e6f708192a3b4\n"
	assert.Equal(t, "4f66ad9a0b2e", domain.ShortContainerID(full))
	assert.Equal(t, "abc", domain.ShortContainerID("abc"))
}

func TestParsePlatform(t *testing.T) {
	tests := map[string]domain.Platform{
		"unix":   domain.PlatformUnix,
		"0":      domain.PlatformUnix,
		"win":    domain.PlatformWindows,
		"DOCKER": domain.PlatformDocker,
		"2":      domain.PlatformDocker,
	}
	for in, want := range tests {
		got, err := domain.ParsePlatform(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := domain.ParsePlatform("amiga")
	require.ErrorIs(t, err, domain.ErrUnknownPlatform)
}

func TestCommandResult_Check(t *testing.T) {
	cmd := domain.Command{Name: "nix-env", Args: []string{"--install"}}

	require.NoError(t, domain.CommandResult{}.Check(cmd))

	err := domain.CommandResult{ExitCode: 2, Stderr: "boom\n"}.Check(cmd)
	require.ErrorIs(t, err, domain.ErrCommandFailed)
	assert.Equal(t, "nix-env --install", cmd.String())
}

func TestServeSettings_TokenSecret(t *testing.T) {
	secret, err := domain.ServeSettings{Secret: "s3cret"}.TokenSecret()
	require.NoError(t, err)
	assert.Equal(t, "s3cret", secret)

	secret, err = domain.ServeSettings{Development: true}.TokenSecret()
	require.NoError(t, err)
	assert.Equal(t, domain.DevelopmentSecret, secret)

	_, err = domain.ServeSettings{}.TokenSecret()
	require.ErrorIs(t, err, domain.ErrMissingSecret)
}

package domain

import "go.trai.ch/zerr"

var (
	// ErrEnvironmentNotFound is returned when no spec is persisted under the requested name.
	ErrEnvironmentNotFound = zerr.New("environment not found")

	// ErrEnvironmentExists is returned when creating an environment whose spec already exists without force.
	ErrEnvironmentExists = zerr.New("environment already exists, use the force option to overwrite it")

	// ErrMissingEnvironmentName is returned when an operation is given an empty environment name.
	ErrMissingEnvironmentName = zerr.New("environment name not provided")

	// ErrInvalidEnvironmentName is returned when an environment name cannot be used as a file name.
	ErrInvalidEnvironmentName = zerr.New("environment name can only contain alphanumeric characters, dots, hyphens and underscores")

	// ErrUnknownBaseEnvironment is returned when an environment extends a spec that does not exist.
	ErrUnknownBaseEnvironment = zerr.New("unable to find base environment")

	// ErrCyclicExtends is returned when the extends graph of an environment contains a cycle.
	ErrCyclicExtends = zerr.New("cyclic extends detected")

	// ErrNoMatchingPackage is returned when the catalog has no candidate for a requested package.
	ErrNoMatchingPackage = zerr.New("no package matches")

	// ErrProfileNotFound is returned when the package manager profile of an environment is missing.
	ErrProfileNotFound = zerr.New("profile for environment does not exist")

	// ErrNotBuilt is returned when a session is requested for an environment that was never installed.
	ErrNotBuilt = zerr.New("environment has not been built yet")

	// ErrInvalidPlatform is returned when a container-only operation is used with a host platform.
	ErrInvalidPlatform = zerr.New("operation is only supported on the docker platform")

	// ErrUnknownPlatform is returned when a platform name cannot be parsed.
	ErrUnknownPlatform = zerr.New("unknown platform")

	// ErrInvalidContainerID is returned when a container identifier is not 12 alphanumeric characters.
	ErrInvalidContainerID = zerr.New("invalid container id")

	// ErrNotRunning is returned when a container operation targets a container that is not running.
	ErrNotRunning = zerr.New("container is not running")

	// ErrContainerAssigned is returned when a session that already owns a container is started again.
	ErrContainerAssigned = zerr.New("session already has a container")

	// ErrInvalidSessionState is returned when a session transition is not allowed from its current state.
	ErrInvalidSessionState = zerr.New("invalid session state transition")

	// ErrCommandFailed is returned when an external tool exits with a non-zero status.
	ErrCommandFailed = zerr.New("external command failed")

	// ErrEmptyCommand is returned when asked to run a command without a program name.
	ErrEmptyCommand = zerr.New("empty command")

	// ErrMalformedOutput is returned when an external tool produces output that cannot be parsed.
	ErrMalformedOutput = zerr.New("malformed output from external command")

	// ErrCatalogOpenFailed is returned when the catalog database cannot be opened.
	ErrCatalogOpenFailed = zerr.New("failed to open package catalog")

	// ErrCatalogQueryFailed is returned when a catalog query fails.
	ErrCatalogQueryFailed = zerr.New("failed to query package catalog")

	// ErrCatalogWriteFailed is returned when catalog rows cannot be written.
	ErrCatalogWriteFailed = zerr.New("failed to write package catalog")

	// ErrUnsupportedDump is returned when dumping a table other than packages.
	ErrUnsupportedDump = zerr.New("dumping table is not supported")

	// ErrSpecReadFailed is returned when an environment spec cannot be read.
	ErrSpecReadFailed = zerr.New("failed to read environment spec")

	// ErrSpecParseFailed is returned when an environment spec is not valid YAML.
	ErrSpecParseFailed = zerr.New("failed to parse environment spec")

	// ErrSpecWriteFailed is returned when an environment spec cannot be written.
	ErrSpecWriteFailed = zerr.New("failed to write environment spec")

	// ErrConfigLoadFailed is returned when the settings cannot be loaded.
	ErrConfigLoadFailed = zerr.New("failed to load configuration")

	// ErrMissingSecret is returned when the server is started without a token secret outside development.
	ErrMissingSecret = zerr.New("JWT_SECRET must be set")

	// ErrUnknownFormat is returned for an output format that is not supported.
	ErrUnknownFormat = zerr.New("unknown output format")
)

package domain

import "strings"

// PackageVersionSeparator splits a package request into name and exact version.
const PackageVersionSeparator = "=="

// CatalogEntry is one package row resolved from a channel during a catalog refresh.
type CatalogEntry struct {
	Type        string `json:"type,omitempty"`
	Name        string `json:"name"`
	Version     string `json:"version"`
	Runtime     string `json:"runtime,omitempty"`
	Channel     string `json:"channel"`
	Attribute   string `json:"attr"`
	FullName    string `json:"fullname,omitempty"`
	Priority    int    `json:"priority"`
	Description string `json:"description,omitempty"`
	Meta        string `json:"-"`
}

// VersionKey returns the orderable form of the entry's version.
func (c CatalogEntry) VersionKey() string {
	return VersionKey(c.Version)
}

// PackageRequest is a parsed "name" or "name==version" request.
type PackageRequest struct {
	Name    string
	Version string
}

// ParsePackageRequest splits pkg on the version separator.
func ParsePackageRequest(pkg string) PackageRequest {
	name, version, _ := strings.Cut(pkg, PackageVersionSeparator)
	return PackageRequest{Name: name, Version: version}
}

// String returns the request in "name==version" form.
func (r PackageRequest) String() string {
	if r.Version == "" {
		return r.Name
	}
	return r.Name + PackageVersionSeparator + r.Version
}

// SearchQuery selects catalog rows by full text match.
type SearchQuery struct {
	Term  string
	Type  string
	Limit int
}

// DefaultSearchLimit caps the number of rows a search returns when no limit is given.
const DefaultSearchLimit = 1000

// SearchResult is one (name, type) group of matching catalog rows.
//
// Version, Channel and Description are the maximum values of the group, not the
// values of a single row.
type SearchResult struct {
	Name        string `json:"name"`
	Type        string `json:"type,omitempty"`
	Version     string `json:"version"`
	Channel     string `json:"channel"`
	Description string `json:"description,omitempty"`
}

// AvailablePackage is a package reported by the package manager for a channel.
type AvailablePackage struct {
	Attribute   string
	Name        string
	Priority    int
	Description string
	Meta        string
}

// InstallRequest asks the package manager to install attributes from one channel.
type InstallRequest struct {
	Channel    string
	Attributes []string
	Profile    string
	Clean      bool
}

// MissingPackageError reports a package request with no catalog candidate. It
// matches ErrNoMatchingPackage under errors.Is.
type MissingPackageError struct {
	Package string
}

func (e *MissingPackageError) Error() string {
	return ErrNoMatchingPackage.Error() + " \"" + e.Package + "\""
}

// Unwrap returns ErrNoMatchingPackage.
func (e *MissingPackageError) Unwrap() error {
	return ErrNoMatchingPackage
}

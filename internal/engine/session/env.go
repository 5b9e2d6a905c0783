package session

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"go.trai.ch/nixster/internal/core/domain"
)

const (
	// containerPath follows the environment's directories in a container PATH.
	containerPath = "/usr/local/sbin:/usr/local/bin:/usr/sbin:/usr/bin:/sbin:/bin"

	// terminalType is announced to programs on session terminals.
	terminalType = "xterm-color"

	// EnvVariable names the environment a shell runs in.
	EnvVariable = "NIXSTER_ENV"
)

// passthrough lists host variables kept in host shells and commands.
var passthrough = []string{"HOME", "USER", "LOGNAME", "LANG", "LC_ALL", "TZ"}

// commandEnv builds the environment of programs run on the host inside spec.
func (m *Manager) commandEnv(spec *domain.Environment, location string, pure bool) []string {
	path := location + "/bin:" + location + "/sbin"
	if hostPath := lookupEnv(m.host.Environ, "PATH"); !pure && hostPath != "" {
		path += ":" + hostPath
	}

	env := []string{
		"PATH=" + path,
		"R_LIBS_SITE=" + location + "/library",
	}
	for _, key := range passthrough {
		if value := lookupEnv(m.host.Environ, key); value != "" {
			env = append(env, key+"="+value)
		}
	}
	env = append(env, variables(spec)...)
	return append(env, EnvVariable+"="+spec.Name)
}

// shellEnv extends commandEnv with the prompt and terminal of an interactive shell.
func (m *Manager) shellEnv(spec *domain.Environment, location string, pure bool) []string {
	return append(m.commandEnv(spec, location, pure),
		"PS1="+prompt(spec.Name),
		"TERM="+terminalType,
	)
}

// containerEnv builds the environment set inside a container.
func containerEnv(spec *domain.Environment, location string) []string {
	env := []string{
		"PATH=" + location + "/bin:" + location + "/sbin:" + containerPath,
		"R_LIBS_SITE=" + location + "/library",
	}
	return append(env, variables(spec)...)
}

// clientEnv is the environment of the container runtime client on a terminal.
func clientEnv(cmd domain.Command) []string {
	return append(slices.Clone(cmd.Env), "TERM="+terminalType)
}

// variables returns the spec's variables as KEY=VALUE pairs ordered by key.
func variables(spec *domain.Environment) []string {
	keys := slices.Sorted(maps.Keys(spec.Variables))
	env := make([]string, 0, len(keys))
	for _, key := range keys {
		env = append(env, key+"="+spec.Variables[key])
	}
	return env
}

// prompt shows the environment name in bold green and the working directory in blue.
func prompt(name string) string {
	return fmt.Sprintf(`☆ \[\e[1;32m\]%s\[\e[0m\]:\[\e[34m\]\w\[\e[0m\]$ `, name)
}

func lookupEnv(environ []string, key string) string {
	for i := len(environ) - 1; i >= 0; i-- {
		if k, v, ok := strings.Cut(environ[i], "="); ok && k == key {
			return v
		}
	}
	return ""
}

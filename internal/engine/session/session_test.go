package session_test

import (
	"context"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/nixster/internal/core/domain"
	"go.trai.ch/nixster/internal/core/ports"
	"go.trai.ch/nixster/internal/core/ports/mocks"
	"go.trai.ch/nixster/internal/engine/session"
	"go.uber.org/mock/gomock"
)

const (
	location    = "/nix/store/abc-user-environment"
	containerID = "0123456789ab"
)

type fixture struct {
	envs    *mocks.MockEnvironmentStore
	pm      *mocks.MockPackageManager
	rt      *mocks.MockContainerRuntime
	spawner *mocks.MockTerminalSpawner
	runner  *mocks.MockCommandRunner
	m       *session.Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &fixture{
		envs:    mocks.NewMockEnvironmentStore(ctrl),
		pm:      mocks.NewMockPackageManager(ctrl),
		rt:      mocks.NewMockContainerRuntime(ctrl),
		spawner: mocks.NewMockTerminalSpawner(ctrl),
		runner:  mocks.NewMockCommandRunner(ctrl),
	}

	span := mocks.NewMockSpan(ctrl)
	span.EXPECT().End().AnyTimes()
	span.EXPECT().RecordError(gomock.Any()).AnyTimes()
	tracer := mocks.NewMockTracer(ctrl)
	tracer.EXPECT().Start(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ string, _ ...ports.SpanOption) (context.Context, ports.Span) {
			return ctx, span
		}).AnyTimes()

	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Debug(gomock.Any()).AnyTimes()
	logger.EXPECT().Warn(gomock.Any()).AnyTimes()

	f.m = session.New(f.envs, f.pm, f.rt, f.spawner, f.runner, tracer, logger, "/nix/profiles").
		WithHost(session.Host{
			Executable: "/usr/local/bin/nixster",
			Environ:    []string{"PATH=/usr/bin:/bin", "HOME=/home/ada", "SECRET=hidden", "DOCKER_HOST=tcp://docker:2375"},
			GOOS:       "linux",
			LookPath:   func(file string) (string, error) { return "/bin/" + file, nil },
		})
	return f
}

func (f *fixture) built(env *domain.Environment) {
	f.envs.EXPECT().Read(env.Name).Return(env, nil).AnyTimes()
	f.pm.EXPECT().Location("/nix/profiles/"+env.Name).Return(location, nil).AnyTimes()
}

func platform(p domain.Platform) *domain.Platform {
	return &p
}

// closedInput is an input stream that has already ended.
func closedInput() io.Reader {
	r, w := io.Pipe()
	_ = w.Close()
	return r
}

func TestNewSession(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	s, err := f.m.NewSession("science", domain.SessionOptions{})
	require.NoError(t, err)
	assert.Equal(t, domain.PlatformUnix, s.Platform())
	assert.Equal(t, domain.SessionCreated, s.State())
	assert.Empty(t, s.ContainerID())

	f.m.WithHost(session.Host{GOOS: "windows"})
	s, err = f.m.NewSession("science", domain.SessionOptions{})
	require.NoError(t, err)
	assert.Equal(t, domain.PlatformWindows, s.Platform())

	_, err = f.m.NewSession("", domain.SessionOptions{})
	require.ErrorIs(t, err, domain.ErrMissingEnvironmentName)

	_, err = f.m.NewSession("science", domain.SessionOptions{ContainerID: "not valid"})
	require.ErrorIs(t, err, domain.ErrInvalidContainerID)
}

func TestRun_HostShell(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.built(&domain.Environment{Name: "science", Variables: map[string]string{"LANG": "C.UTF-8"}})

	proc := newFakeProcess()
	var rcfile string
	f.spawner.EXPECT().Start(gomock.Any(), gomock.Any(), domain.DefaultTerminalSize).
		DoAndReturn(func(_ context.Context, cmd domain.Command, _ domain.TerminalSize) (ports.Process, error) {
			assert.Equal(t, "/bin/bash", cmd.Name)
			require.Len(t, cmd.Args, 3)
			assert.Equal(t, []string{"--noprofile", "--rcfile"}, cmd.Args[:2])
			rcfile = cmd.Args[2]

			data, err := os.ReadFile(rcfile)
			require.NoError(t, err)
			assert.Equal(t, "alias nixster=\"/usr/local/bin/nixster\"\n", string(data))

			assert.Equal(t, []string{
				"PATH=" + location + "/bin:" + location + "/sbin:/usr/bin:/bin",
				"R_LIBS_SITE=" + location + "/library",
				"HOME=/home/ada",
				"LANG=C.UTF-8",
				"NIXSTER_ENV=science",
				"PS1=" + session.Prompt("science"),
				"TERM=xterm-color",
			}, cmd.Env)
			return proc, nil
		})

	s, err := f.m.NewSession("science", domain.SessionOptions{Command: "R"})
	require.NoError(t, err)

	inR, inW := io.Pipe()
	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background(), inR, io.Discard, true) }()

	select {
	case <-proc.written:
	case <-time.After(5 * time.Second):
		t.Fatal("initial command was not typed")
	}
	assert.Equal(t, "R\r", proc.received())
	assert.Equal(t, domain.SessionAttached, s.State())

	require.NoError(t, s.Resize(domain.TerminalSize{Rows: 50, Cols: 200}))

	require.NoError(t, inW.Close())
	require.NoError(t, <-done)

	assert.Equal(t, domain.SessionTerminated, s.State())
	assert.Equal(t, []domain.TerminalSize{{Rows: 50, Cols: 200}}, proc.sizes)
	_, err = os.Stat(rcfile)
	require.ErrorIs(t, err, os.ErrNotExist)

	err = s.Run(context.Background(), closedInput(), io.Discard, true)
	require.ErrorIs(t, err, domain.ErrInvalidSessionState)
}

func TestRun_PureHostShell(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.built(&domain.Environment{Name: "science"})

	proc := newFakeProcess()
	f.spawner.EXPECT().Start(gomock.Any(), gomock.Any(), domain.TerminalSize{Rows: 40, Cols: 100}).
		DoAndReturn(func(_ context.Context, cmd domain.Command, _ domain.TerminalSize) (ports.Process, error) {
			assert.Equal(t, "PATH="+location+"/bin:"+location+"/sbin", cmd.Env[0])
			return proc, nil
		})

	s, err := f.m.NewSession("science", domain.SessionOptions{Pure: true, Size: domain.TerminalSize{Rows: 40, Cols: 100}})
	require.NoError(t, err)
	require.NoError(t, s.Run(context.Background(), closedInput(), io.Discard, true))
	assert.Empty(t, proc.received())
}

func TestRun_Container(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.built(&domain.Environment{Name: "science", Variables: map[string]string{"B": "2", "A": "1"}})

	f.rt.EXPECT().RunCommand(ports.ContainerRunOptions{
		Env: []string{
			"PATH=" + location + "/bin:" + location + "/sbin:/usr/local/sbin:/usr/local/bin:/usr/sbin:/usr/bin:/sbin:/bin",
			"R_LIBS_SITE=" + location + "/library",
			"A=1",
			"B=2",
		},
		Mounts:      []string{"/data:/data:ro"},
		CPUShares:   512,
		MemoryLimit: "1g",
		Command:     []string{"R", "--vanilla"},
	}).Return(domain.Command{Name: "docker", Args: []string{"run"}, Env: []string{"DOCKER_HOST=tcp://docker:2375"}})

	proc := newFakeProcess()
	f.spawner.EXPECT().Start(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cmd domain.Command, _ domain.TerminalSize) (ports.Process, error) {
			assert.Equal(t, "docker", cmd.Name)
			assert.Equal(t, []string{"DOCKER_HOST=tcp://docker:2375", "TERM=xterm-color"}, cmd.Env)
			return proc, nil
		})

	s, err := f.m.NewSession("science", domain.SessionOptions{
		Platform:    platform(domain.PlatformDocker),
		Command:     "R --vanilla",
		CPUShares:   512,
		MemoryLimit: "1g",
		Mounts:      []string{"/data:/data:ro"},
	})
	require.NoError(t, err)
	require.NoError(t, s.Run(context.Background(), closedInput(), io.Discard, false))

	// The container command is not typed into the terminal.
	assert.Empty(t, proc.received())
}

func TestRun_NotBuilt(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.envs.EXPECT().Read("fresh").Return(&domain.Environment{Name: "fresh"}, nil)
	f.pm.EXPECT().Location("/nix/profiles/fresh").Return("", domain.ErrProfileNotFound)

	s, err := f.m.NewSession("fresh", domain.SessionOptions{})
	require.NoError(t, err)

	err = s.Run(context.Background(), closedInput(), io.Discard, true)
	require.ErrorIs(t, err, domain.ErrNotBuilt)
	assert.Equal(t, domain.SessionTerminated, s.State())
}

func TestContainerOperations_RequireDocker(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	for _, p := range []domain.Platform{domain.PlatformUnix, domain.PlatformWindows} {
		s, err := f.m.NewSession("science", domain.SessionOptions{Platform: platform(p), ContainerID: containerID})
		require.NoError(t, err)

		_, err = s.Start(ctx)
		require.ErrorIs(t, err, domain.ErrInvalidPlatform)

		err = s.Attach(ctx, closedInput(), io.Discard, true)
		require.ErrorIs(t, err, domain.ErrInvalidPlatform)

		_, err = s.Execute(ctx, "ls", false)
		require.ErrorIs(t, err, domain.ErrInvalidPlatform)

		_, err = s.Stop(ctx)
		require.ErrorIs(t, err, domain.ErrInvalidPlatform)
	}
}

func TestContainerIsRunning_RejectsMalformedIDs(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	for _, id := range []string{
		"",
		"0123456789a",
		"0123456789abc",
		"0123456789ab0123456789ab",
		"0123;rm -rf/",
		"$(reboot)abc",
		"0123456789a ",
		"0123456789a\n",
	} {
		_, err := f.m.ContainerIsRunning(context.Background(), id)
		require.ErrorIs(t, err, domain.ErrInvalidContainerID, "id %q", id)
	}
}

func TestContainerIsRunning(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	f.rt.EXPECT().PS(ctx, containerID).Return(containerID, nil)
	f.rt.EXPECT().PS(ctx, "ba9876543210").Return("", nil)

	running, err := f.m.ContainerIsRunning(ctx, containerID)
	require.NoError(t, err)
	assert.True(t, running)

	running, err = f.m.ContainerIsRunning(ctx, "ba9876543210")
	require.NoError(t, err)
	assert.False(t, running)
}

func TestStart(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.built(&domain.Environment{Name: "science"})
	ctx := context.Background()

	f.rt.EXPECT().Start(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, opts ports.ContainerRunOptions) (string, error) {
			assert.Equal(t, []string{"sleep", "60"}, opts.Command)
			return containerID, nil
		})

	s, err := f.m.NewSession("science", domain.SessionOptions{Platform: platform(domain.PlatformDocker), Command: "sleep 60"})
	require.NoError(t, err)

	id, err := s.Start(ctx)
	require.NoError(t, err)
	assert.Equal(t, containerID, id)
	assert.Equal(t, containerID, s.ContainerID())

	_, err = s.Start(ctx)
	require.ErrorIs(t, err, domain.ErrContainerAssigned)
}

func TestExecute(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	s, err := f.m.NewSession("science", domain.SessionOptions{Platform: platform(domain.PlatformDocker), ContainerID: containerID})
	require.NoError(t, err)

	f.rt.EXPECT().PS(ctx, containerID).Return(containerID, nil).Times(2)
	f.rt.EXPECT().Exec(ctx, containerID, "uname", false).Return("Linux\n", nil)
	f.rt.EXPECT().Exec(ctx, containerID, "sleep 60", true).Return("", nil)

	out, err := s.Execute(ctx, "uname", false)
	require.NoError(t, err)
	assert.Equal(t, "Linux\n", out)

	out, err = s.Execute(ctx, "sleep 60", true)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestExecute_NotRunning(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	s, err := f.m.NewSession("science", domain.SessionOptions{Platform: platform(domain.PlatformDocker), ContainerID: containerID})
	require.NoError(t, err)
	f.rt.EXPECT().PS(ctx, containerID).Return("", nil).Times(2)

	_, err = s.Execute(ctx, "uname", false)
	require.ErrorIs(t, err, domain.ErrNotRunning)

	err = s.Attach(ctx, closedInput(), io.Discard, true)
	require.ErrorIs(t, err, domain.ErrNotRunning)
	assert.Equal(t, domain.SessionCreated, s.State())
}

func TestExecute_WithoutContainer(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	s, err := f.m.NewSession("science", domain.SessionOptions{Platform: platform(domain.PlatformDocker)})
	require.NoError(t, err)

	_, err = s.Execute(context.Background(), "uname", false)
	require.ErrorIs(t, err, domain.ErrInvalidContainerID)
}

func TestAttach(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	s, err := f.m.NewSession("science", domain.SessionOptions{Platform: platform(domain.PlatformDocker), ContainerID: containerID})
	require.NoError(t, err)

	proc := newFakeProcess()
	f.rt.EXPECT().PS(ctx, containerID).Return(containerID, nil)
	f.rt.EXPECT().AttachCommand(containerID).Return(domain.Command{Name: "docker", Args: []string{"attach", containerID}})
	f.spawner.EXPECT().Start(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cmd domain.Command, _ domain.TerminalSize) (ports.Process, error) {
			assert.Equal(t, []string{"attach", containerID}, cmd.Args)
			return proc, nil
		})

	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() { done <- s.Attach(ctx, closedInputAfter(proc), out, true) }()

	require.NoError(t, <-done)
	assert.Equal(t, "/ # ", out.String())
	assert.Equal(t, domain.SessionTerminated, s.State())
}

// closedInputAfter ends the input once proc has printed a prompt.
func closedInputAfter(proc *fakeProcess) io.Reader {
	r, w := io.Pipe()
	go func() {
		proc.emit("/ # ")
		_ = w.Close()
	}()
	return r
}

func TestStop(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	s, err := f.m.NewSession("science", domain.SessionOptions{Platform: platform(domain.PlatformDocker), ContainerID: containerID})
	require.NoError(t, err)

	f.rt.EXPECT().Stop(ctx, containerID).Return(containerID+"cdef0123", nil)
	stopped, err := s.Stop(ctx)
	require.NoError(t, err)
	assert.True(t, stopped)
	assert.Equal(t, domain.SessionTerminated, s.State())
}

func TestStop_Mismatch(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	s, err := f.m.NewSession("science", domain.SessionOptions{Platform: platform(domain.PlatformDocker), ContainerID: containerID})
	require.NoError(t, err)

	f.rt.EXPECT().Stop(ctx, containerID).Return("", nil)
	stopped, err := s.Stop(ctx)
	require.NoError(t, err)
	assert.False(t, stopped)
}

func TestWithin(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.built(&domain.Environment{Name: "science"})
	ctx := context.Background()

	var stdout strings.Builder
	f.runner.EXPECT().Run(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, cmd domain.Command) (domain.CommandResult, error) {
			assert.Equal(t, "/bin/bash", cmd.Name)
			assert.Equal(t, []string{"-c", "R --version"}, cmd.Args)
			assert.Equal(t, "PATH="+location+"/bin:"+location+"/sbin", cmd.Env[0])
			assert.Contains(t, cmd.Env, "NIXSTER_ENV=science")
			assert.NotContains(t, cmd.Env, "SECRET=hidden")
			_, _ = io.WriteString(cmd.Stdout, "R version 3.5.1\n")
			return domain.CommandResult{Stdout: "R version 3.5.1\n"}, nil
		})

	require.NoError(t, f.m.Within(ctx, "science", "R --version", true, nil, &stdout, io.Discard))
	assert.Equal(t, "R version 3.5.1\n", stdout.String())
}

func TestWithin_Failure(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.built(&domain.Environment{Name: "science"})

	f.runner.EXPECT().Run(gomock.Any(), gomock.Any()).Return(domain.CommandResult{ExitCode: 2, Stderr: "boom"}, nil)

	err := f.m.Within(context.Background(), "science", "false", false, nil, io.Discard, io.Discard)
	require.ErrorIs(t, err, domain.ErrCommandFailed)
}

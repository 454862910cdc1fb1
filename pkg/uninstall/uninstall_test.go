package uninstall

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"psmux-uninstall/pkg/pathenv"
	"psmux-uninstall/pkg/procctl"
	"psmux-uninstall/pkg/ui"
)

type fakeTable struct {
	procs   []procctl.Process
	listErr error
	killErr error
	killed  []int32
}

func (f *fakeTable) List(context.Context) ([]procctl.Process, error) {
	var alive []procctl.Process
	for _, p := range f.procs {
		if !f.wasKilled(p.PID) {
			alive = append(alive, p)
		}
	}
	return alive, f.listErr
}

func (f *fakeTable) Kill(_ context.Context, pid int32) error {
	if f.killErr != nil {
		return f.killErr
	}
	f.killed = append(f.killed, pid)
	return nil
}

func (f *fakeTable) Exists(_ context.Context, pid int32) (bool, error) {
	return !f.wasKilled(pid), nil
}

func (f *fakeTable) wasKilled(pid int32) bool {
	for _, k := range f.killed {
		if k == pid {
			return true
		}
	}
	return false
}

type fakeRunner struct {
	err   error
	calls []string
}

func (f *fakeRunner) Run(_ context.Context, exe string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, filepath.Base(exe)+" "+strings.Join(args, " "))
	return nil, f.err
}

type scriptedPrompter struct {
	answers []string
	asked   []string
	err     error
}

func (s *scriptedPrompter) Ask(_ context.Context, question string) (string, error) {
	s.asked = append(s.asked, question)
	if s.err != nil {
		return "", s.err
	}
	if len(s.answers) == 0 {
		return "", nil
	}
	a := s.answers[0]
	s.answers = s.answers[1:]
	return a, nil
}

type countingWaiter struct {
	calls  int
	total  time.Duration
	onWait func()
}

func (w *countingWaiter) Wait(ctx context.Context, d time.Duration, _ string) error {
	w.calls++
	w.total += d
	if w.onWait != nil {
		w.onWait()
		return ctx.Err()
	}
	return nil
}

type fixture struct {
	root     string
	install  string
	data     string
	store    *pathenv.MemoryStore
	table    *fakeTable
	runner   *fakeRunner
	prompter *scriptedPrompter
	waiter   *countingWaiter
	out      *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	f := &fixture{
		root:     root,
		install:  filepath.Join(root, "psmux"),
		data:     filepath.Join(root, ".psmux"),
		table:    &fakeTable{},
		runner:   &fakeRunner{},
		prompter: &scriptedPrompter{},
		waiter:   &countingWaiter{},
		out:      &bytes.Buffer{},
	}
	f.store = pathenv.NewMemoryStore(map[string]string{
		"PATH": strings.Join([]string{"/usr/bin", f.install, "", "/usr/bin"}, ":"),
	})
	return f
}

func (f *fixture) installProduct(t *testing.T) {
	t.Helper()
	mustWrite(t, filepath.Join(f.install, "psmux"), "binary")
	mustWrite(t, filepath.Join(f.install, "themes", "default.conf"), "theme")
}

func (f *fixture) seedData(t *testing.T) {
	t.Helper()
	mustWrite(t, filepath.Join(f.data, "logs", "server.log"), "log")
}

func (f *fixture) uninstaller(dryRun bool) *Uninstaller {
	return New(Options{
		InstallDir:    f.install,
		DataDir:       f.data,
		ProcessNames:  []string{"psmux", "pmux"},
		StopArgs:      []string{"kill-server"},
		StopTimeout:   time.Second,
		GracePeriod:   time.Second,
		PathVar:       "PATH",
		ListSeparator: ':',
		DryRun:        dryRun,
	}, Deps{
		Runner:      f.runner,
		Table:       f.table,
		Store:       f.store,
		Prompter:    f.prompter,
		Waiter:      f.waiter,
		Printer:     ui.NewPrinter(f.out),
		SelfPID:     1,
		PathMatcher: pathenv.Exact,
		NameMatcher: func(image, name string) bool { return image == name },
	})
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

func stage(t *testing.T, r Report, name string) StageResult {
	t.Helper()
	s, ok := r.Stage(name)
	if !ok {
		t.Fatalf("stage %s missing from report", name)
	}
	return s
}

func TestRunFullUninstall(t *testing.T) {
	f := newFixture(t)
	f.installProduct(t)
	f.seedData(t)
	f.table.procs = []procctl.Process{{PID: 100, Name: "psmux"}, {PID: 101, Name: "pmux"}, {PID: 102, Name: "vim"}}
	f.prompter.answers = []string{"y"}

	report := f.uninstaller(false).Run(context.Background())

	if report.Failed() {
		t.Fatalf("unexpected failure in: %s", report.FailedStages())
	}
	if got := len(report.Stages); got != 4 {
		t.Fatalf("stages = %d, want 4", got)
	}
	if len(f.runner.calls) != 1 || f.runner.calls[0] != "psmux kill-server" {
		t.Fatalf("graceful stop calls = %v", f.runner.calls)
	}
	if len(f.table.killed) != 2 {
		t.Fatalf("killed = %v, want two psmux processes", f.table.killed)
	}
	if f.waiter.calls != 1 || f.waiter.total != time.Second {
		t.Fatalf("grace wait = %d calls, %s", f.waiter.calls, f.waiter.total)
	}
	if exists(f.install) {
		t.Fatalf("install dir still present")
	}
	if v, _ := f.store.Get("PATH"); v != "/usr/bin::/usr/bin" {
		t.Fatalf("PATH = %q", v)
	}
	if exists(f.data) {
		t.Fatalf("data dir still present after yes")
	}
	if len(f.prompter.asked) != 1 || !strings.Contains(f.prompter.asked[0], f.data) {
		t.Fatalf("prompt should name the data dir: %v", f.prompter.asked)
	}
}

func TestRunTwiceIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.installProduct(t)
	f.seedData(t)
	f.prompter.answers = []string{"n", "n"}

	first := f.uninstaller(false).Run(context.Background())
	pathAfterFirst, _ := f.store.Get("PATH")
	writesAfterFirst := f.store.Writes()

	second := f.uninstaller(false).Run(context.Background())
	pathAfterSecond, _ := f.store.Get("PATH")

	if first.Failed() || second.Failed() {
		t.Fatalf("runs failed: %s / %s", first.FailedStages(), second.FailedStages())
	}
	if pathAfterFirst != pathAfterSecond {
		t.Fatalf("PATH changed on second run: %q -> %q", pathAfterFirst, pathAfterSecond)
	}
	if f.store.Writes() != writesAfterFirst {
		t.Fatalf("second run wrote PATH")
	}
	if s := stage(t, second, StageArtifacts); s.Status != StatusAbsent || !strings.Contains(s.Message, "nothing to remove") {
		t.Fatalf("second artifacts stage = %+v", s)
	}
	if s := stage(t, second, StageEnvironment); s.Status != StatusAbsent {
		t.Fatalf("second environment stage = %+v", s)
	}
	if !exists(f.data) {
		t.Fatalf("declined data dir was removed")
	}
}

func TestScenarioAWindowsPath(t *testing.T) {
	f := newFixture(t)
	f.store = pathenv.NewMemoryStore(map[string]string{"Path": `C:\A;C:\psmux;C:\B`})
	u := New(Options{
		InstallDir:    `C:\psmux`,
		DataDir:       f.data,
		ProcessNames:  []string{"psmux.exe"},
		PathVar:       "Path",
		ListSeparator: ';',
	}, Deps{
		Runner:      f.runner,
		Table:       f.table,
		Store:       f.store,
		Prompter:    f.prompter,
		Waiter:      f.waiter,
		SelfPID:     1,
		PathMatcher: pathenv.FoldCase,
	})

	report := u.Run(context.Background())

	if v, _ := f.store.Get("Path"); v != `C:\A;C:\B` {
		t.Fatalf("Path = %q, want %q", v, `C:\A;C:\B`)
	}
	if s := stage(t, report, StageEnvironment); s.Status != StatusOK {
		t.Fatalf("environment stage = %+v", s)
	}
}

func TestScenarioBAbsentFromPathSkipsWrite(t *testing.T) {
	f := newFixture(t)
	f.store = pathenv.NewMemoryStore(map[string]string{"PATH": "/a:/b"})

	report := f.uninstaller(false).Run(context.Background())

	if v, _ := f.store.Get("PATH"); v != "/a:/b" {
		t.Fatalf("PATH = %q", v)
	}
	if f.store.Writes() != 0 {
		t.Fatalf("expected no write, got %d", f.store.Writes())
	}
	if s := stage(t, report, StageEnvironment); s.Status != StatusAbsent {
		t.Fatalf("environment stage = %+v", s)
	}
}

func TestScenarioCMissingInstallDirContinues(t *testing.T) {
	f := newFixture(t)
	f.seedData(t)
	f.prompter.answers = []string{"yes"}

	report := f.uninstaller(false).Run(context.Background())

	if report.Failed() {
		t.Fatalf("missing install dir must not fail: %s", report.FailedStages())
	}
	if s := stage(t, report, StageShutdown); s.Status != StatusAbsent {
		t.Fatalf("shutdown stage = %+v", s)
	}
	if len(f.runner.calls) != 0 {
		t.Fatalf("graceful stop should be skipped without an executable: %v", f.runner.calls)
	}
	if f.waiter.calls != 0 {
		t.Fatalf("no termination issued, no wait expected")
	}
	if s := stage(t, report, StageArtifacts); s.Status != StatusAbsent {
		t.Fatalf("artifacts stage = %+v", s)
	}
	if s := stage(t, report, StageEnvironment); s.Status != StatusOK {
		t.Fatalf("environment stage should still run: %+v", s)
	}
	if exists(f.data) {
		t.Fatalf("data stage should still run")
	}
	if !strings.Contains(f.out.String(), "nothing to remove") {
		t.Fatalf("operator output missing not-found notice:\n%s", f.out.String())
	}
}

func TestScenarioDConfirmationGating(t *testing.T) {
	cases := []struct {
		answer     string
		wantExists bool
		wantStatus Status
	}{
		{"n", true, StatusDeclined},
		{"", true, StatusDeclined},
		{"maybe", true, StatusDeclined},
		{"y", false, StatusOK},
		{"YES", false, StatusOK},
	}
	for _, tc := range cases {
		t.Run("answer="+tc.answer, func(t *testing.T) {
			f := newFixture(t)
			f.seedData(t)
			f.prompter.answers = []string{tc.answer}

			report := f.uninstaller(false).Run(context.Background())

			if exists(f.data) != tc.wantExists {
				t.Fatalf("data exists = %v, want %v", exists(f.data), tc.wantExists)
			}
			if s := stage(t, report, StageData); s.Status != tc.wantStatus {
				t.Fatalf("data stage = %+v", s)
			}
		})
	}
}

func TestDataStageSilentWhenAbsent(t *testing.T) {
	f := newFixture(t)
	report := f.uninstaller(false).Run(context.Background())

	if len(f.prompter.asked) != 0 {
		t.Fatalf("prompted without a data dir")
	}
	if s := stage(t, report, StageData); s.Status != StatusAbsent {
		t.Fatalf("data stage = %+v", s)
	}
	if strings.Contains(f.out.String(), "no user data") {
		t.Fatalf("absent data dir should print nothing:\n%s", f.out.String())
	}
}

func TestPromptErrorKeepsData(t *testing.T) {
	f := newFixture(t)
	f.seedData(t)
	f.prompter.err = errors.New("terminal gone")

	report := f.uninstaller(false).Run(context.Background())

	s := stage(t, report, StageData)
	if s.Status != StatusDeclined || len(s.Warnings) != 1 {
		t.Fatalf("data stage = %+v", s)
	}
	if !exists(f.data) {
		t.Fatalf("data removed after prompt error")
	}
}

func TestBestEffortShutdownFailuresAreWarnings(t *testing.T) {
	f := newFixture(t)
	f.installProduct(t)
	f.runner.err = errors.New("server not running")
	f.table.procs = []procctl.Process{{PID: 300, Name: "psmux"}}
	f.table.killErr = errors.New("access denied")

	report := f.uninstaller(false).Run(context.Background())

	s := stage(t, report, StageShutdown)
	if s.Status != StatusWarning || len(s.Warnings) != 1 {
		t.Fatalf("shutdown stage = %+v", s)
	}
	if report.Failed() {
		t.Fatalf("shutdown warnings must not fail the run: %s", report.FailedStages())
	}
	if exists(f.install) {
		t.Fatalf("artifact removal should still run")
	}
}

func TestStageFailuresDoNotStopLaterStages(t *testing.T) {
	f := newFixture(t)
	f.seedData(t)
	f.install = filepath.Join(f.root, "bad\x00dir")
	f.store = pathenv.NewMemoryStore(map[string]string{"PATH": f.install})
	f.store.SetErr = errors.New("registry unavailable")
	f.prompter.answers = []string{"y"}

	report := f.uninstaller(false).Run(context.Background())

	if !report.Failed() {
		t.Fatalf("expected reported failures")
	}
	if got := report.FailedStages(); got != "artifacts, environment" {
		t.Fatalf("failed stages = %q", got)
	}
	if s := stage(t, report, StageData); s.Status != StatusOK {
		t.Fatalf("data stage should still run: %+v", s)
	}
	if exists(f.data) {
		t.Fatalf("data dir should be removed")
	}
}

func TestDryRunChangesNothing(t *testing.T) {
	f := newFixture(t)
	f.installProduct(t)
	f.seedData(t)
	f.table.procs = []procctl.Process{{PID: 100, Name: "psmux"}}
	before, _ := f.store.Get("PATH")

	report := f.uninstaller(true).Run(context.Background())

	for _, s := range report.Stages {
		if s.Status != StatusPlanned {
			t.Fatalf("stage %s status = %s, want planned", s.Stage, s.Status)
		}
	}
	if len(f.runner.calls) != 0 || len(f.table.killed) != 0 || f.waiter.calls != 0 {
		t.Fatalf("dry run touched processes: calls=%v killed=%v", f.runner.calls, f.table.killed)
	}
	if !exists(f.install) || !exists(f.data) {
		t.Fatalf("dry run removed files")
	}
	if after, _ := f.store.Get("PATH"); after != before || f.store.Writes() != 0 {
		t.Fatalf("dry run wrote PATH")
	}
	if len(f.prompter.asked) != 0 {
		t.Fatalf("dry run prompted")
	}
}

func TestRunWithCancelledContextSkipsEveryStage(t *testing.T) {
	f := newFixture(t)
	f.installProduct(t)
	f.seedData(t)
	f.table.procs = []procctl.Process{{PID: 100, Name: "psmux"}}
	f.prompter.answers = []string{"y"}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report := f.uninstaller(false).Run(ctx)

	for _, name := range []string{StageShutdown, StageArtifacts, StageEnvironment, StageData} {
		if got := stage(t, report, name).Status; got != StatusSkipped {
			t.Fatalf("%s status = %s, want %s", name, got, StatusSkipped)
		}
	}
	if !report.Interrupted() || report.Failed() {
		t.Fatalf("interrupted=%v failed=%v", report.Interrupted(), report.Failed())
	}
	if !exists(f.install) || !exists(f.data) {
		t.Fatal("nothing may be deleted after cancellation")
	}
	if f.store.Writes() != 0 || len(f.table.killed) != 0 || len(f.prompter.asked) != 0 {
		t.Fatalf("writes=%d killed=%v asked=%v", f.store.Writes(), f.table.killed, f.prompter.asked)
	}
}

func TestInterruptDuringGraceWaitKeepsInstall(t *testing.T) {
	f := newFixture(t)
	f.installProduct(t)
	f.table.procs = []procctl.Process{{PID: 100, Name: "psmux"}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.waiter.onWait = cancel

	report := f.uninstaller(false).Run(ctx)

	if got := stage(t, report, StageShutdown).Status; got == StatusSkipped {
		t.Fatalf("shutdown ran before the interrupt, got %s", got)
	}
	for _, name := range []string{StageArtifacts, StageEnvironment, StageData} {
		if got := stage(t, report, name).Status; got != StatusSkipped {
			t.Fatalf("%s status = %s, want %s", name, got, StatusSkipped)
		}
	}
	if !exists(f.install) {
		t.Fatal("install dir removed after an interrupted grace period")
	}
	if f.store.Writes() != 0 {
		t.Fatalf("PATH written %d times after interrupt", f.store.Writes())
	}

	f.waiter.onWait = nil
	again := f.uninstaller(false).Run(context.Background())
	if again.Interrupted() || again.Failed() {
		t.Fatalf("rerun interrupted=%v failed=%s", again.Interrupted(), again.FailedStages())
	}
	if exists(f.install) {
		t.Fatal("rerun should finish the uninstall")
	}
}

package walker

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"syscall"
	"testing"

	"github.com/sderose/powerwalk/events"
	"github.com/sderose/powerwalk/filter"
)

// exampleTree builds the canonical test layout: a.txt, .hidden,
// note.bak and sub/b.txt.
func exampleTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range map[string]string{
		"a.txt":     "alpha",
		".hidden":   "hidden",
		"note.bak":  "backup",
		"sub/b.txt": "beta",
	} {
		pathname := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(pathname), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(pathname, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

type step struct {
	Kind     Kind
	Pathname string
}

func collect(t *testing.T, tr *Traversal) []step {
	t.Helper()
	steps := []step{}
	for {
		ev, err := tr.Next()
		if err != nil {
			if errors.Is(err, ErrDone) {
				return steps
			}
			var walkErr *WalkError
			if errors.As(err, &walkErr) {
				continue
			}
			t.Fatal(err)
		}
		steps = append(steps, step{Kind: ev.Kind, Pathname: ev.Pathname})
	}
}

func TestDefaultsExampleTree(t *testing.T) {
	root := exampleTree(t)

	cfg := NewConfig()
	cfg.Recursive = true
	cfg.Sort = SortName

	w, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	tr, err := w.Walk(root)
	if err != nil {
		t.Fatal(err)
	}

	expected := []step{
		{Kind: LEAF, Pathname: filepath.Join(root, "a.txt")},
		{Kind: LEAF, Pathname: filepath.Join(root, "sub", "b.txt")},
	}
	if steps := collect(t, tr); !reflect.DeepEqual(steps, expected) {
		t.Errorf("Expected %v but got %v", expected, steps)
	}

	stats := tr.Statistics()
	if stats.LeavesReturned != 2 {
		t.Errorf("Expected 2 leaves but got %d", stats.LeavesReturned)
	}
	if stats.IgnoredByReason[filter.ReasonHidden] != 1 {
		t.Errorf("Expected one hidden rejection, got %v", stats.IgnoredByReason)
	}
	if stats.IgnoredByReason[filter.ReasonBackup] != 1 {
		t.Errorf("Expected one backup rejection, got %v", stats.IgnoredByReason)
	}
}

func TestContainerEventsAndDepthAccounting(t *testing.T) {
	root := exampleTree(t)

	cfg := NewConfig()
	cfg.Recursive = true
	cfg.Sort = SortName
	cfg.Containers = true

	w, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	tr, err := w.Walk(root)
	if err != nil {
		t.Fatal(err)
	}

	steps := collect(t, tr)
	expected := []step{
		{Kind: OPEN, Pathname: root},
		{Kind: LEAF, Pathname: filepath.Join(root, "a.txt")},
		{Kind: OPEN, Pathname: filepath.Join(root, "sub")},
		{Kind: LEAF, Pathname: filepath.Join(root, "sub", "b.txt")},
		{Kind: CLOSE, Pathname: filepath.Join(root, "sub")},
		{Kind: CLOSE, Pathname: root},
	}
	if !reflect.DeepEqual(steps, expected) {
		t.Fatalf("Expected %v but got %v", expected, steps)
	}

	// every OPEN is matched by a CLOSE at the same depth
	stack := []string{}
	for _, s := range steps {
		switch s.Kind {
		case OPEN:
			stack = append(stack, s.Pathname)
		case CLOSE:
			if len(stack) == 0 || stack[len(stack)-1] != s.Pathname {
				t.Fatalf("CLOSE for %s does not match the open frame", s.Pathname)
			}
			stack = stack[:len(stack)-1]
		}
	}
	if len(stack) != 0 {
		t.Errorf("Unbalanced OPEN frames: %v", stack)
	}
}

func TestDeterministicOrder(t *testing.T) {
	root := exampleTree(t)

	cfg := NewConfig()
	cfg.Recursive = true
	cfg.Sort = SortName
	cfg.Containers = true

	w, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}

	runs := [][]step{}
	for i := 0; i < 2; i++ {
		tr, err := w.Walk(root)
		if err != nil {
			t.Fatal(err)
		}
		runs = append(runs, collect(t, tr))
	}
	if !reflect.DeepEqual(runs[0], runs[1]) {
		t.Errorf("Expected identical event order, got %v then %v", runs[0], runs[1])
	}
}

func TestIdempotentCounters(t *testing.T) {
	root := exampleTree(t)

	cfg := NewConfig()
	cfg.Recursive = true
	cfg.Sort = SortName

	w, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}

	counters := []map[string]uint64{}
	for i := 0; i < 2; i++ {
		tr, err := w.Walk(root)
		if err != nil {
			t.Fatal(err)
		}
		collect(t, tr)
		counters = append(counters, tr.Statistics().Counters())
	}
	if !reflect.DeepEqual(counters[0], counters[1]) {
		t.Errorf("Expected identical counters, got %v then %v", counters[0], counters[1])
	}
}

func TestIgnorableEvents(t *testing.T) {
	root := exampleTree(t)

	cfg := NewConfig()
	cfg.Recursive = true
	cfg.Sort = SortName
	cfg.Ignorables = true

	w, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	tr, err := w.Walk(root)
	if err != nil {
		t.Fatal(err)
	}

	ignored := []string{}
	for {
		ev, err := tr.Next()
		if errors.Is(err, ErrDone) {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		if ev.Kind == IGNORE {
			ignored = append(ignored, filepath.Base(ev.Pathname)+":"+ev.Reason)
		}
	}
	expected := []string{".hidden:hidden", "note.bak:backup"}
	if !reflect.DeepEqual(ignored, expected) {
		t.Errorf("Expected %v but got %v", expected, ignored)
	}
}

func TestNonRecursiveTopLevelStillExpands(t *testing.T) {
	root := exampleTree(t)

	cfg := NewConfig()
	cfg.Sort = SortName
	cfg.Ignorables = true

	w, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	tr, err := w.Walk(root)
	if err != nil {
		t.Fatal(err)
	}

	steps := collect(t, tr)
	expected := []step{
		{Kind: IGNORE, Pathname: filepath.Join(root, ".hidden")},
		{Kind: LEAF, Pathname: filepath.Join(root, "a.txt")},
		{Kind: IGNORE, Pathname: filepath.Join(root, "note.bak")},
		{Kind: IGNORE, Pathname: filepath.Join(root, "sub")},
	}
	if !reflect.DeepEqual(steps, expected) {
		t.Errorf("Expected %v but got %v", expected, steps)
	}
}

func TestMaxLeavesStopsWholeTraversal(t *testing.T) {
	root := exampleTree(t)

	cfg := NewConfig()
	cfg.Recursive = true
	cfg.Sort = SortName
	cfg.MaxLeaves = 1

	w, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	tr, err := w.Walk(root)
	if err != nil {
		t.Fatal(err)
	}

	steps := collect(t, tr)
	if len(steps) != 1 || steps[0].Kind != LEAF {
		t.Errorf("Expected a single leaf but got %v", steps)
	}
}

func TestMaxDepth(t *testing.T) {
	root := exampleTree(t)

	cfg := NewConfig()
	cfg.Recursive = true
	cfg.Sort = SortName
	cfg.MaxDepth = 1

	w, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	tr, err := w.Walk(root)
	if err != nil {
		t.Fatal(err)
	}

	// sub is opened at depth 1 but its children sit beyond the limit
	expected := []step{
		{Kind: LEAF, Pathname: filepath.Join(root, "a.txt")},
	}
	if steps := collect(t, tr); !reflect.DeepEqual(steps, expected) {
		t.Errorf("Expected %v but got %v", expected, steps)
	}
}

func TestMissingRoot(t *testing.T) {
	cfg := NewConfig()
	cfg.Errors = true

	w, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	tr, err := w.Walk(filepath.Join(t.TempDir(), "does-not-exist"))
	if err != nil {
		t.Fatal(err)
	}

	ev, err := tr.Next()
	if err != nil {
		t.Fatal(err)
	}
	if ev.Kind != MISSING {
		t.Errorf("Expected MISSING but got %s", ev.Kind)
	}
	if _, err := tr.Next(); !errors.Is(err, ErrDone) {
		t.Errorf("Expected ErrDone but got %v", err)
	}
	if tr.Statistics().Errors != 1 {
		t.Errorf("Expected one error but got %d", tr.Statistics().Errors)
	}
}

func TestCycleSafety(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "a.txt"), []byte("alpha"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(root, filepath.Join(root, "loop")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	cfg := NewConfig()
	cfg.Recursive = true
	cfg.Sort = SortName
	cfg.OnSymlink = LinkFollow

	w, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	tr, err := w.Walk(root)
	if err != nil {
		t.Fatal(err)
	}

	steps := collect(t, tr)
	if len(steps) != 1 || steps[0].Pathname != filepath.Join(root, "a.txt") {
		t.Errorf("Expected only a.txt but got %v", steps)
	}
	if tr.Statistics().Errors == 0 {
		t.Errorf("Expected the cycle to be counted as an error")
	}
}

func TestSymlinkDispositions(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "target.txt")
	if err := os.WriteFile(target, []byte("content"), 0644); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(root, "link.txt")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	for _, test := range []struct {
		Name        string
		Disposition LinkDisposition
		Leaves      int
	}{
		{Name: "ignore", Disposition: LinkIgnore, Leaves: 1},
		{Name: "return", Disposition: LinkReturn, Leaves: 2},
		{Name: "follow", Disposition: LinkFollow, Leaves: 2},
	} {
		t.Run(test.Name, func(t *testing.T) {
			cfg := NewConfig()
			cfg.Recursive = true
			cfg.Sort = SortName
			cfg.OnSymlink = test.Disposition

			w, err := New(cfg)
			if err != nil {
				t.Fatal(err)
			}
			tr, err := w.Walk(root)
			if err != nil {
				t.Fatal(err)
			}
			leaves := 0
			for _, s := range collect(t, tr) {
				if s.Kind == LEAF {
					leaves++
				}
			}
			if leaves != test.Leaves {
				t.Errorf("Expected %d leaves but got %d", test.Leaves, leaves)
			}
		})
	}
}

func TestSamplingBounds(t *testing.T) {
	root := exampleTree(t)

	for _, test := range []struct {
		Percentage float64
		Leaves     uint64
	}{
		{Percentage: 100, Leaves: 2},
		{Percentage: 0, Leaves: 0},
	} {
		cfg := NewConfig()
		cfg.Recursive = true
		cfg.Sort = SortName
		cfg.SamplePercentage = test.Percentage

		w, err := New(cfg)
		if err != nil {
			t.Fatal(err)
		}
		tr, err := w.Walk(root)
		if err != nil {
			t.Fatal(err)
		}
		collect(t, tr)
		if got := tr.Statistics().LeavesReturned; got != test.Leaves {
			t.Errorf("Expected %d leaves at %v%% but got %d", test.Leaves, test.Percentage, got)
		}
		if test.Percentage == 0 && tr.Statistics().IgnoredByReason[filter.ReasonSample] != 2 {
			t.Errorf("Expected both files ignored as sample, got %v", tr.Statistics().IgnoredByReason)
		}
	}
}

func TestSignalDelivery(t *testing.T) {
	root := exampleTree(t)

	cfg := NewConfig()
	cfg.Recursive = true
	cfg.Sort = SortName
	cfg.Signals = true
	cfg.Containers = true
	cfg.Ignorables = true

	w, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}

	received := []events.Event{}
	w.Events().Subscribe(func(event events.Event) {
		received = append(received, event)
	})

	tr, err := w.Walk(root)
	if err != nil {
		t.Fatal(err)
	}

	steps := collect(t, tr)
	for _, s := range steps {
		if s.Kind != LEAF {
			t.Errorf("Expected only leaves from Next in signal mode, got %s", s.Kind)
		}
	}
	if len(steps) != 2 {
		t.Errorf("Expected 2 leaves but got %v", steps)
	}

	opened, closed, ignored, done := 0, 0, 0, 0
	for _, event := range received {
		switch event.(type) {
		case events.PathOpened:
			opened++
		case events.PathClosed:
			closed++
		case events.PathIgnored:
			ignored++
		case events.Done:
			done++
		}
	}
	if opened != 2 || closed != 2 || ignored != 2 || done != 1 {
		t.Errorf("Expected 2 opened, 2 closed, 2 ignored, 1 done; got %d/%d/%d/%d",
			opened, closed, ignored, done)
	}
}

func TestSignalDeliveryErrors(t *testing.T) {
	cfg := NewConfig()
	cfg.Signals = true
	cfg.Errors = true

	w, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	tr, err := w.Walk(filepath.Join(t.TempDir(), "gone"))
	if err != nil {
		t.Fatal(err)
	}

	_, err = tr.Next()
	var walkErr *WalkError
	if !errors.As(err, &walkErr) || !walkErr.Missing {
		t.Fatalf("Expected a missing WalkError but got %v", err)
	}
	if _, err := tr.Next(); !errors.Is(err, ErrDone) {
		t.Errorf("Expected ErrDone after the error but got %v", err)
	}
}

func TestAutoOpen(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "a.txt"), []byte("alpha"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := NewConfig()
	cfg.Recursive = true
	cfg.AutoOpen = true
	cfg.AutoClose = true

	w, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	tr, err := w.Walk(root)
	if err != nil {
		t.Fatal(err)
	}

	ev, err := tr.Next()
	if err != nil {
		t.Fatal(err)
	}
	if ev.Handle == nil {
		t.Fatal("Expected an open handle")
	}
	data, err := io.ReadAll(ev.Handle)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "alpha" {
		t.Errorf("Expected alpha but got %s", data)
	}
	if _, err := tr.Next(); !errors.Is(err, ErrDone) {
		t.Errorf("Expected ErrDone but got %v", err)
	}
}

func TestTarExpansion(t *testing.T) {
	root := t.TempDir()
	archive := filepath.Join(root, "bundle.tar")
	fp, err := os.Create(archive)
	if err != nil {
		t.Fatal(err)
	}
	tw := tar.NewWriter(fp)
	for name, content := range map[string]string{"one.txt": "one", "two.txt": "two"} {
		if err := tw.WriteHeader(&tar.Header{Name: name, Mode: 0644, Size: int64(len(content))}); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	fp.Close()

	cfg := NewConfig()
	cfg.Recursive = true
	cfg.OpenTar = true
	cfg.Containers = true

	w, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	tr, err := w.Walk(archive)
	if err != nil {
		t.Fatal(err)
	}

	steps := []step{}
	contents := []string{}
	for {
		ev, err := tr.Next()
		if errors.Is(err, ErrDone) {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		steps = append(steps, step{Kind: ev.Kind, Pathname: ev.Pathname})
		if ev.Kind == LEAF {
			data, err := io.ReadAll(ev.Handle)
			if err != nil {
				t.Fatal(err)
			}
			contents = append(contents, string(data))
		}
	}

	expected := []step{
		{Kind: OPEN, Pathname: archive},
		{Kind: LEAF, Pathname: archive + "[untarred]"},
		{Kind: LEAF, Pathname: archive + "[untarred]"},
		{Kind: CLOSE, Pathname: archive},
	}
	if !reflect.DeepEqual(steps, expected) {
		t.Errorf("Expected %v but got %v", expected, steps)
	}
	if len(contents) != 2 {
		t.Errorf("Expected 2 member bodies but got %v", contents)
	}
}

func TestGzipExpansion(t *testing.T) {
	root := t.TempDir()
	pathname := filepath.Join(root, "notes.txt.gz")
	fp, err := os.Create(pathname)
	if err != nil {
		t.Fatal(err)
	}
	gz := gzip.NewWriter(fp)
	if _, err := gz.Write([]byte("compressed body")); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	fp.Close()

	cfg := NewConfig()
	cfg.OpenGzip = true

	w, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	tr, err := w.Walk(pathname)
	if err != nil {
		t.Fatal(err)
	}

	ev, err := tr.Next()
	if err != nil {
		t.Fatal(err)
	}
	if ev.Kind != LEAF || ev.Pathname != pathname+"[ungzipped]" {
		t.Fatalf("Expected an ungzipped leaf but got %s %s", ev.Kind, ev.Pathname)
	}
	data, err := io.ReadAll(ev.Handle)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "compressed body" {
		t.Errorf("Expected compressed body but got %s", data)
	}
	if _, err := tr.Next(); !errors.Is(err, ErrDone) {
		t.Errorf("Expected ErrDone but got %v", err)
	}
}

func TestArchiveDisabledIsIgnorable(t *testing.T) {
	root := t.TempDir()
	pathname := filepath.Join(root, "notes.txt.gz")
	if err := os.WriteFile(pathname, []byte("not really gzip"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := NewConfig()
	cfg.Ignorables = true

	w, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	tr, err := w.Walk(pathname)
	if err != nil {
		t.Fatal(err)
	}

	ev, err := tr.Next()
	if err != nil {
		t.Fatal(err)
	}
	if ev.Kind != IGNORE || ev.Reason != "gzip" {
		t.Errorf("Expected IGNORE with reason gzip but got %s %s", ev.Kind, ev.Reason)
	}
}

func TestArchiveSuffixOnFifo(t *testing.T) {
	root := t.TempDir()
	pathname := filepath.Join(root, "pipe.gz")
	if err := syscall.Mkfifo(pathname, 0644); err != nil {
		t.Skipf("fifos not supported: %v", err)
	}

	cfg := NewConfig()
	cfg.OpenGzip = true

	w, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	tr, err := w.Walk(pathname)
	if err != nil {
		t.Fatal(err)
	}

	ev, err := tr.Next()
	if err != nil {
		t.Fatal(err)
	}
	if ev.Kind != LEAF || ev.Pathname != pathname || ev.Handle != nil {
		t.Errorf("Expected the fifo as a plain leaf but got %+v", ev)
	}
	if _, err := tr.Next(); !errors.Is(err, ErrDone) {
		t.Errorf("Expected ErrDone but got %v", err)
	}
}

func TestSymlinkFilteredBeforeDisposition(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "kept.txt")
	if err := os.WriteFile(target, []byte("content"), 0644); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(root, "skipme.txt")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	for _, disposition := range []LinkDisposition{LinkIgnore, LinkReturn, LinkFollow} {
		cfg := NewConfig()
		cfg.Recursive = true
		cfg.Sort = SortName
		cfg.Ignorables = true
		cfg.OnSymlink = disposition
		cfg.ExcludeNames = "^skipme"

		w, err := New(cfg)
		if err != nil {
			t.Fatal(err)
		}
		tr, err := w.Walk(root)
		if err != nil {
			t.Fatal(err)
		}

		leaves := 0
		for {
			ev, err := tr.Next()
			if errors.Is(err, ErrDone) {
				break
			}
			if err != nil {
				t.Fatal(err)
			}
			switch {
			case ev.Kind == LEAF:
				leaves++
			case ev.Pathname == link:
				if ev.Reason != filter.ReasonExcludedName {
					t.Errorf("disposition %d: expected reason %s but got %s",
						disposition, filter.ReasonExcludedName, ev.Reason)
				}
			}
		}
		if leaves != 1 {
			t.Errorf("disposition %d: expected only the target leaf but got %d", disposition, leaves)
		}
	}
}

func TestConfigErrors(t *testing.T) {
	for _, mutate := range []func(*Config){
		func(c *Config) { c.Sort = "rank" },
		func(c *Config) { c.Permissions = "z+r" },
		func(c *Config) { c.ExcludeNames = "(" },
		func(c *Config) { c.SamplePercentage = 150 },
		func(c *Config) { c.Types = "dz" },
		func(c *Config) { c.OnSymlink = LinkDisposition(42) },
	} {
		cfg := NewConfig()
		mutate(cfg)
		if _, err := New(cfg); err == nil {
			t.Errorf("Expected a configuration error for %+v", cfg)
		}
	}
}

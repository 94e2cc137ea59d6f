package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/joshuapare/regkeys/internal/logger"
	"github.com/joshuapare/regkeys/pkg/backend/hivefile"
	"github.com/joshuapare/regkeys/pkg/backend/memory"
	"github.com/joshuapare/regkeys/pkg/backend/snapshot"
	"github.com/joshuapare/regkeys/pkg/backend/winreg"
	"github.com/joshuapare/regkeys/pkg/regkey"
	"github.com/joshuapare/regkeys/pkg/types"
)

// session owns a backend and the manager tracking every handle opened
// against it for the duration of one command.
type session struct {
	label   string
	mgr     *regkey.Manager
	backend io.Closer
	sep     string // display separator
}

// openSession resolves a source string into a backend.
func openSession(src string) (*session, error) {
	if src == "" {
		return nil, errors.New("no source: pass --source or set source in regnav.yaml")
	}
	kind, arg, found := strings.Cut(src, ":")
	if !found || len(kind) == 1 {
		// Bare path (including Windows drive letters like C:\...).
		kind, arg = "hive", src
	}

	var (
		backend types.Backend
		closer  io.Closer
	)
	switch strings.ToLower(kind) {
	case "hive":
		h, err := hivefile.Open(arg, hivefile.Options{})
		if err != nil {
			return nil, err
		}
		printVerbose("Opened hive %s (root %s)\n", arg, h.Info().RootName)
		backend, closer = h, h
	case "snap":
		s, err := snapshot.Open(arg)
		if err != nil {
			return nil, err
		}
		printVerbose("Opened snapshot %s (source %s)\n", arg, s.Meta().Source)
		backend, closer = s, s
	case "reg":
		backend = winreg.New()
	case "demo":
		backend = demoStore()
	default:
		return nil, fmt.Errorf("unknown source kind %q (want hive, snap, reg or demo)", kind)
	}

	mgr := regkey.NewManager(backend, regkey.WithLogger(logger.L))
	logger.Debug("session opened", "source", src, "manager", mgr.ID())
	sep := backend.Separator()
	if cfg.Separator != "" {
		sep = cfg.Separator
	}
	return &session{label: src, mgr: mgr, backend: closer, sep: sep}, nil
}

// Close tears down every handle and then releases the backend.
func (s *session) Close() error {
	err := s.mgr.Teardown()
	if s.backend != nil {
		err = errors.Join(err, s.backend.Close())
	}
	return err
}

// open opens path (in display separators) as a root node.
func (s *session) open(path string) (*regkey.Node, error) {
	return s.mgr.Open(s.toBackend(path))
}

func (s *session) toBackend(path string) string {
	if s.sep == s.mgr.Separator() {
		return path
	}
	return strings.ReplaceAll(path, s.sep, s.mgr.Separator())
}

func (s *session) display(name string) string {
	if s.sep == s.mgr.Separator() {
		return name
	}
	return strings.ReplaceAll(name, s.mgr.Separator(), s.sep)
}

// withSession opens the configured source, runs fn and tears everything down.
func withSession(src string, fn func(*session) error) (err error) {
	s, err := openSession(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("release handles: %w", cerr)
		}
	}()
	return fn(s)
}

// currentSource is the --source flag or the configured default.
func currentSource() string {
	if sourceFlag != "" {
		return sourceFlag
	}
	return cfg.Source
}

// demoStore is a small registry-shaped tree for trying the tool out.
func demoStore() *memory.Store {
	return memory.New(memory.WithRootName("HKLM")).
		Set(`SOFTWARE\Contoso\Widget`, "", types.StringValue("Contoso Widget")).
		Set(`SOFTWARE\Contoso\Widget`, "InstallPath", types.ExpandStringValue(`%ProgramFiles%\Contoso\Widget`)).
		Set(`SOFTWARE\Contoso\Widget`, "Version", types.StringValue("2.4.1")).
		Set(`SOFTWARE\Contoso\Widget`, "Features", types.MultiStringValue([]string{"sync", "export"})).
		Set(`SOFTWARE\Contoso\Widget\Settings`, "AutoUpdate", types.DWORDValue(1)).
		Set(`SOFTWARE\Contoso\Widget\Settings`, "LastCheck", types.QWORDValue(133500000000000000)).
		Key(`SOFTWARE\Contoso\Gadget`).
		Set(`SYSTEM\Select`, "Current", types.DWORDValue(1)).
		Set(`SYSTEM\ControlSet001\Services\Tcpip\Parameters`, "Hostname", types.StringValue("demo-host")).
		Set(`SYSTEM\ControlSet001\Services\Tcpip\Parameters`, "Blob", types.BinaryValue([]byte{0x01, 0x02, 0xfe})).
		Key(`SYSTEM\ControlSet001\Services\Dhcp`)
}

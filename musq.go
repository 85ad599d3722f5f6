package musq

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// LockingMode is the value of PRAGMA locking_mode.
type LockingMode string

const (
	LockingModeNormal    LockingMode = "NORMAL"
	LockingModeExclusive LockingMode = "EXCLUSIVE"
)

// JournalMode is the value of PRAGMA journal_mode.
type JournalMode string

const (
	JournalModeDelete   JournalMode = "DELETE"
	JournalModeTruncate JournalMode = "TRUNCATE"
	JournalModePersist  JournalMode = "PERSIST"
	JournalModeMemory   JournalMode = "MEMORY"
	JournalModeWAL      JournalMode = "WAL"
	JournalModeOff      JournalMode = "OFF"
)

// Synchronous is the value of PRAGMA synchronous.
type Synchronous string

const (
	SynchronousOff    Synchronous = "OFF"
	SynchronousNormal Synchronous = "NORMAL"
	SynchronousFull   Synchronous = "FULL"
	SynchronousExtra  Synchronous = "EXTRA"
)

// AutoVacuum is the value of PRAGMA auto_vacuum.
type AutoVacuum string

const (
	AutoVacuumNone        AutoVacuum = "NONE"
	AutoVacuumFull        AutoVacuum = "FULL"
	AutoVacuumIncremental AutoVacuum = "INCREMENTAL"
)

// OptimizeOnClose controls whether PRAGMA optimize runs when a Connection
// closes, optionally preceded by an analysis_limit override.
type OptimizeOnClose struct {
	Enabled      bool
	AnalysisLimit *int
}

func (o OptimizeOnClose) pragmaString() string {
	var b strings.Builder
	if o.AnalysisLimit != nil {
		fmt.Fprintf(&b, "PRAGMA analysis_limit = %d; ", *o.AnalysisLimit)
	}
	b.WriteString("PRAGMA optimize;")
	return b.String()
}

// pragmaOrder is the fixed canonical PRAGMA ordering; pragmas appended by
// the caller after construction follow these in insertion order.
var pragmaOrder = []string{
	"page_size", "locking_mode", "journal_mode", "foreign_keys", "synchronous", "auto_vacuum", "analysis_limit",
}

var inMemorySeq atomic.Int64

// Musq is the database configuration builder: it assembles a DSN plus a
// pragma script, and is the sole entry point for opening Connections and
// Pools.
type Musq struct {
	filename   string
	inMemory   bool
	sharedCache bool

	readOnly       bool
	createIfMissing bool
	immutable      bool
	serialized     bool
	vfs            string

	busyTimeoutMillis int

	pragmaNames  []string
	pragmaValues map[string]string

	commandChannelSize     int
	rowChannelSize         int
	statementCacheCapacity int

	poolMaxConnections int
	poolAcquireTimeout int // milliseconds

	optimizeOnClose OptimizeOnClose

	logger      *zerolog.Logger
	logSettings LogSettings
}

// New returns a Musq builder for filename (a filesystem path or ":memory:"
// to request an in-memory database).
func New(filename string) *Musq {
	m := &Musq{
		filename:               filename,
		createIfMissing:        true,
		busyTimeoutMillis:      5000,
		pragmaValues:           map[string]string{},
		commandChannelSize:     50,
		rowChannelSize:         50,
		statementCacheCapacity: 100,
		poolMaxConnections:     10,
		poolAcquireTimeout:     30000,
		logSettings:            DefaultLogSettings(),
	}
	m.Pragma("foreign_keys", "ON")
	return m
}

// Logger attaches a zerolog.Logger that receives one structured event per
// completed query; nil disables logging.
func (m *Musq) Logger(l *zerolog.Logger, settings LogSettings) *Musq {
	m.logger = l
	m.logSettings = settings
	return m
}

// InMemory returns a Musq builder for a private, sequence-numbered
// in-memory database: repeated calls never collide with one another unless
// SharedCache is also requested.
func InMemory() *Musq {
	seq := inMemorySeq.Add(1)
	m := New(fmt.Sprintf("musq-mem-%d", seq))
	m.inMemory = true
	return m
}

// ReadOnly opens the database read-only.
func (m *Musq) ReadOnly(v bool) *Musq { m.readOnly = v; return m }

// CreateIfMissing controls whether the database file is created when
// absent. Defaults to true.
func (m *Musq) CreateIfMissing(v bool) *Musq { m.createIfMissing = v; return m }

// Immutable asserts the database file will not change for the life of the
// connection, enabling engine-side optimisations.
func (m *Musq) Immutable(v bool) *Musq { m.immutable = v; return m }

// SharedCache enables SQLite's shared-cache mode.
func (m *Musq) SharedCache(v bool) *Musq { m.sharedCache = v; return m }

// Serialized records the serialized threading-mode option. The setting is
// stored on the builder only: dsn does not render it, so it does not change
// how the connection is opened.
func (m *Musq) Serialized(v bool) *Musq { m.serialized = v; return m }

// VFS selects a non-default SQLite VFS by name.
func (m *Musq) VFS(name string) *Musq { m.vfs = name; return m }

// BusyTimeoutMillis sets the engine busy timeout.
func (m *Musq) BusyTimeoutMillis(ms int) *Musq { m.busyTimeoutMillis = ms; return m }

// Pragma sets a PRAGMA name to value, appending it after the canonical
// ordering if name is not one of the seven well-known pragmas.
func (m *Musq) Pragma(name, value string) *Musq {
	if _, exists := m.pragmaValues[name]; !exists {
		m.pragmaNames = append(m.pragmaNames, name)
	}
	m.pragmaValues[name] = value
	return m
}

// JournalMode sets PRAGMA journal_mode.
func (m *Musq) JournalMode(mode JournalMode) *Musq { return m.Pragma("journal_mode", string(mode)) }

// LockingMode sets PRAGMA locking_mode.
func (m *Musq) LockingMode(mode LockingMode) *Musq { return m.Pragma("locking_mode", string(mode)) }

// Synchronous sets PRAGMA synchronous.
func (m *Musq) Synchronous(s Synchronous) *Musq { return m.Pragma("synchronous", string(s)) }

// AutoVacuum sets PRAGMA auto_vacuum.
func (m *Musq) AutoVacuum(v AutoVacuum) *Musq { return m.Pragma("auto_vacuum", string(v)) }

// PageSize sets PRAGMA page_size.
func (m *Musq) PageSize(n int) *Musq { return m.Pragma("page_size", strconv.Itoa(n)) }

// AnalysisLimit sets PRAGMA analysis_limit.
func (m *Musq) AnalysisLimit(n int) *Musq { return m.Pragma("analysis_limit", strconv.Itoa(n)) }

// CommandChannelSize overrides the Worker's command channel capacity.
func (m *Musq) CommandChannelSize(n int) *Musq { m.commandChannelSize = n; return m }

// RowChannelSize overrides the Fetch result-stream channel capacity.
func (m *Musq) RowChannelSize(n int) *Musq { m.rowChannelSize = n; return m }

// StatementCacheCapacity overrides the per-connection statement LRU's
// capacity. Default 100.
func (m *Musq) StatementCacheCapacity(n int) *Musq { m.statementCacheCapacity = n; return m }

// PoolMaxConnections overrides the Pool's maximum live connection count.
// Default 10.
func (m *Musq) PoolMaxConnections(n int) *Musq { m.poolMaxConnections = n; return m }

// PoolAcquireTimeoutMillis overrides how long Pool.Acquire waits before
// returning ErrPoolTimedOut. Default 30000ms.
func (m *Musq) PoolAcquireTimeoutMillis(ms int) *Musq { m.poolAcquireTimeout = ms; return m }

// OptimizeOnCloseEnabled enables PRAGMA optimize on Connection close,
// optionally preceded by a PRAGMA analysis_limit override.
func (m *Musq) OptimizeOnCloseEnabled(analysisLimit *int) *Musq {
	m.optimizeOnClose = OptimizeOnClose{Enabled: true, AnalysisLimit: analysisLimit}
	return m
}

// dsn renders the configured options into a modernc.org/sqlite connection
// string: a file path (or in-memory URI) plus SQLite URI query parameters
// (mode, immutable, cache, vfs) and a _busy_timeout parameter. The pragmas
// are applied separately as a compound
// script on connection open (see pragmaScript): the worker opens the
// engine, then executes the concatenation of every pragma as one compound
// script.
func (m *Musq) dsn() string {
	var base string
	q := url.Values{}

	switch {
	case m.inMemory && m.sharedCache:
		base = "file::memory:"
		q.Set("cache", "shared")
	case m.inMemory:
		base = "file:" + m.filename + "?mode=memory"
	default:
		base = m.filename
	}

	if m.readOnly {
		q.Set("mode", "ro")
	} else if m.createIfMissing && !m.inMemory {
		q.Set("mode", "rwc")
	}
	if m.immutable {
		q.Set("immutable", "1")
	}
	if m.sharedCache && !m.inMemory {
		q.Set("cache", "shared")
	}
	if m.vfs != "" {
		q.Set("vfs", m.vfs)
	}
	q.Set("_busy_timeout", strconv.Itoa(m.busyTimeoutMillis))

	if len(q) == 0 {
		return base
	}
	if strings.Contains(base, "?") {
		return base + "&" + q.Encode()
	}
	return base + "?" + q.Encode()
}

// pragmaScript concatenates every pragma with a non-empty value into one
// compound script, in canonical order followed by user-added extras.
func (m *Musq) pragmaScript() string {
	ordered := append([]string(nil), pragmaOrder...)
	seen := map[string]bool{}
	for _, n := range pragmaOrder {
		seen[n] = true
	}
	for _, n := range m.pragmaNames {
		if !seen[n] {
			ordered = append(ordered, n)
			seen[n] = true
		}
	}

	var b strings.Builder
	for _, name := range ordered {
		v, ok := m.pragmaValues[name]
		if !ok || v == "" {
			continue
		}
		fmt.Fprintf(&b, "PRAGMA %s = %s; ", name, v)
	}
	return b.String()
}

// Open establishes a single standalone Connection against this
// configuration.
func (m *Musq) Open(ctx context.Context) (*Connection, error) {
	conn, err := connect(ctx, m)
	if err != nil {
		return nil, err
	}
	if script := m.pragmaScript(); script != "" {
		if _, _, err := conn.Execute(ctx, script, nil); err != nil {
			_ = conn.Close(ctx)
			return nil, err
		}
	}
	return conn, nil
}

// OpenPool establishes a connection Pool against this configuration.
func (m *Musq) OpenPool(ctx context.Context) (*Pool, error) {
	return newPool(ctx, m)
}

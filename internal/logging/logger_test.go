package logging

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_ConsoleLevels(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsoleLogger("render", &buf)

	l.Debug("скрыто")
	l.Info("chunk %d meshed", 3)
	assert.NotContains(t, buf.String(), "скрыто")
	assert.Contains(t, buf.String(), "[INFO] [render] chunk 3 meshed")

	buf.Reset()
	l.SetLevels(TRACE, TRACE)
	l.Trace("trace")
	assert.Contains(t, buf.String(), "[TRACE]")
	assert.NoError(t, l.Close())
}

func TestLogger_WritesFile(t *testing.T) {
	prev := LogDir
	LogDir = t.TempDir()
	defer func() { LogDir = prev }()

	l, err := NewLogger("storage")
	require.NoError(t, err)
	l.SetLevels(ERROR, DEBUG)
	l.Debug("saved %d chunks", 4)
	require.NoError(t, l.Close())

	files, err := filepath.Glob(filepath.Join(LogDir, "storage_*.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "saved 4 chunks")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLevel("debug"))
	assert.Equal(t, WARN, ParseLevel("warning"))
	assert.Equal(t, INFO, ParseLevel("whatever"))
	assert.Equal(t, "ERROR", ERROR.String())
}

func TestManager_ReturnsSameLogger(t *testing.T) {
	a := GetComponentLogger("render-test")
	b := GetComponentLogger("render-test")
	assert.Same(t, a, b)
	assert.Contains(t, GetLoggerManager().ListComponents(), "render-test")
	assert.NoError(t, GetLoggerManager().SetLogLevel("render-test", WARN, WARN))
	assert.Error(t, GetLoggerManager().SetLogLevel("missing", WARN, WARN))
}

func TestSetGlobalLevels_ReachesComponentLoggers(t *testing.T) {
	t.Cleanup(func() { SetGlobalLevels(INFO, TRACE) })

	existing := GetComponentLogger("levels-existing")
	SetGlobalLevels(DEBUG, TRACE)
	assert.Equal(t, DEBUG, existing.minConsoleLevel)

	r, w, err := os.Pipe()
	require.NoError(t, err)
	stdout := os.Stdout
	os.Stdout = w
	fresh := GetComponentLogger("levels-fresh")
	os.Stdout = stdout

	fresh.Debug("debug-line %d", 1)
	require.NoError(t, w.Close())
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Contains(t, string(out), "[DEBUG] [levels-fresh] debug-line 1")

	console, file := GlobalLevels()
	assert.Equal(t, DEBUG, console)
	assert.Equal(t, TRACE, file)
	assert.Equal(t, DEBUG, Default().minConsoleLevel)
}

func TestManager_CloseAllForgetsLoggers(t *testing.T) {
	lm := &LoggerManager{loggers: make(map[string]*Logger)}
	lm.MustGetLogger("close-a")
	lm.MustGetLogger("close-b")
	require.Len(t, lm.ListComponents(), 2)

	assert.NoError(t, lm.CloseAll())
	assert.Empty(t, lm.ListComponents())
}

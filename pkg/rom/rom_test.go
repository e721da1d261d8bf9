package rom

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/retroenv/retrogolib/assert"

	"gochip8/pkg/memory"
)

func TestLoad(t *testing.T) {
	mem := memory.New()
	assert.NoError(t, Load(mem, []byte{0x00, 0xE0, 0x12, 0x00}))

	assert.Equal(t, byte(0x00), mem.ReadRAMCell(0x200))
	assert.Equal(t, byte(0xE0), mem.ReadRAMCell(0x201))
	assert.Equal(t, byte(0x12), mem.ReadRAMCell(0x202))
	assert.Equal(t, byte(0x00), mem.ReadRAMCell(0x203))
	assert.Equal(t, memory.ProgramStart, mem.PC())
}

func TestLoadFullSize(t *testing.T) {
	mem := memory.New()
	data := make([]byte, MaxSize)
	data[len(data)-1] = 0xAA
	assert.NoError(t, Load(mem, data))
	assert.Equal(t, byte(0xAA), mem.ReadRAMCell(0xFFF))
}

func TestLoadTooLarge(t *testing.T) {
	mem := memory.New()
	err := Load(mem, make([]byte, MaxSize+1))
	assert.True(t, errors.Is(err, ErrRomLoad))
	assert.Equal(t, byte(0), mem.ReadRAMCell(0x200))
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.ch8")
	assert.NoError(t, os.WriteFile(path, []byte{0xA2, 0x2A}, 0o600))

	mem := memory.New()
	fullPath, err := LoadFile(mem, path)
	assert.NoError(t, err)
	assert.Equal(t, path, fullPath)
	assert.Equal(t, byte(0xA2), mem.ReadRAMCell(0x200))
	assert.Equal(t, byte(0x2A), mem.ReadRAMCell(0x201))
}

func TestLoadFileMissing(t *testing.T) {
	mem := memory.New()
	_, err := LoadFile(mem, filepath.Join(t.TempDir(), "missing.ch8"))
	assert.True(t, errors.Is(err, ErrRomLoad))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestGetPathInfo(t *testing.T) {
	dir := t.TempDir()
	full, parent, err := GetPathInfo(filepath.Join(dir, "sub", "..", "game.ch8"))
	assert.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "game.ch8"), full)
	assert.Equal(t, dir, parent)
}

package iocli

import (
	"bufio"
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferedStdio(input string) (*Stdio, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &Stdio{in: bufio.NewReader(strings.NewReader(input)), out: out}, out
}

// Проверяем что NewStdio возвращает валидный объект
func TestNewStdio(t *testing.T) {
	assert.NotNil(t, NewStdio())
}

func TestPrintlnAndPrintf(t *testing.T) {
	stdio, out := newBufferedStdio("")

	stdio.Println("hello", "world")
	stdio.Printf("test %d %s", 1, "abc")
	_, err := stdio.Write([]byte("!"))
	require.NoError(t, err)

	assert.Equal(t, "hello world\ntest 1 abc!", out.String())
}

func TestReadInput(t *testing.T) {
	stdio, out := newBufferedStdio("  john@example.com \nsecond\nlast")

	first, err := stdio.ReadInput("Email: ")
	require.NoError(t, err)
	assert.Equal(t, "john@example.com", first)
	assert.Equal(t, "Email: ", out.String())

	second, err := stdio.ReadInput("")
	require.NoError(t, err)
	assert.Equal(t, "second", second)

	// последняя строка без перевода строки
	last, err := stdio.ReadInput("")
	require.NoError(t, err)
	assert.Equal(t, "last", last)

	_, err = stdio.ReadInput("")
	assert.Error(t, err)
}

// Тест ReadPassword: stdin подменен pipe-ом, поэтому эхо не отключается
func TestReadPassword_NotTerminal(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)

	oldStdin := os.Stdin
	defer func() { os.Stdin = oldStdin }()
	os.Stdin = r

	go func() {
		_, _ = w.Write([]byte("Password123\n"))
		_ = w.Close()
	}()

	stdio := &Stdio{in: bufio.NewReader(r), out: &bytes.Buffer{}}
	password, err := stdio.ReadPassword("Password: ")
	require.NoError(t, err)
	assert.Equal(t, "Password123", password)
}

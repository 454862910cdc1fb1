package confirm

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/chzyer/readline"
)

// LinePrompter reads a single line from a plain reader. Used when stdin is a pipe.
type LinePrompter struct {
	In  io.Reader
	Out io.Writer

	reader *bufio.Reader
}

func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{In: in, Out: out, reader: bufio.NewReader(in)}
}

func (p *LinePrompter) Ask(ctx context.Context, question string) (string, error) {
	if p.reader == nil {
		p.reader = bufio.NewReader(p.In)
	}
	fmt.Fprint(p.Out, question)
	line, err := await(ctx, func() (string, error) {
		line, err := p.reader.ReadString('\n')
		if errors.Is(err, io.EOF) {
			return line, nil
		}
		return line, err
	}, nil)
	if line == "" {
		fmt.Fprintln(p.Out)
	}
	return strings.TrimRight(line, "\r\n"), err
}

// ReadlinePrompter reads from the terminal with line editing.
type ReadlinePrompter struct {
	Stdin  io.ReadCloser
	Stdout io.Writer
}

func (p *ReadlinePrompter) Ask(ctx context.Context, question string) (string, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:                 question,
		Stdin:                  p.Stdin,
		Stdout:                 p.Stdout,
		DisableAutoSaveHistory: true,
		HistoryLimit:           -1,
	})
	if err != nil {
		return "", fmt.Errorf("open terminal prompt: %w", err)
	}
	var once sync.Once
	closeRL := func() { once.Do(func() { rl.Close() }) }
	defer closeRL()

	return await(ctx, func() (string, error) {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
			return "", nil
		}
		return line, err
	}, closeRL)
}

package server

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/teemow/gdocs-mcp/internal/logging"
)

// stdioReadBufferSize is the stdin read buffer. Large payloads flow
// out of this server, not into it; 1 MB covers any reasonable request.
const stdioReadBufferSize = 1024 * 1024

// StdioServer drives the dispatcher over newline-framed stdin/stdout
// for the lifetime of the process. All logging must go to stderr; a
// single stray line on stdout corrupts the protocol stream.
type StdioServer struct {
	dispatcher *Dispatcher
	in         io.Reader
	out        io.Writer
	logger     *slog.Logger
	writeMu    sync.Mutex
}

// NewStdioServer creates a stdio transport around the dispatcher. A
// nil logger falls back to slog.Default().
func NewStdioServer(dispatcher *Dispatcher, in io.Reader, out io.Writer, logger *slog.Logger) *StdioServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &StdioServer{
		dispatcher: dispatcher,
		in:         in,
		out:        out,
		logger:     logger,
	}
}

// Serve reads messages until the context is cancelled or the input
// reaches EOF. Both are orderly shutdowns; only read faults return an
// error.
func (s *StdioServer) Serve(ctx context.Context) error {
	lines := make(chan string)
	readErr := make(chan error, 1)

	go func() {
		defer close(lines)
		reader := bufio.NewReaderSize(s.in, stdioReadBufferSize)
		for {
			line, err := reader.ReadString('\n')
			if line != "" {
				select {
				case lines <- line:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				if err != io.EOF {
					readErr <- err
				}
				return
			}
		}
	}()

	s.logger.Info("stdio transport ready")
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("stdio transport stopping", logging.Status("cancelled"))
			return nil
		case err := <-readErr:
			return fmt.Errorf("read stdin: %w", err)
		case line, ok := <-lines:
			if !ok {
				s.logger.Info("stdio transport stopping", logging.Status("eof"))
				return nil
			}
			s.handleLine(ctx, line)
		}
	}
}

// handleLine frames one message: trailing CR/LF stripped, blank lines
// dropped, the response written back newline-terminated.
func (s *StdioServer) handleLine(ctx context.Context, line string) {
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return
	}

	response := s.dispatcher.HandleMessage(ctx, []byte(line))
	if response == nil {
		return
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if _, err := s.out.Write(append(response, '\n')); err != nil {
		s.logger.Error("write response", logging.Err(err))
	}
}

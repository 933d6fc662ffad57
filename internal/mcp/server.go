package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"rnstd/internal/logging"

	"github.com/google/uuid"
)

// Server reads one JSON-RPC request per line and writes one response per line. Requests
// are handled strictly in order; the next line is read only after the previous response
// has been flushed.
type Server struct {
	processor *Processor
	logger    *logging.AppLogger
	in        io.Reader
	out       io.Writer
}

// NewServer creates a server on stdin and stdout.
func NewServer(processor *Processor, logger *logging.AppLogger) *Server {
	return NewServerWithIO(processor, logger, os.Stdin, os.Stdout)
}

// NewServerWithIO creates a server with custom I/O (for testing).
func NewServerWithIO(processor *Processor, logger *logging.AppLogger, in io.Reader, out io.Writer) *Server {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Server{
		processor: processor,
		logger:    logger,
		in:        in,
		out:       out,
	}
}

// Serve runs the request loop until the input reaches EOF, ctx is cancelled, or the
// streams fail. Reaching EOF is a normal shutdown and returns nil.
func (s *Server) Serve(ctx context.Context) error {
	logger := s.logger.With("session", uuid.NewString())
	logger.Info("Starting server (stdio transport)", "name", ServerName, "version", ServerVersion)
	defer logger.Info("Server shutdown complete")

	reader := bufio.NewReader(s.in)
	writer := bufio.NewWriter(s.out)

	for {
		if err := ctx.Err(); err != nil {
			logger.Info("Server interrupted, shutting down")
			return err
		}

		line, readErr := reader.ReadBytes('\n')
		if len(line) > 0 {
			resp := s.handleLine(ctx, logger, line)
			if err := s.write(writer, resp); err != nil {
				logger.Error("Failed to write response", "error", err)
				return fmt.Errorf("stdout write error: %w", err)
			}
		}

		if errors.Is(readErr, io.EOF) {
			return nil
		}
		if readErr != nil {
			logger.Error("Failed to read input", "error", readErr)
			return fmt.Errorf("stdin read error: %w", readErr)
		}
	}
}

func (s *Server) handleLine(ctx context.Context, logger *logging.AppLogger, line []byte) Response {
	request, err := decodeLine(line)
	if err != nil {
		logger.Error("Failed to parse JSON", "error", err)
		return errorResponse(nil, ErrParse, "Parse error")
	}

	logger.Info("Received request", "request", string(bytes.TrimSpace(line)))
	start := time.Now()
	resp := s.processor.Process(ctx, request)
	logger.LogPerformance("process request", start)
	return resp
}

// decodeLine parses exactly one JSON value. Numbers are kept as json.Number so request ids
// are echoed exactly as sent.
func decodeLine(line []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after JSON value")
	}
	return value, nil
}

func (s *Server) write(w *bufio.Writer, resp Response) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(resp); err != nil {
		s.logger.Error("Failed to marshal response", "id", resp.ID, "error", err)
		buf.Reset()
		fallback := errorResponse(resp.ID, ErrInternal, fmt.Sprintf("Internal error: %s", err))
		if err := enc.Encode(fallback); err != nil {
			return err
		}
	}

	s.logger.Info("Sending response", "response", string(bytes.TrimSpace(buf.Bytes())))
	if _, err := w.Write(buf.Bytes()); err != nil {
		return err
	}
	return w.Flush()
}

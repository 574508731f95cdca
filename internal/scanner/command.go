package scanner

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/steveyegge/featuregen/internal/logging"
)

// featureConflictCode prefixes scanner messages that name two conflicting configured features
const featureConflictCode = "CWMIG12083"

// CommandBinding runs an external scanner program once per call.
// The request is written to stdin as JSON and the response is read from stdout.
type CommandBinding struct {
	// Path is the program name or path
	Path string
	Args []string
	// Env replaces the process environment when non-nil
	Env    []string
	Dir    string
	Logger *zap.Logger
}

// Open resolves the scanner program
func (b *CommandBinding) Open(ctx context.Context) (Session, error) {
	if b.Path == "" {
		return nil, fmt.Errorf("scanner command is not configured (set scanner.command or FEATUREGEN_SCANNER_COMMAND)")
	}
	path, err := exec.LookPath(b.Path)
	if err != nil {
		return nil, fmt.Errorf("scanner command %q not found (install it or set scanner.command): %w", b.Path, err)
	}
	return &commandSession{
		path: path,
		args: append([]string(nil), b.Args...),
		env:  b.Env,
		dir:  b.Dir,
		log:  logging.OrNop(b.Logger).Named("scanner.command"),
	}, nil
}

type commandResponse struct {
	Features *[]string        `json:"features"`
	Conflict *commandConflict `json:"conflict"`
}

type commandConflict struct {
	Type     ConflictKind `json:"type"`
	Features []string     `json:"features"`
	Message  string       `json:"message"`
}

type commandSession struct {
	path string
	args []string
	env  []string
	dir  string
	log  *zap.Logger

	mu     sync.Mutex
	closed bool
}

func (s *commandSession) Scan(ctx context.Context, req ScanRequest) ([]string, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, fmt.Errorf("scanner session is closed")
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode scan request: %w", err)
	}

	cmd := exec.CommandContext(ctx, s.path, s.args...)
	cmd.Stdin = bytes.NewReader(payload)
	cmd.Env = s.env
	cmd.Dir = s.dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	s.log.Debug("running scanner", zap.String("path", s.path), zap.Int("inputs", len(req.Inputs)),
		zap.Strings("currentFeatures", req.CurrentFeatures))
	runErr := cmd.Run()
	s.logStderr(stderr.Bytes())

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	var resp commandResponse
	if err := json.Unmarshal(bytes.TrimSpace(stdout.Bytes()), &resp); err != nil {
		if runErr != nil {
			return nil, fmt.Errorf("%w: scanner exited: %w: %s", ErrOracleUnavailable, runErr, lastLine(stderr.String()))
		}
		return nil, fmt.Errorf("%w: malformed scanner response: %w", ErrOracleUnavailable, err)
	}

	if resp.Conflict != nil {
		return nil, resp.Conflict.toError()
	}
	if runErr != nil {
		return nil, fmt.Errorf("%w: scanner exited: %w: %s", ErrOracleUnavailable, runErr, lastLine(stderr.String()))
	}
	if resp.Features == nil {
		return nil, fmt.Errorf("%w: scanner response has neither features nor conflict", ErrOracleUnavailable)
	}
	return *resp.Features, nil
}

func (s *commandSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("scanner session already closed")
	}
	s.closed = true
	return nil
}

func (s *commandSession) logStderr(out []byte) {
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			s.log.Debug(line)
		}
	}
}

func (c *commandConflict) toError() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("%w: unknown conflict type %q", ErrOracleUnavailable, c.Type)
	}
	features := c.Features
	if len(features) == 0 && c.Type == ExistingFeatureConflict {
		features = ParseConflictMessage(c.Message)
		if len(features) == 0 {
			return fmt.Errorf("%w: feature conflict names no features: %s", ErrOracleUnavailable, lastLine(c.Message))
		}
	}
	return &ConflictError{Kind: c.Type, Features: features, Message: c.Message}
}

// ParseConflictMessage extracts the configured features named by feature conflict
// messages. Each matching line names its two features in the third word and the
// second to last word.
func ParseConflictMessage(message string) []string {
	var features []string
	for _, line := range strings.Split(message, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, featureConflictCode) {
			continue
		}
		parts := strings.Split(line, " ")
		if len(parts) > 4 {
			features = append(features, parts[2], parts[len(parts)-2])
		}
	}
	return uniqueSorted(features)
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

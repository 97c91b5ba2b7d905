package lsp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/uri"

	"github.com/matzehuels/composer-lsp/pkg/analysis"
	"github.com/matzehuels/composer-lsp/pkg/errors"
)

// Options configures a Server.
type Options struct {
	Analyzer *analysis.Analyzer // Required
	Runner   Runner             // Defaults to &Composer{}
	Logger   *log.Logger        // Defaults to log.Default()
	Name     string             // Reported as serverInfo.name (default "composer-lsp")
	Version  string

	// WatchLocks refreshes open documents when their composer.lock changes.
	WatchLocks   bool
	LockDebounce time.Duration // Default 250ms
}

// Server adapts an [analysis.Analyzer] to the editor protocol.
//
// Requests are dispatched through jsonrpc2.AsyncHandler. Document
// notifications and commands reply before doing their work, so a slow
// refresh never holds up hovers queued behind it.
type Server struct {
	analyzer *analysis.Analyzer
	runner   Runner
	logger   *log.Logger
	info     serverInfo

	watchLocks   bool
	lockDebounce time.Duration
	watcher      *lockWatcher

	conn jsonrpc2.Conn

	mu           sync.Mutex
	shuttingDown bool
	exited       bool

	// diagMu orders publishDiagnostics so a superseded refresh never
	// publishes after the one that replaced it.
	diagMu sync.Mutex
}

// NewServer creates a Server.
func NewServer(opts Options) (*Server, error) {
	if opts.Analyzer == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "lsp: analyzer is required")
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Runner == nil {
		logger := opts.Logger
		opts.Runner = &Composer{Logger: func(f string, args ...any) { logger.Debugf(f, args...) }}
	}
	if opts.Name == "" {
		opts.Name = "composer-lsp"
	}
	if opts.LockDebounce <= 0 {
		opts.LockDebounce = 250 * time.Millisecond
	}
	return &Server{
		analyzer:     opts.Analyzer,
		runner:       opts.Runner,
		logger:       opts.Logger,
		info:         serverInfo{Name: opts.Name, Version: opts.Version},
		watchLocks:   opts.WatchLocks,
		lockDebounce: opts.LockDebounce,
	}, nil
}

// Serve speaks the protocol over rwc until the client sends exit, the
// stream ends or ctx is cancelled. An exit without a preceding shutdown is
// reported as an error.
func (s *Server) Serve(ctx context.Context, rwc io.ReadWriteCloser) error {
	if s.watchLocks {
		w, err := newLockWatcher(s.lockDebounce, s.logger, func(docURI string) { s.refresh(ctx, docURI, nil) })
		if err != nil {
			s.logger.Warn("lock file watching disabled", "err", err)
		} else {
			s.watcher = w
			go w.run(ctx)
			defer w.close()
		}
	}

	s.conn = jsonrpc2.NewConn(jsonrpc2.NewStream(rwc))
	s.conn.Go(ctx, jsonrpc2.AsyncHandler(s.handle))
	s.logger.Info("serving", "name", s.info.Name, "version", s.info.Version)

	select {
	case <-ctx.Done():
		s.conn.Close()
		<-s.conn.Done()
		return ctx.Err()
	case <-s.conn.Done():
	}

	s.mu.Lock()
	exited, clean := s.exited, s.shuttingDown
	s.mu.Unlock()
	if exited && !clean {
		return errors.New(errors.ErrCodeInternal, "exit received before shutdown")
	}
	if !exited {
		s.logger.Debug("connection closed", "err", s.conn.Err())
	}
	return nil
}

func (s *Server) handle(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	s.logger.Debug("request", "method", req.Method())

	s.mu.Lock()
	down := s.shuttingDown
	s.mu.Unlock()
	if down && req.Method() != methodExit {
		return reply(ctx, nil, jsonrpc2.NewError(jsonrpc2.InvalidRequest, "server is shutting down"))
	}

	switch req.Method() {
	case methodInitialize:
		return reply(ctx, s.capabilities(), nil)
	case methodInitialized:
		s.logMessage(ctx, MessageInfo, s.info.Name+" initialized")
		return reply(ctx, nil, nil)
	case methodShutdown:
		s.mu.Lock()
		s.shuttingDown = true
		s.mu.Unlock()
		return reply(ctx, nil, nil)
	case methodExit:
		s.mu.Lock()
		s.exited = true
		s.mu.Unlock()
		err := reply(ctx, nil, nil)
		s.conn.Close()
		return err

	case methodDidOpen:
		var p didOpenParams
		if err := decode(req, &p); err != nil {
			return reply(ctx, nil, err)
		}
		if err := reply(ctx, nil, nil); err != nil {
			return err
		}
		if path, err := filename(p.TextDocument.URI); err == nil && s.watcher != nil && s.analyzer.Supports(path) {
			s.watcher.watch(filepath.Dir(path), p.TextDocument.URI)
		}
		s.refresh(ctx, p.TextDocument.URI, []byte(p.TextDocument.Text))
		return nil
	case methodDidSave:
		var p didSaveParams
		if err := decode(req, &p); err != nil {
			return reply(ctx, nil, err)
		}
		if err := reply(ctx, nil, nil); err != nil {
			return err
		}
		var content []byte
		if p.Text != nil {
			content = []byte(*p.Text)
		}
		s.refresh(ctx, p.TextDocument.URI, content)
		return nil
	case methodDidClose:
		var p didCloseParams
		if err := decode(req, &p); err != nil {
			return reply(ctx, nil, err)
		}
		if path, err := filename(p.TextDocument.URI); err == nil {
			if s.watcher != nil {
				s.watcher.unwatch(filepath.Dir(path), p.TextDocument.URI)
			}
			s.diagMu.Lock()
			s.analyzer.Close(path)
			s.publish(ctx, p.TextDocument.URI, nil)
			s.diagMu.Unlock()
		}
		return reply(ctx, nil, nil)
	case methodDidChange, methodCancelRequest, methodSetTrace:
		return reply(ctx, nil, nil)

	case methodHover:
		var p positionParams
		if err := decode(req, &p); err != nil {
			return reply(ctx, nil, err)
		}
		result, err := s.hover(ctx, p)
		return s.replyQuery(ctx, reply, req.Method(), result, err)
	case methodDefinition:
		var p positionParams
		if err := decode(req, &p); err != nil {
			return reply(ctx, nil, err)
		}
		result, err := s.definition(ctx, p)
		return s.replyQuery(ctx, reply, req.Method(), result, err)
	case methodCodeAction:
		var p codeActionParams
		if err := decode(req, &p); err != nil {
			return reply(ctx, nil, err)
		}
		result, err := s.codeActions(p)
		return s.replyQuery(ctx, reply, req.Method(), result, err)
	case methodExecuteCommand:
		var p executeCommandParams
		if err := decode(req, &p); err != nil {
			return reply(ctx, nil, err)
		}
		run, err := s.command(p)
		if err != nil {
			return reply(ctx, nil, jsonrpc2.NewError(jsonrpc2.InvalidParams, err.Error()))
		}
		if err := reply(ctx, nil, nil); err != nil {
			return err
		}
		run(ctx)
		return nil
	}
	return jsonrpc2.MethodNotFoundHandler(ctx, reply, req)
}

func (s *Server) capabilities() initializeResult {
	return initializeResult{
		Capabilities: serverCapabilities{
			TextDocumentSync: textDocumentSyncOptions{
				OpenClose: true,
				Change:    textDocumentSyncFull,
				Save:      saveOptions{IncludeText: true},
			},
			HoverProvider:      true,
			DefinitionProvider: true,
			CodeActionProvider: true,
			ExecuteCommandProvider: executeCommandOptions{
				Commands: []string{analysis.CommandInstall, analysis.CommandUpdate},
			},
		},
		ServerInfo: s.info,
	}
}

// replyQuery answers a query. Recoverable failures are logged, mirrored to
// the client's log and answered with null.
func (s *Server) replyQuery(ctx context.Context, reply jsonrpc2.Replier, method string, result any, err error) error {
	if err == nil {
		return reply(ctx, result, nil)
	}
	if errors.Recoverable(err) {
		s.logger.Debug("nothing to answer", "method", method, "reason", errors.UserMessage(err))
		s.logMessage(ctx, MessageLog, fmt.Sprintf("%s: %s", method, errors.UserMessage(err)))
		return reply(ctx, nil, nil)
	}
	s.logger.Error("query failed", "method", method, "err", err)
	return reply(ctx, nil, jsonrpc2.NewError(jsonrpc2.InternalError, err.Error()))
}

func (s *Server) hover(ctx context.Context, p positionParams) (*hoverResult, error) {
	path, err := filename(p.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	h, err := s.analyzer.Hover(ctx, path, p.Position.Line)
	if err != nil {
		return nil, err
	}
	r := lineSpan(h.Line, h.StartColumn, h.EndColumn)
	return &hoverResult{
		Contents: markupContent{Kind: "markdown", Value: h.Markdown},
		Range:    &r,
	}, nil
}

func (s *Server) definition(ctx context.Context, p positionParams) (*location, error) {
	path, err := filename(p.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	target, err := s.analyzer.Definition(ctx, path, p.Position.Line)
	if err != nil {
		return nil, err
	}
	return &location{URI: target, Range: lineSpan(0, 0, 0)}, nil
}

func (s *Server) codeActions(p codeActionParams) ([]command, error) {
	if p.Range.Start.Line != p.Range.End.Line {
		return nil, errors.New(errors.ErrCodeNoDependency, "selection spans several lines")
	}
	path, err := filename(p.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	actions, err := s.analyzer.Actions(path, p.Range.Start.Line)
	if err != nil {
		return nil, err
	}
	out := make([]command, 0, len(actions))
	for _, a := range actions {
		out = append(out, command{
			Title:     a.Title,
			Command:   a.Command,
			Arguments: append([]string{p.TextDocument.URI}, a.Arguments...),
		})
	}
	return out, nil
}

// command validates an executeCommand request and returns the work to run
// once the request has been answered.
func (s *Server) command(p executeCommandParams) (func(context.Context), error) {
	args := make([]string, len(p.Arguments))
	for i, raw := range p.Arguments {
		if err := json.Unmarshal(raw, &args[i]); err != nil {
			return nil, fmt.Errorf("argument %d of %s is not a string", i, p.Command)
		}
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("%s needs the manifest URI", p.Command)
	}
	docURI := args[0]
	path, err := filename(docURI)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)

	switch p.Command {
	case analysis.CommandInstall:
		return func(ctx context.Context) {
			s.runComposer(ctx, docURI, "Composer packages were installed.", func() error {
				return s.runner.Install(ctx, dir)
			})
		}, nil
	case analysis.CommandUpdate:
		if len(args) < 2 || args[1] == "" {
			return nil, fmt.Errorf("%s needs a package name", p.Command)
		}
		pkg := args[1]
		if err := errors.ValidateComposerPackageName(pkg); err != nil {
			return nil, err
		}
		return func(ctx context.Context) {
			s.runComposer(ctx, docURI, fmt.Sprintf("Composer package %s was updated.", pkg), func() error {
				return s.runner.Update(ctx, dir, pkg)
			})
		}, nil
	}
	return nil, fmt.Errorf("unknown command %q", p.Command)
}

func (s *Server) runComposer(ctx context.Context, docURI, success string, run func() error) {
	err := run()
	switch {
	case err == ErrUnresolvable:
		s.logger.Warn("composer could not resolve dependencies", "uri", docURI)
		s.showMessage(ctx, MessageInfo, "Composer dependencies could not be resolved.")
	case err != nil:
		s.logger.Error("composer failed", "uri", docURI, "err", err)
		s.showMessage(ctx, MessageError, "Composer command failed.")
	default:
		s.showMessage(ctx, MessageInfo, success)
		s.refresh(ctx, docURI, nil)
	}
}

// refresh re-analyzes a document and publishes its diagnostics.
func (s *Server) refresh(ctx context.Context, docURI string, content []byte) {
	path, err := filename(docURI)
	if err != nil {
		s.logger.Debug("ignoring document", "uri", docURI, "reason", err)
		return
	}
	snap, err := s.analyzer.Refresh(ctx, path, content)
	if err != nil {
		if errors.Is(err, errors.ErrCodeNotManifest) {
			s.logger.Debug("ignoring document", "path", path)
			return
		}
		s.logger.Error("refresh failed", "path", path, "err", err)
		s.logMessage(ctx, MessageError, errors.UserMessage(err))
		return
	}
	s.diagMu.Lock()
	defer s.diagMu.Unlock()
	if !s.analyzer.Current(snap) {
		s.logger.Debug("dropping superseded diagnostics", "path", path, "refresh", snap.RefreshID)
		return
	}
	s.publish(ctx, docURI, snap.Diagnostics)
}

func (s *Server) publish(ctx context.Context, docURI string, ds []analysis.Diagnostic) {
	out := make([]diagnostic, 0, len(ds))
	for _, d := range ds {
		out = append(out, diagnostic{
			Range:    lineSpan(d.Line, d.StartColumn, d.EndColumn),
			Severity: int(d.Severity),
			Source:   s.info.Name,
			Message:  d.Message,
		})
	}
	s.notify(ctx, methodPublishDiagnostics, publishDiagnosticsParams{URI: docURI, Diagnostics: out})
}

func (s *Server) logMessage(ctx context.Context, t MessageType, msg string) {
	s.notify(ctx, methodLogMessage, messageParams{Type: t, Message: msg})
}

func (s *Server) showMessage(ctx context.Context, t MessageType, msg string) {
	s.notify(ctx, methodShowMessage, messageParams{Type: t, Message: msg})
}

func (s *Server) notify(ctx context.Context, method string, params any) {
	if err := s.conn.Notify(ctx, method, params); err != nil {
		s.logger.Debug("notify failed", "method", method, "err", err)
	}
}

func decode(req jsonrpc2.Request, v any) error {
	if err := json.Unmarshal(req.Params(), v); err != nil {
		return jsonrpc2.NewError(jsonrpc2.InvalidParams, err.Error())
	}
	return nil
}

// filename converts a file:// document URI to a local path.
func filename(docURI string) (string, error) {
	if !strings.HasPrefix(docURI, uri.FileScheme+"://") {
		return "", errors.New(errors.ErrCodeUnsupported, "unsupported document URI %q", docURI)
	}
	return uri.URI(docURI).Filename(), nil
}

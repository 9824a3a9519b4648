// Package cli is the terminal front end. It dispatches user commands to the
// document session and conversation usecases and re-renders on state change.
package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/0xcro3dile/docinsight-go/internal/adapters/loader"
	"github.com/0xcro3dile/docinsight-go/internal/domain/entities"
	"github.com/0xcro3dile/docinsight-go/internal/domain/ports"
	"github.com/0xcro3dile/docinsight-go/internal/domain/usecases"
)

var (
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

const helpText = `Commands:
  /add <paths...>   stage files (globs allowed)
  /files            list staged files
  /drop <n>         unstage file number n
  /upload           upload staged files
  /clear            clear all uploaded documents
  /health           check the service
  /history          show the whole conversation
  /status           show the last upload status
  /help             show this help
  /quit             exit
Anything else is sent as a question.`

// REPL is the interactive terminal session.
type REPL struct {
	docs    *usecases.DocumentSessionUseCase
	chat    *usecases.ConversationUseCase
	service ports.DocumentService
	in      *LineReader
	out     io.Writer
	log     *zap.Logger

	mu          sync.Mutex // guards out and the render cursor below
	shown       int
	lastStatus  entities.UploadStatus
	lastPending int
	busyShown   bool
}

// NewREPL wires a terminal session to the usecases.
func NewREPL(
	docs *usecases.DocumentSessionUseCase,
	chat *usecases.ConversationUseCase,
	service ports.DocumentService,
	in *LineReader,
	out io.Writer,
	log *zap.Logger,
) *REPL {
	if log == nil {
		log = zap.NewNop()
	}
	r := &REPL{
		docs:    docs,
		chat:    chat,
		service: service,
		in:      in,
		out:     out,
		log:     log.Named("cli"),
	}
	docs.Subscribe(r.render)
	chat.Subscribe(r.render)
	return r
}

// Run reads commands until /quit, end of input or cancellation.
func (r *REPL) Run(ctx context.Context) error {
	r.printf("DocInsight: chat with your documents\n")
	r.printf("%s\n\n", dimStyle.Render("Type /help for commands."))

	for {
		r.printf("> ")
		line, ok := r.in.Next(ctx)
		if !ok {
			r.printf("\n")
			return ctx.Err()
		}
		if quit := r.Handle(ctx, line); quit {
			r.printf("Bye!\n")
			return nil
		}
	}
}

// Watch stages every supported file created in dir until ctx ends.
func (r *REPL) Watch(ctx context.Context, watcher ports.FileWatcher, dir string) error {
	events, err := watcher.Watch(ctx, dir)
	if err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	r.log.Info("watching drop folder", zap.String("dir", dir))

	go func() {
		for event := range events {
			if event.Operation != ports.FileCreated {
				continue
			}
			if _, err := r.docs.StagePaths(ctx, event.Path); err != nil {
				r.log.Warn("staging dropped file failed", zap.String("path", event.Path), zap.Error(err))
			}
		}
	}()
	return nil
}

// Handle runs one input line and reports whether the session should end.
func (r *REPL) Handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if !strings.HasPrefix(line, "/") {
		r.ask(ctx, line)
		return false
	}

	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]
	switch cmd {
	case "/quit", "/exit":
		return true
	case "/help":
		r.printf("%s\n", helpText)
	case "/add":
		r.add(ctx, args)
	case "/files":
		r.listFiles()
	case "/drop":
		r.drop(args)
	case "/upload":
		r.upload(ctx)
	case "/clear":
		r.clear(ctx)
	case "/health":
		r.health(ctx)
	case "/history":
		r.history()
	case "/status":
		r.status()
	default:
		r.printf("%s\n", errorStyle.Render("Unknown command "+cmd+". Type /help."))
	}
	return false
}

func (r *REPL) ask(ctx context.Context, question string) {
	if !r.docs.HasDocuments() {
		r.printf("%s\n", dimStyle.Render("Upload documents first to start chatting."))
		return
	}
	if r.chat.Ask(ctx, question) == entities.OutcomeSkipped && r.chat.IsQuerying() {
		r.printf("%s\n", dimStyle.Render("Still waiting for the previous answer."))
	}
}

func (r *REPL) add(ctx context.Context, args []string) {
	if len(args) == 0 {
		r.printf("usage: /add <paths...>\n")
		return
	}

	var paths []string
	for _, arg := range args {
		matches, err := filepath.Glob(arg)
		if err != nil || len(matches) == 0 {
			paths = append(paths, arg)
			continue
		}
		paths = append(paths, matches...)
	}

	for _, p := range paths {
		if !loader.IsSupported(p) {
			r.printf("%s\n", dimStyle.Render("note: "+filepath.Base(p)+" is not a PDF, Excel, Word, TXT or CSV file"))
		}
	}

	if _, err := r.docs.StagePaths(ctx, paths...); err != nil {
		r.printf("%s\n", errorStyle.Render(err.Error()))
	}
}

func (r *REPL) listFiles() {
	pending := r.docs.Pending()
	if len(pending) == 0 {
		r.printf("No files staged.\n")
		return
	}
	r.printf("Selected Files (%d)\n", len(pending))
	for i, f := range pending {
		r.printf("  %d. %s %s\n", i+1, f.Name, dimStyle.Render(formatSize(f.Size())))
	}
}

func (r *REPL) drop(args []string) {
	if len(args) != 1 {
		r.printf("usage: /drop <n>\n")
		return
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		r.printf("usage: /drop <n>\n")
		return
	}
	r.docs.Retract(n - 1)
	r.listFiles()
}

func (r *REPL) upload(ctx context.Context) {
	switch {
	case r.docs.IsUploading():
		r.printf("%s\n", dimStyle.Render("Upload already in progress."))
		return
	case len(r.docs.Pending()) == 0:
		r.printf("%s\n", dimStyle.Render("No files staged. Use /add first."))
		return
	}
	r.printf("%s\n", dimStyle.Render("Uploading..."))
	r.docs.Commit(ctx)
}

func (r *REPL) clear(ctx context.Context) {
	if !r.docs.HasDocuments() {
		r.printf("%s\n", dimStyle.Render("No documents to clear."))
		return
	}
	if r.docs.Clear(ctx) == entities.OutcomeSkipped {
		r.printf("%s\n", dimStyle.Render("Nothing cleared."))
	}
}

func (r *REPL) health(ctx context.Context) {
	status, err := r.service.CheckHealth(ctx)
	if err != nil {
		r.printf("%s\n", errorStyle.Render("Service unreachable: "+err.Error()))
		return
	}
	keys := make([]string, 0, len(status))
	for k := range status {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		r.printf("  %s: %v\n", k, status[k])
	}
}

func (r *REPL) history() {
	transcript := r.chat.Transcript()
	if len(transcript) == 0 {
		r.printf("%s\n", dimStyle.Render("Ask a question about your documents."))
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range transcript {
		fmt.Fprint(r.out, formatMessage(m))
	}
}

func (r *REPL) status() {
	s, ok := r.docs.Status()
	if !ok {
		r.printf("No uploads yet.\n")
		return
	}
	r.printf("%s\n", formatStatus(s))
}

// render prints whatever changed since the last call. The snapshot is taken
// under r.mu so concurrent renders apply in order.
func (r *REPL) render() {
	r.mu.Lock()
	defer r.mu.Unlock()

	transcript := r.chat.Transcript()
	querying := r.chat.IsQuerying()
	status, hasStatus := r.docs.Status()
	pending := len(r.docs.Pending())
	uploading := r.docs.IsUploading()

	for _, m := range transcript[min(r.shown, len(transcript)):] {
		fmt.Fprint(r.out, formatMessage(m))
	}
	r.shown = len(transcript)

	if querying && !r.busyShown {
		fmt.Fprintln(r.out, dimStyle.Render("Thinking..."))
	}
	r.busyShown = querying

	if hasStatus && status != r.lastStatus {
		fmt.Fprintln(r.out, formatStatus(status))
	}
	if hasStatus {
		r.lastStatus = status
	} else {
		r.lastStatus = entities.UploadStatus{}
	}

	if !uploading && pending > 0 && pending != r.lastPending {
		fmt.Fprintln(r.out, dimStyle.Render(fmt.Sprintf("%d file(s) staged. /upload to send.", pending)))
	}
	r.lastPending = pending
}

func (r *REPL) printf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, format, args...)
}

func formatMessage(m entities.ChatMessage) string {
	var sb strings.Builder
	switch m.Role {
	case entities.RoleUser:
		sb.WriteString(userStyle.Render("You: ") + m.Content + "\n")
	case entities.RoleError:
		sb.WriteString(errorStyle.Render(m.Content) + "\n")
	default:
		sb.WriteString(assistantStyle.Render(m.Content) + "\n")
		if len(m.Sources) > 0 {
			sb.WriteString(dimStyle.Render("Sources:") + "\n")
			for _, s := range m.Sources {
				sb.WriteString(dimStyle.Render("  - "+s) + "\n")
			}
		}
	}
	return sb.String()
}

func formatStatus(s entities.UploadStatus) string {
	if s.Kind == entities.StatusError {
		return errorStyle.Render(s.Message)
	}
	return successStyle.Render(s.Message)
}

func formatSize(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

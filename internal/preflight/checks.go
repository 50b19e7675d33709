package preflight

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"

	"subseg/internal/config"
	"subseg/internal/language"
	"subseg/internal/llmcache"
	"subseg/internal/nlp"
	"subseg/internal/services/llm"
	"subseg/internal/transcript"
)

const llmCheckTimeout = 30 * time.Second

// CheckLLM sends one health request, without retries, to the configured
// endpoint.
func CheckLLM(ctx context.Context, name string, cfg config.LLMConfig, opts ...llm.Option) Result {
	if cfg.APIKey == "" {
		return Result{Name: name, Detail: "API key missing"}
	}
	ctx, cancel := context.WithTimeout(ctx, llmCheckTimeout)
	defer cancel()

	opts = append([]llm.Option{llm.WithRetryMaxAttempts(1)}, opts...)
	client := llm.NewClient(llm.Config(cfg), opts...)
	started := time.Now()
	if err := client.HealthCheck(ctx); err != nil {
		return Result{Name: name, Detail: describeLLMFailure(err)}
	}
	took := time.Since(started).Round(time.Millisecond)
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s reachable (%s)", cfg.Model, took)}
}

// CheckDirectoryAccess passes when path is a directory the process can
// list, read and write.
func CheckDirectoryAccess(name, path string) Result {
	info, failed := stat(name, path)
	switch {
	case failed != nil:
		return *failed
	case !info.IsDir():
		return pathFailure(name, path, "not a directory")
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return pathFailure(name, path, "insufficient permissions: %v", err)
	}
	return Result{Name: name, Passed: true, Detail: path + " (read/write ok)"}
}

// CheckInputFile passes when path is a readable transcript with a supported
// extension.
func CheckInputFile(path string) Result {
	const name = "Input file"
	info, failed := stat(name, path)
	switch {
	case failed != nil:
		return *failed
	case info.IsDir():
		return pathFailure(name, path, "is a directory")
	}
	if !transcript.Supported(path) {
		return pathFailure(name, path, "unsupported extension %q", filepath.Ext(path))
	}
	if err := unix.Access(path, unix.R_OK); err != nil {
		return pathFailure(name, path, "not readable: %v", err)
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", path, humanize.Bytes(uint64(info.Size())))}
}

func stat(name, path string) (os.FileInfo, *Result) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		r := pathFailure(name, path, "does not exist")
		return nil, &r
	}
	if err != nil {
		r := pathFailure(name, path, "stat: %v", err)
		return nil, &r
	}
	return info, nil
}

func pathFailure(name, path, format string, args ...any) Result {
	return Result{Name: name, Detail: fmt.Sprintf("%s (error: %s)", path, fmt.Sprintf(format, args...))}
}

// CheckEngine builds the linguistic engine chain for lang and tokenizes a
// short probe sentence.
func CheckEngine(lang, engine string) Result {
	const name = "Linguistic engine"
	chain, err := nlp.ForLanguage(lang, engine, nil)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	tokens, err := chain.Analyze(probeSentence(lang))
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("analysis failed: %v", err)}
	}
	return Result{
		Name:   name,
		Passed: true,
		Detail: fmt.Sprintf("%s for %s (%d probe tokens)", strings.Join(chain.Names(), " > "), language.DisplayName(lang), len(tokens)),
	}
}

// CheckCache opens the response cache and reads its statistics.
func CheckCache(ctx context.Context, path string) Result {
	const name = "LLM cache"
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "cache path is not configured"}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return pathFailure(name, path, "%v", err)
	}
	store, err := llmcache.Open(path)
	if err != nil {
		return pathFailure(name, path, "%v", err)
	}
	defer store.Close()
	stats, err := store.Stats(ctx)
	if err != nil {
		return pathFailure(name, path, "%v", err)
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d entries)", path, stats.Entries)}
}

func probeSentence(lang string) string {
	if language.Unspaced(lang) {
		return "我们今天出去走走，好吗？"
	}
	return "We checked the engine, and it answered quickly."
}

// describeLLMFailure shortens timeouts to a readable line and passes other
// errors through.
func describeLLMFailure(err error) string {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "health check timed out (no answer from the LLM API)"
	case errors.As(err, &netErr) && netErr.Timeout():
		return "health check timed out (LLM API unreachable)"
	default:
		return err.Error()
	}
}

package utils

import (
	"context"
	"errors"
	"net"
	"path/filepath"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// ShouldRetry reports whether err looks transient (rate limits, upstream
// 5xx, timeouts). The pipeline never retries on its own; callers use this
// to tell the user whether trying again is worthwhile.
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var openAIErr *openai.APIError
	if errors.As(err, &openAIErr) {
		if openAIErr.HTTPStatusCode >= 500 || openAIErr.HTTPStatusCode == 429 {
			return true
		}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.HTTPStatusCode >= 500 || reqErr.HTTPStatusCode == 429 {
			return true
		}
	}
	errMsg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"rate limit",
		"resource exhausted",
		"resource_exhausted",
		"429",
		"500 internal server error",
		"502 bad gateway",
		"503 service unavailable",
		"504 gateway timeout",
		"overloaded",
		"timeout",
		"connection reset by peer",
	} {
		if strings.Contains(errMsg, marker) {
			return true
		}
	}
	return false
}

// DetermineFileType returns the highlighting language for a generated file.
func DetermineFileType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".html":
		return "html"
	case ".ts":
		return "typescript"
	case ".scss":
		return "scss"
	case ".css":
		return "css"
	case ".js":
		return "javascript"
	case ".json":
		return "json"
	default:
		return "plaintext"
	}
}

// FileIcon returns the material icon name shown next to a file.
func FileIcon(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".html":
		return "html"
	case ".ts":
		return "code"
	case ".scss", ".css":
		return "style"
	default:
		return "description"
	}
}

const snippetTitleMax = 50

// SnippetTitle shortens a description to at most 50 characters on a word
// boundary, appending "..." when text was cut.
func SnippetTitle(description string) string {
	words := strings.Split(description, " ")
	title := ""
	for _, word := range words {
		if len(title)+len(word) > snippetTitleMax {
			break
		}
		if title != "" {
			title += " "
		}
		title += word
	}
	if len(title) < len(description) {
		return title + "..."
	}
	return title
}

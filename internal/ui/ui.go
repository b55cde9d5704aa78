// Package ui concentra la salida con color y el spinner de la CLI.
package ui

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"

	domainErrors "github.com/maticastro/notaprensa/internal/domain/errors"
)

var (
	Success = color.New(color.FgGreen, color.Bold)
	Error   = color.New(color.FgRed, color.Bold)
	Warning = color.New(color.FgYellow, color.Bold)
	Info    = color.New(color.FgCyan, color.Bold)
	Accent  = color.New(color.FgMagenta, color.Bold)
	Dim     = color.New(color.FgHiBlack)

	SuccessEmoji = Success.Sprint("✅")
	WarningEmoji = Warning.Sprint("⚠️")
	InfoEmoji    = Info.Sprint("ℹ️")
	NotesEmoji   = "📝"
)

// Spinner envuelve el spinner de terminal con mensajes de cierre.
type Spinner struct {
	spinner *spinner.Spinner
}

func NewSpinner(message string) *Spinner {
	s := spinner.New(
		spinner.CharSets[14],
		100*time.Millisecond,
		spinner.WithColor("cyan"),
		spinner.WithSuffix(" "+NotesEmoji+" "+message),
	)
	return &Spinner{spinner: s}
}

func (s *Spinner) Start() {
	s.spinner.Start()
}

func (s *Spinner) Stop() {
	s.spinner.Stop()
}

func (s *Spinner) UpdateMessage(msg string) {
	s.spinner.Suffix = " " + NotesEmoji + " " + msg
}

func (s *Spinner) Success(msg string) {
	s.Stop()
	PrintSuccess(os.Stdout, msg)
}

func (s *Spinner) Error(msg string) {
	s.Stop()
	PrintError(os.Stdout, msg)
}

// WithSpinner corre fn mostrando un spinner y cierra con el resultado.
func WithSpinner(message string, fn func() error) error {
	s := NewSpinner(message)
	s.Start()

	if err := fn(); err != nil {
		s.Error(fmt.Sprintf("Error: %v", err))
		return err
	}

	s.Success("Done")
	return nil
}

func PrintSuccess(w io.Writer, msg string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", SuccessEmoji, Success.Sprint(msg))
}

func PrintError(w io.Writer, msg string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", Error.Sprint("❌"), Error.Sprint(msg))
}

func PrintWarning(msg string) {
	fmt.Printf("%s %s\n", WarningEmoji, Warning.Sprint(msg))
}

func PrintInfo(msg string) {
	fmt.Printf("%s %s\n", InfoEmoji, Info.Sprint(msg))
}

func PrintKeyValue(key, value string) {
	keyColored := Dim.Sprint(key + ":")
	valueColored := color.New(color.FgWhite, color.Bold).Sprint(value)
	fmt.Printf("   %s %s\n", keyColored, valueColored)
}

func PrintSectionBanner(title string) {
	separator := color.New(color.FgCyan).Sprint("━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("\n%s\n", separator)
	fmt.Printf("%s %s\n", NotesEmoji, Accent.Sprint(title))
	fmt.Printf("%s\n\n", separator)
}

// HandlePipelineError muestra un error de pipeline con su código y una
// sugerencia según la taxonomía.
func HandlePipelineError(err error) {
	if err == nil {
		return
	}

	code := domainErrors.CodeOf(err)
	fmt.Println()
	_, _ = Error.Printf("❌ %s: %s\n", code, err.Error())

	if suggestion := suggestionFor(code); suggestion != "" {
		_, _ = Info.Printf("💡 %s\n", suggestion)
	}
	fmt.Println()
}

func suggestionFor(code domainErrors.Code) string {
	switch code {
	case domainErrors.CodeRateLimit:
		return "Wait a bit and retry; the provider is throttling requests."
	case domainErrors.CodeTimeout:
		return "Retry, or reduce the diff size with a smaller PR."
	case domainErrors.CodeUnauthorized:
		return "Check your GitHub token and its scopes."
	case domainErrors.CodeNotFound:
		return "Check the owner, repository and PR number."
	case domainErrors.CodeNetwork:
		return "Check your network connection and retry."
	default:
		return ""
	}
}

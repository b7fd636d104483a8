package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/hjstudio/imagegen"
	"github.com/hjstudio/imagegen/session"
)

const helpText = `Type a prompt to generate an image. Commands:
  /neg <text>    set the negative prompt (empty clears it)
  /ratio <r>     set the aspect ratio (1:1, 3:4, 4:3, 9:16, 16:9)
  /history       list generated images, most recent first
  /select <n>    show history entry n
  /save          save the current image to the output directory
  /cancel        cancel the running request (Ctrl-C works too)
  /help          show this help
  /quit          exit`

// repl reads prompts and commands line by line and drives a session.
type repl struct {
	ctrl    *session.Controller
	storage imagegen.Storage
	out     io.Writer

	// params holds the negative prompt and aspect ratio between submissions.
	params session.GenerationParams
}

func newREPL(ctrl *session.Controller, storage imagegen.Storage, out io.Writer) *repl {
	return &repl{
		ctrl:    ctrl,
		storage: storage,
		out:     out,
		params:  session.GenerationParams{AspectRatio: session.DefaultAspectRatio},
	}
}

func (r *repl) run(ctx context.Context, in io.Reader) error {
	fmt.Fprintln(r.out, "studio: type a prompt, or /help")
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(r.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(r.out)
			return scanner.Err()
		}
		if quit := r.handle(ctx, scanner.Text()); quit {
			return nil
		}
	}
}

// handle processes one input line and reports whether the user asked to quit.
func (r *repl) handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if !strings.HasPrefix(line, "/") {
		r.generate(ctx, line)
		return false
	}

	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch cmd {
	case "/quit", "/exit":
		return true
	case "/help":
		fmt.Fprintln(r.out, helpText)
	case "/neg":
		r.params.NegativePrompt = arg
		if arg == "" {
			fmt.Fprintln(r.out, "negative prompt cleared")
		} else {
			fmt.Fprintf(r.out, "negative prompt: %s\n", arg)
		}
	case "/ratio":
		r.setRatio(arg)
	case "/history":
		r.printHistory()
	case "/select":
		r.selectEntry(arg)
	case "/save":
		r.save(ctx)
	case "/cancel":
		if !r.ctrl.Cancel() {
			fmt.Fprintln(r.out, "nothing to cancel")
		}
	default:
		fmt.Fprintf(r.out, "unknown command %s, try /help\n", cmd)
	}
	return false
}

func (r *repl) generate(ctx context.Context, prompt string) {
	params := r.params
	params.Prompt = prompt

	err := r.ctrl.Generate(ctx, params)
	switch {
	case errors.Is(err, imagegen.ErrEmptyPrompt), errors.Is(err, imagegen.ErrInvalidAspectRatio):
		fmt.Fprintf(r.out, "not submitted: %v\n", err)
		return
	case errors.Is(err, session.ErrGenerationInFlight):
		fmt.Fprintln(r.out, "a generation is already running")
		return
	case err != nil:
		// The observer already printed the session error.
		if wait, ok := imagegen.RetryAfter(err); ok && wait > 0 {
			fmt.Fprintf(r.out, "try again in %v\n", wait.Round(time.Second))
		}
		return
	}

	cur := r.ctrl.State().Current
	fmt.Fprintf(r.out, "image %s ready (%d bytes as data URL), /save to write it\n", cur.ID, len(cur.URL))
}

func (r *repl) setRatio(arg string) {
	if arg == "" {
		fmt.Fprintf(r.out, "aspect ratio: %s\n", r.params.AspectRatio)
		return
	}
	ratio := imagegen.AspectRatio(arg)
	if err := imagegen.ValidateAspectRatio(ratio); err != nil {
		fmt.Fprintln(r.out, err)
		return
	}
	r.params.AspectRatio = ratio
	fmt.Fprintf(r.out, "aspect ratio: %s\n", ratio)
}

func (r *repl) printHistory() {
	s := r.ctrl.State()
	if len(s.History) == 0 {
		fmt.Fprintln(r.out, "no images yet")
		return
	}
	for i, img := range s.History {
		marker := " "
		if img.ID == s.CurrentID() {
			marker = "*"
		}
		fmt.Fprintf(r.out, "%s %d. [%s] %s\n", marker, i+1, img.Timestamp.Format(time.Kitchen), img.Prompt)
	}
}

func (r *repl) selectEntry(arg string) {
	n, err := strconv.Atoi(arg)
	history := r.ctrl.State().History
	if err != nil || n < 1 || n > len(history) {
		fmt.Fprintf(r.out, "select needs a number between 1 and %d\n", len(history))
		return
	}
	img := history[n-1]
	if err := r.ctrl.Select(img); err != nil {
		fmt.Fprintln(r.out, err)
		return
	}
	fmt.Fprintf(r.out, "showing %d: %s\n", n, img.Prompt)
}

func (r *repl) save(ctx context.Context) {
	cur := r.ctrl.State().Current
	if cur == nil {
		fmt.Fprintln(r.out, "no image to save")
		return
	}
	res, err := imagegen.SaveDataURL(ctx, r.storage, cur.URL, "hj-studio-"+cur.ID)
	if err != nil {
		fmt.Fprintf(r.out, "save failed: %v\n", err)
		return
	}
	fmt.Fprintf(r.out, "saved %s (%d bytes)\n", res.URL, res.Size)
}

// progressObserver reports session transitions to out.
func progressObserver(out io.Writer) func(session.State) {
	var busy bool
	return func(s session.State) {
		switch {
		case s.IsGenerating:
			fmt.Fprintln(out, "generating...")
		case busy && s.Err != "":
			fmt.Fprintf(out, "error: %s\n", s.Err)
		}
		busy = s.IsGenerating
	}
}

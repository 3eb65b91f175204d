package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"redditrewriter/internal/domain"

	"github.com/charmbracelet/lipgloss"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

const (
	bannerText = "========== Reddit Post Fetcher and Rewriter =========="

	postsQuestion      = "How many posts do you want to fetch?"
	variationsQuestion = "How many variations of each post do you want?"
	subredditQuestion  = "Enter a subreddit to search (empty for the front page):"

	clearSequence = "\033[H\033[2J"
)

// ErrNoInput is returned when stdin closes before an answer is given.
var ErrNoInput = errors.New("no input")

// Console is the operator-facing side of a run: prompts, progress and
// colored status lines. It is not safe for concurrent use.
type Console struct {
	in       *bufio.Reader
	out      io.Writer
	styles   styles
	terminal bool
	bar      *progressbar.ProgressBar
	log      *slog.Logger
}

func New(in io.Reader, out io.Writer, log *slog.Logger) *Console {
	return &Console{
		in:       bufio.NewReader(in),
		out:      out,
		styles:   newStyles(lipgloss.NewRenderer(out)),
		terminal: isTerminal(out),
		log:      log,
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)

	return ok && term.IsTerminal(int(f.Fd()))
}

// ClearScreen is a no-op unless output goes to a terminal.
func (c *Console) ClearScreen() {
	if c.terminal {
		c.print(clearSequence)
	}
}

func (c *Console) Banner() {
	c.ClearScreen()
	c.println(c.styles.banner.Render(bannerText))
	c.println("")
}

// CompleteParams asks for every count left at zero. The subreddit is asked
// for only when nothing was given up front.
func (c *Console) CompleteParams(p domain.Params) (domain.Params, error) {
	askSubreddit := p.PostCount == 0 && p.VariationCount == 0 && p.Subreddit == ""

	var err error

	if p.PostCount == 0 {
		if p.PostCount, err = c.askCount(postsQuestion); err != nil {
			return p, err
		}
	}

	if p.VariationCount == 0 {
		if p.VariationCount, err = c.askCount(variationsQuestion); err != nil {
			return p, err
		}
	}

	if askSubreddit {
		if p.Subreddit, err = c.askText(subredditQuestion); err != nil {
			return p, err
		}
	}

	p.Subreddit = domain.NormalizeSubreddit(p.Subreddit)

	return p, nil
}

func (c *Console) Plan(p domain.Params) {
	c.println(c.styles.plan.Render(fmt.Sprintf(
		"Fetching and rewriting %d posts, each with %d variations.", p.PostCount, p.VariationCount)))

	if p.Subreddit != "" {
		c.println("Subreddit: " + p.Subreddit)
	}
}

// Error prints a red status line, above the progress bar if one is shown.
func (c *Console) Error(msg string, err error) {
	c.clearBar()

	line := msg
	if err != nil {
		line += ": " + err.Error()
	}

	c.println(c.styles.error.Render(line))
}

func (c *Console) askCount(question string) (int, error) {
	for {
		answer, err := c.readLine(question)
		if err != nil {
			return 0, err
		}

		n, err := strconv.Atoi(answer)
		if err == nil && n > 0 {
			c.ClearScreen()

			return n, nil
		}

		c.println(c.styles.error.Render("Please enter a whole number greater than zero."))
	}
}

func (c *Console) askText(question string) (string, error) {
	answer, err := c.readLine(question)
	if err != nil {
		return "", err
	}

	c.ClearScreen()

	return answer, nil
}

func (c *Console) readLine(question string) (string, error) {
	c.print(c.styles.prompt.Render(question) + " ")

	line, err := c.in.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("read input: %w", err)
		}
		if line == "" {
			return "", ErrNoInput
		}
	}

	return strings.TrimSpace(line), nil
}

func (c *Console) clearBar() {
	if c.bar == nil {
		return
	}

	if err := c.bar.Clear(); err != nil {
		c.log.Debug("Failed to clear progress bar", "error", err)
	}
}

func (c *Console) print(s string) {
	if _, err := io.WriteString(c.out, s); err != nil {
		c.log.Debug("Failed to write to console", "error", err)
	}
}

func (c *Console) println(s string) {
	c.print(s + "\n")
}

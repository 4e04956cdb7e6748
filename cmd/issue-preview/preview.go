package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli/v3"
	"golang.org/x/text/language"

	"commuterhythm/internal/config"
	"commuterhythm/internal/handlers"
	"commuterhythm/internal/handlers/render"
	"commuterhythm/internal/i18n"
	"commuterhythm/internal/issue"
	"commuterhythm/internal/models"
	"commuterhythm/internal/services"
)

// ErrThemeRequired is returned when no theme argument is given
var ErrThemeRequired = errors.New("a theme is required")

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#111111")).MarginBottom(1)
	numberStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8A8A8A"))
	trackStyle  = lipgloss.NewStyle().Bold(true)
	reasonStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#626262"))
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF0000"))
)

// PreviewerOpts wires a Previewer
type PreviewerOpts struct {
	Client    services.RecommendationService
	Localizer *i18n.Localizer
	Curation  func() *config.CurationConfig
	Output    io.Writer
}

// Previewer runs one issue through the same controller and renderer the
// web page uses
type Previewer struct {
	client    services.RecommendationService
	localizer *i18n.Localizer
	renderer  *render.IssueRenderer
	output    io.Writer
}

// NewPreviewer creates a new previewer
func NewPreviewer(opts PreviewerOpts) *Previewer {
	if opts.Localizer == nil {
		opts.Localizer = i18n.NewLocalizer("")
	}
	if opts.Curation == nil {
		opts.Curation = config.DefaultCurationConfig
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	return &Previewer{
		client:    opts.Client,
		localizer: opts.Localizer,
		renderer:  render.NewIssueRenderer(handlers.GetOriginUIConfig, handlers.GetOriginCSS(), opts.Curation, opts.Localizer),
		output:    opts.Output,
	}
}

// Run is the cli action
func (p *Previewer) Run(ctx context.Context, cmd *cli.Command) error {
	theme := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	return p.Preview(ctx, theme, cmd.String("lang"), cmd.Duration("timeout"), cmd.Bool("json"))
}

// Preview curates one issue for theme and prints it
func (p *Previewer) Preview(ctx context.Context, theme, lang string, timeout time.Duration, asJSON bool) error {
	if strings.TrimSpace(theme) == "" {
		return ErrThemeRequired
	}
	locale := p.localizer.Match(lang)

	controller := issue.NewController(p.client,
		issue.WithTimeout(timeout),
		issue.WithErrorMessage(p.localizer.Translate(locale, i18n.MsgIssueFailed)),
	)
	if !controller.Submit(ctx, theme) {
		return ErrThemeRequired
	}
	if err := controller.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for issue: %w", err)
	}

	state := controller.Snapshot()
	if asJSON {
		enc := json.NewEncoder(p.output)
		enc.SetIndent("", "  ")
		if err := enc.Encode(p.renderer.BuildIssueResponse(state)); err != nil {
			return fmt.Errorf("encoding issue: %w", err)
		}
		if state.Status == models.StatusFailed {
			return errors.New(state.ErrorMessage)
		}
		return nil
	}

	if state.Status == models.StatusFailed {
		fmt.Fprintln(p.output, errorStyle.Render(state.ErrorMessage))
		return errors.New(state.ErrorMessage)
	}

	p.printIssue(state, locale)
	return nil
}

func (p *Previewer) printIssue(state *models.IssueState, locale language.Tag) {
	view := p.renderer.BuildIssueView(state, locale)

	fmt.Fprintln(p.output, titleStyle.Render(fmt.Sprintf("COMMUTE RHYTHM / Iss. %s / %s", view.IssuanceLabel, state.Theme)))

	cards := make([]render.CardView, 0, len(view.Playlist)+1)
	if view.Featured != nil {
		cards = append(cards, *view.Featured)
	}
	cards = append(cards, view.Playlist...)

	for _, card := range cards {
		label := card.OriginLabel
		if card.Featured {
			label = "The Cover Story"
		}
		fmt.Fprintf(p.output, "%s %s / %s  [%s]\n", numberStyle.Render(card.Number), trackStyle.Render(card.Title), card.Artist, label)
		fmt.Fprintf(p.output, "    %s\n", reasonStyle.Render(card.Reason))
		fmt.Fprintf(p.output, "    listen: %s\n", card.ListenURL)
		fmt.Fprintf(p.output, "    image:  %s\n", card.ImageURL)
		if card.ImageFallbacks != "" {
			fmt.Fprintf(p.output, "    then:   %s\n", strings.ReplaceAll(card.ImageFallbacks, " ", ", "))
		}
	}

	if len(view.Sources) > 0 {
		fmt.Fprintln(p.output)
		fmt.Fprintln(p.output, trackStyle.Render("Sources"))
		for _, src := range view.Sources {
			fmt.Fprintf(p.output, "  - %s (%s)\n", src.Title, src.URI)
		}
	}
}

package main

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jwebster45206/manga-engine/internal/handlers"
	"github.com/jwebster45206/manga-engine/pkg/career"
	"github.com/jwebster45206/manga-engine/pkg/game"
	"github.com/jwebster45206/manga-engine/pkg/state"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const PlaceHolderText = "Type a command, or /help..."

var printer = message.NewPrinter(language.English)

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	client       *apiClient
	gameState    *state.GameState
	log          []string
	logViewport  viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	loading      bool

	showQuitModal bool
}

type actionResultMsg struct {
	resp *handlers.SessionResponse
	err  error
}

type journalMsg struct {
	entries []game.Entry
	err     error
}

var (
	logPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	eventTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	noteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	endingStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("205")).
			Padding(1, 2)
)

func NewConsoleUI(client *apiClient, gs *state.GameState) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 200
	ta.SetWidth(50)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false

	logVp := viewport.New(50, 20)
	logVp.MouseWheelEnabled = true

	m := ConsoleUI{
		client:       client,
		gameState:    gs,
		textarea:     ta,
		logViewport:  logVp,
		metaViewport: viewport.New(20, 20),
	}
	m.log = append(m.log,
		titleStyle.Render("MANGA ENGINE"),
		fmt.Sprintf("%s rents a tiny studio with a secondhand desk. Day %d begins.", gs.Player.Name, gs.World.Day),
		promptStyle.Render("Type /help for the list of commands."),
	)
	if gs.ActiveEvent != nil {
		m.log = append(m.log, formatEvent(gs.ActiveEvent))
	}
	return m
}

func (m ConsoleUI) Init() tea.Cmd {
	return textarea.Blink
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.logViewport, vpCmd = m.logViewport.Update(msg)
		return m, vpCmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		logWidth := int(float64(m.width)*0.7) - 4
		metaWidth := m.width - logWidth - 6

		m.logViewport.Width = logWidth - 2
		m.logViewport.Height = m.height - 5
		m.metaViewport.Width = metaWidth - 2
		m.metaViewport.Height = m.height - 4
		m.textarea.SetWidth(logWidth - 4)
		m.ready = true
		m.refresh()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}
			input := strings.TrimSpace(m.textarea.Value())
			m.textarea.Reset()
			if input == "" {
				return m, nil
			}
			m.log = append(m.log, userStyle.Render("> "+input))

			if strings.HasPrefix(input, "/") {
				return m.handleSlashCommand(input)
			}

			req, err := parseCommand(input)
			if err != nil {
				m.log = append(m.log, errorStyle.Render(err.Error()))
				m.refresh()
				return m, nil
			}
			m.loading = true
			m.refresh()
			return m, m.sendAction(req)
		}

	case actionResultMsg:
		m.loading = false
		if msg.err != nil {
			m.log = append(m.log, errorStyle.Render("Error: "+msg.err.Error()))
		} else {
			m.gameState = msg.resp.State
			m.log = append(m.log, formatOutcome(msg.resp.Outcome)...)
		}
		m.refresh()
		return m, nil

	case journalMsg:
		m.loading = false
		if msg.err != nil {
			m.log = append(m.log, errorStyle.Render("Error: "+msg.err.Error()))
		} else {
			m.log = append(m.log, formatJournal(msg.entries))
		}
		m.refresh()
		return m, nil
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.logViewport, vpCmd = m.logViewport.Update(msg)
	return m, tea.Batch(tiCmd, vpCmd)
}

func (m ConsoleUI) handleSlashCommand(input string) (tea.Model, tea.Cmd) {
	switch strings.ToLower(input) {
	case "/help":
		m.log = append(m.log, helpText)
	case "/journal":
		m.loading = true
		m.refresh()
		return m, m.loadJournal()
	case "/copy":
		if err := clipboard.WriteAll(m.gameState.ID.String()); err != nil {
			m.log = append(m.log, errorStyle.Render("Could not copy: "+err.Error()))
		} else {
			m.log = append(m.log, noteStyle.Render("Session id copied. Set SESSION_ID to resume later."))
		}
	default:
		m.log = append(m.log, errorStyle.Render("Unknown command "+input))
	}
	m.refresh()
	return m, nil
}

func (m ConsoleUI) sendAction(req handlers.ActionRequest) tea.Cmd {
	id := m.gameState.ID
	return func() tea.Msg {
		resp, err := m.client.act(id, req)
		return actionResultMsg{resp: resp, err: err}
	}
}

func (m ConsoleUI) loadJournal() tea.Cmd {
	id := m.gameState.ID
	return func() tea.Msg {
		entries, err := m.client.journal(id)
		return journalMsg{entries: entries, err: err}
	}
}

// refresh re-renders both panels for the current width.
func (m *ConsoleUI) refresh() {
	if !m.ready {
		return
	}
	width := m.logViewport.Width - 6
	if width < 20 {
		width = 20
	}

	var b strings.Builder
	for _, entry := range m.log {
		b.WriteString(wordwrap.String(entry, width))
		b.WriteString("\n\n")
	}
	if m.loading {
		b.WriteString(loadingStyle.Render("..."))
	}
	m.logViewport.SetContent(b.String())
	m.logViewport.GotoBottom()

	m.metaViewport.SetContent(writeMetadata(m.gameState))
}

func writeMetadata(gs *state.GameState) string {
	var b strings.Builder
	p := gs.Player
	b.WriteString(titleStyle.Render(strings.ToUpper(p.Name)) + "\n\n")
	b.WriteString(printer.Sprintf("Day     %d\n", gs.World.Day))
	b.WriteString(printer.Sprintf("Energy  %d/%d\n", p.Energy, p.MaxEnergy))
	b.WriteString(printer.Sprintf("Money   %d\n", p.Money))
	b.WriteString(printer.Sprintf("Fans    %d\n\n", p.Fans))

	b.WriteString(printer.Sprintf("Art %.1f  Story %.1f\nCharm %.1f  Darkness %.1f\n\n",
		p.Attributes.Art, p.Attributes.Story, p.Attributes.Charm, p.Attributes.Darkness))

	b.WriteString(titleStyle.Render("RANKING") + "\n")
	b.WriteString(fmt.Sprintf("%s\n#%d\n\n", career.TierName(gs.Career.RankingTier), gs.Career.CurrentRank))

	b.WriteString(titleStyle.Render("WORK") + "\n")
	if w := gs.Career.CurrentWork; w != nil {
		b.WriteString(printer.Sprintf("%s\n%s / %s (%s)\nChapter %d, total %.1f\n\n",
			w.Title, w.GenreName, w.StyleName, w.Synergy, w.Chapter, w.TotalScore))
	} else {
		b.WriteString("None\n\n")
	}

	b.WriteString(titleStyle.Render("PEOPLE") + "\n")
	if len(gs.NPCs) == 0 {
		b.WriteString("Nobody yet\n")
	}
	for _, npc := range gs.NPCs {
		b.WriteString(fmt.Sprintf("%s [%s]\n  %s, %s, favor %d\n", npc.Name, npc.ID, npc.Personality, npc.Status, npc.Favor()))
		if npc.IsKin() {
			b.WriteString(fmt.Sprintf("  restraint %d\n", npc.Kin.Restraint))
		}
	}
	if gs.World.LastMet != "" {
		b.WriteString("\nJust met: " + gs.World.LastMet + "\n")
	}

	b.WriteString("\nCtrl+C: Quit\n")
	return b.String()
}

func formatEvent(ae *state.ActiveEvent) string {
	var b strings.Builder
	b.WriteString(eventTitleStyle.Render("* "+ae.Title) + "\n")
	b.WriteString(ae.Text)
	if len(ae.Choices) == 0 {
		b.WriteString("\n  1. Continue")
	}
	for i, c := range ae.Choices {
		b.WriteString(fmt.Sprintf("\n  %d. %s", i+1, c))
	}
	return b.String()
}

// formatOutcome renders what an action produced, one log entry per part.
func formatOutcome(out *game.Outcome) []string {
	if out == nil {
		return nil
	}
	var lines []string
	if out.Message != "" {
		lines = append(lines, out.Message)
	}
	if c := out.Chapter; c != nil {
		s := printer.Sprintf("Chapter %d of %s scores %.1f. Rank #%d. +%d money, +%d fans.",
			c.Chapter, c.Title, c.Score, c.Rank, c.Income, c.Fans)
		for _, extra := range []string{c.SynergyMsg, c.FocusMsg} {
			if extra != "" {
				s += "\n" + extra
			}
		}
		lines = append(lines, s)
	}
	if out.Plot != "" {
		lines = append(lines, out.Plot)
	}
	if out.Feedback != nil && out.Feedback.HotComment != "" {
		lines = append(lines, noteStyle.Render("Top comment: ")+out.Feedback.HotComment)
	}
	if r := out.Report; r != nil {
		s := printer.Sprintf("Day %d. Energy +%d.", r.Day, r.EnergyRestored)
		if r.UpkeepCharged {
			s += " Rent is due."
		}
		for _, e := range r.Events {
			s += "\n" + e
		}
		lines = append(lines, s)
	}
	if res := out.Resolution; res != nil {
		lines = append(lines, "You chose: "+res.Choice)
	}
	if len(out.Notes) > 0 {
		lines = append(lines, noteStyle.Render(strings.Join(out.Notes, "  ")))
	}
	for _, a := range out.Achievements {
		lines = append(lines, titleStyle.Render("Achievement: "+a.Title)+" "+a.Description)
	}
	if out.Event != nil {
		lines = append(lines, formatEvent(out.Event))
	}
	if out.Ending != nil {
		lines = append(lines, endingStyle.Render(titleStyle.Render(out.Ending.Title)+"\n\n"+out.Ending.Text))
	}
	return lines
}

func formatJournal(entries []game.Entry) string {
	if len(entries) == 0 {
		return "The journal is empty."
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("JOURNAL"))
	start := 0
	if len(entries) > 20 {
		start = len(entries) - 20
	}
	for _, e := range entries[start:] {
		b.WriteString(fmt.Sprintf("\nDay %d [%s] %s", e.Day, e.Category, e.Message))
	}
	return b.String()
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m, tea.Quit
		}
		switch key.String() {
		case "y", "Y":
			return m, tea.Quit
		case "n", "N":
			m.showQuitModal = false
			return m, nil
		}
	}
	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	content := titleStyle.Render("Quit?") + "\n\n" +
		"Your progress is saved on the server.\n" +
		"Session: " + m.gameState.ID.String() + "\n\n" +
		"[Y]es / [N]o"
	modal := modalStyle.Width(60).Render(content)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}
	if !m.ready {
		return "\n  Initializing..."
	}

	logWidth := int(float64(m.width)*0.7) - 4
	metaWidth := m.width - logWidth - 6

	logPanel := logPanelStyle.Width(logWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.logViewport.View(),
			separatorStyle.Render(strings.Repeat("─", logWidth-4)),
			m.textarea.View(),
		),
	)
	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)
	return lipgloss.JoinHorizontal(lipgloss.Top, logPanel, metaPanel)
}

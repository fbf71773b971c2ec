package cmd

import (
	stderrors "errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/mtoohey31/uncommitted/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the uncommitted settings file interactively",
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

var errNoTerminal = stderrors.New("init needs an interactive terminal")

type initStep int

const (
	stepWelcome   initStep = iota
	stepOverwrite          // only if config exists
	stepJobs
	stepSymlinks
	stepConfirm
	stepDone
)

var (
	styleInitTitle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("73"))
	styleInitSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("71"))
	styleInitWarn    = lipgloss.NewStyle().Foreground(lipgloss.Color("179"))
	styleInitDim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
)

type initModel struct {
	step         initStep
	input        textinput.Model
	cfg          *config.Config
	configPath   string
	configExists bool
	inputErr     string
	err          error
	cancelled    bool
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func runInit(cmd *cobra.Command, args []string) error {
	if !isTerminal(os.Stdin) || !isTerminal(os.Stdout) {
		return errNoTerminal
	}

	configPath := rootOpts.cfgFile
	if configPath == "" {
		configPath = config.DefaultConfigPath()
	}

	_, err := os.Stat(configPath)
	configExists := err == nil

	// Start from the current file so fields the wizard does not ask about survive.
	cfg := rootOpts.cfg
	if cfg == nil {
		cfg = config.NewConfig()
	}

	p := tea.NewProgram(newInitModel(configPath, configExists, cfg))
	result, err := p.Run()
	if err != nil {
		return err
	}

	if final, ok := result.(*initModel); ok && final.err != nil {
		return final.err
	}

	return nil
}

func newInitModel(configPath string, configExists bool, cfg *config.Config) *initModel {
	ti := textinput.New()
	ti.Placeholder = "auto"
	ti.CharLimit = 4
	ti.Width = 10
	if cfg.Jobs > 0 {
		ti.SetValue(strconv.Itoa(cfg.Jobs))
	}

	return &initModel{
		step:         stepWelcome,
		input:        ti,
		cfg:          cfg,
		configPath:   configPath,
		configExists: configExists,
	}
}

func (m *initModel) Init() tea.Cmd {
	return nil
}

func (m *initModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()

		// Global quit
		if key == "ctrl+c" {
			m.cancelled = true
			return m, tea.Quit
		}

		switch m.step {
		case stepWelcome:
			if key == "enter" {
				if m.configExists {
					m.step = stepOverwrite
				} else {
					return m, m.enterJobs()
				}
			}
			if key == "q" || key == "esc" {
				m.cancelled = true
				return m, tea.Quit
			}

		case stepOverwrite:
			if key == "y" || key == "Y" {
				return m, m.enterJobs()
			}
			m.cancelled = true
			return m, tea.Quit

		case stepJobs:
			if key == "enter" {
				jobs, err := parseJobs(m.input.Value())
				if err != nil {
					m.inputErr = err.Error()
					return m, nil
				}
				m.cfg.Jobs = jobs
				m.inputErr = ""
				m.input.Blur()
				m.step = stepSymlinks
				return m, nil
			}
			if key == "esc" {
				m.cancelled = true
				return m, tea.Quit
			}
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd

		case stepSymlinks:
			switch key {
			case "y", "Y":
				m.cfg.FollowSymlinks = true
				m.step = stepConfirm
			case "n", "N", "enter":
				m.cfg.FollowSymlinks = false
				m.step = stepConfirm
			case "esc":
				return m, m.enterJobs()
			}

		case stepConfirm:
			if key == "enter" {
				if err := config.Save(m.cfg, m.configPath); err != nil {
					m.err = err
				}
				m.step = stepDone
				return m, tea.Quit
			}
			if key == "esc" {
				m.step = stepSymlinks
			}

		case stepDone:
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m *initModel) enterJobs() tea.Cmd {
	m.step = stepJobs
	m.input.Focus()
	return textinput.Blink
}

// parseJobs accepts a blank value (automatic) or a non-negative integer.
func parseJobs(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "auto" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%q is not a valid worker count", s)
	}
	return n, nil
}

func jobsLabel(jobs int) string {
	if jobs == 0 {
		return "auto"
	}
	return strconv.Itoa(jobs)
}

func (m *initModel) View() string {
	var b strings.Builder

	switch m.step {
	case stepWelcome:
		b.WriteString(styleInitTitle.Render("Welcome to uncommitted!"))
		b.WriteString("\n\n")
		b.WriteString("Settings will be saved to ")
		b.WriteString(styleInitDim.Render(m.configPath))
		b.WriteString("\n\n")
		b.WriteString(styleInitDim.Render("Press Enter to continue, Esc to cancel"))
		b.WriteString("\n")

	case stepOverwrite:
		b.WriteString(styleInitWarn.Render("Config already exists"))
		b.WriteString(" at ")
		b.WriteString(styleInitDim.Render(m.configPath))
		b.WriteString("\n\n")
		b.WriteString("Overwrite? ")
		b.WriteString(styleInitDim.Render("[y/N]"))
		b.WriteString("\n")

	case stepJobs:
		b.WriteString(styleInitTitle.Render("Workers"))
		b.WriteString("\n\n")
		b.WriteString("How many directories should be scanned concurrently?\n")
		b.WriteString(styleInitDim.Render("Leave blank to use one fewer than the number of CPUs."))
		b.WriteString("\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")
		if m.inputErr != "" {
			b.WriteString(styleInitWarn.Render("  " + m.inputErr))
			b.WriteString("\n")
		}

	case stepSymlinks:
		b.WriteString(styleInitTitle.Render("Symlinks"))
		b.WriteString("\n\n")
		b.WriteString("Descend into symlinked directories? ")
		b.WriteString(styleInitDim.Render("[y/N]"))
		b.WriteString("\n")

	case stepConfirm:
		b.WriteString(styleInitTitle.Render("Ready to write config"))
		b.WriteString("\n\n")
		fmt.Fprintf(&b, "  - workers: %s\n", jobsLabel(m.cfg.Jobs))
		fmt.Fprintf(&b, "  - follow symlinks: %t\n", m.cfg.FollowSymlinks)
		b.WriteString("\n")
		b.WriteString(styleInitDim.Render("[Enter] Write config  [Esc] Go back"))
		b.WriteString("\n")

	case stepDone:
		if m.err != nil {
			b.WriteString(styleInitWarn.Render("Error: " + m.err.Error()))
			b.WriteString("\n")
		} else {
			b.WriteString(styleInitSuccess.Render("Config saved to " + m.configPath))
			b.WriteString("\n\n")
			b.WriteString("Run ")
			b.WriteString(styleInitTitle.Render("uncommitted"))
			b.WriteString(" in a directory full of repositories to check them!\n")
		}
	}

	return b.String()
}

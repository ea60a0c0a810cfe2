/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/nakachan-ing/jmt-cli/internal/model"
	"github.com/nakachan-ing/jmt-cli/internal/store"
	"github.com/spf13/cobra"
)

const saveAndExit = "Save & Exit"

type Model struct {
	cursor     int
	fields     []string
	config     model.Config
	configPath string
	textInput  textinput.Model
	editMode   bool
	err        error
	saved      bool
}

func newModel(config model.Config, configPath string) *Model {
	return &Model{
		cursor:     0,
		fields:     generateFieldList(),
		config:     config,
		configPath: configPath,
		textInput:  textinput.New(),
		editMode:   false,
	}
}

func generateFieldList() []string {
	return append(store.ConfigFields(), saveAndExit)
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.editMode {
			switch msg.String() {
			case "enter":
				m.updateConfig()
				m.editMode = false
				m.textInput.Blur()
				return m, tea.ClearScreen
			case "esc":
				m.editMode = false
				m.textInput.Blur()
			default:
				m.textInput, _ = m.textInput.Update(msg)
			}
			return m, nil
		}

		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.fields)-1 {
				m.cursor++
			}
		case "enter":
			if m.fields[m.cursor] == saveAndExit {
				if err := store.SaveConfigTo(m.configPath, m.config); err != nil {
					m.err = err
					return m, nil
				}
				m.saved = true
				return m, tea.Quit
			}
			m.editMode = true
			m.err = nil
			raw, _ := store.GetConfigField(m.config, m.fields[m.cursor])
			m.textInput.SetValue(raw)
			m.textInput.CursorEnd()
			m.textInput.Focus()
		}
	}

	return m, nil
}

func (m Model) View() string {
	var s strings.Builder
	s.WriteString("📄 Configure jmt\n\n")

	for i, field := range m.fields {
		cursor := "  "
		if m.cursor == i {
			cursor = "👉"
		}
		if field == saveAndExit {
			s.WriteString(fmt.Sprintf("\n%s %s\n", cursor, field))
			continue
		}
		s.WriteString(fmt.Sprintf("%s %s: %s\n", cursor, field, m.getFieldValue(field)))
	}

	if m.err != nil {
		s.WriteString("\n⚠️  " + m.err.Error() + "\n")
	}

	if m.editMode {
		s.WriteString("\n✏️  Editing: " + m.fields[m.cursor] + "\n")
		s.WriteString(m.textInput.View() + "\n")
		s.WriteString("(Enter to apply, ESC to cancel)\n")
	} else {
		s.WriteString("\n↑/↓ to move, Enter to edit, q to quit without saving\n")
	}

	return s.String()
}

func (m Model) getFieldValue(field string) string {
	value, err := store.GetConfigField(m.config, field)
	if err != nil {
		return "UNKNOWN"
	}
	if field == "jira.token" && value != "" {
		return strings.Repeat("•", 8)
	}
	return value
}

// updateConfig applies the edited value; invalid values leave the config
// untouched and show the error.
func (m *Model) updateConfig() {
	if err := store.SetConfigField(&m.config, m.fields[m.cursor], m.textInput.Value()); err != nil {
		m.err = err
	}
}

func loadConfigFile() (model.Config, string) {
	configPath, err := store.GetConfigPath()
	if err != nil {
		log.Fatalf("❌ Failed to get config path: %v", err)
	}
	config, err := store.LoadConfigFrom(configPath)
	if err != nil {
		log.Fatalf("❌ Error loading config: %v", err)
	}
	return *config, configPath
}

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configure config.yaml interactively",
	Run: func(cmd *cobra.Command, args []string) {
		config, configPath := loadConfigFile()
		fmt.Println(configPath)

		final, err := tea.NewProgram(newModel(config, configPath)).Run()
		if err != nil {
			log.Fatalf("❌ Error running TUI: %v", err)
		}
		if m, ok := final.(*Model); ok && m.saved {
			fmt.Println("✅ Config saved:", configPath)
		}
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get [field]",
	Short: "Print one config field, or all of them",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		config, _ := loadConfigFile()

		fields := store.ConfigFields()
		if len(args) == 1 {
			fields = args
		}

		keyStyle := color.New(color.FgCyan).SprintFunc()
		for _, field := range fields {
			value, err := store.GetConfigField(config, field)
			if err != nil {
				log.Printf("❌ %v", err)
				os.Exit(1)
			}
			if len(args) == 1 {
				fmt.Println(value)
				continue
			}
			fmt.Printf("%s: %s\n", keyStyle(field), value)
		}
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set [field] [value]",
	Short: "Set one config field by its dotted yaml path",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		config, configPath := loadConfigFile()

		if err := store.SetConfigField(&config, args[0], args[1]); err != nil {
			log.Printf("❌ %v", err)
			os.Exit(1)
		}
		if err := store.SaveConfigTo(configPath, config); err != nil {
			log.Printf("❌ Failed to save config file: %v", err)
			os.Exit(1)
		}
		fmt.Printf("✅ %s updated\n", args[0])
	},
}

func init() {
	configCmd.AddCommand(configGetCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}

package main

import "github.com/charmbracelet/lipgloss"

// Output styles shared by the parse and search commands
var (
	styleKind       = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	styleName       = lipgloss.NewStyle().Bold(true)
	styleSignature  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleVisibility = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	styleDoc        = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Italic(true)
	styleLocation   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleFilePath   = lipgloss.NewStyle().Bold(true)
	styleScore      = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	styleError      = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

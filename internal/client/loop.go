package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/screengrab/snapshot-mcp/internal/schema"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	toolStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	paramStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	promptStyle = lipgloss.NewStyle().Bold(true)
)

// ToolCaller is the slice of Session the loop drives. One call is in flight
// at a time; the loop waits for each result before reading further input.
type ToolCaller interface {
	ListTools() ([]ToolInfo, error)
	CallTool(ctx context.Context, name string, args map[string]interface{}) (*ToolResult, error)
}

// Loop is a line-oriented control loop over a Ready session: it prints the
// tool list, reads a tool name, prompts for its required parameters, issues
// the call and renders the result.
type Loop struct {
	caller      ToolCaller
	in          *bufio.Scanner
	out         io.Writer
	callTimeout time.Duration
}

// NewLoop builds an interactive loop reading commands from in and writing to
// out. callTimeout bounds each tool call; expiry closes the session.
func NewLoop(caller ToolCaller, in io.Reader, out io.Writer, callTimeout time.Duration) *Loop {
	return &Loop{
		caller:      caller,
		in:          bufio.NewScanner(in),
		out:         out,
		callTimeout: callTimeout,
	}
}

// Run drives the loop until the user quits, input ends, or the session is
// forced Closed. User-facing validation failures (unknown tool name, bad
// parameter input) abort only the current attempt.
func (l *Loop) Run() error {
	tools, err := l.caller.ListTools()
	if err != nil {
		return err
	}

	byName := make(map[string]ToolInfo, len(tools))
	for _, tool := range tools {
		byName[tool.Name] = tool
	}

	for {
		l.printTools(tools)
		fmt.Fprintln(l.out)
		line, ok := l.readLine(promptStyle.Render("Select a tool to use or 'quit' to exit: "))
		if !ok {
			return nil
		}
		if strings.EqualFold(line, "quit") {
			return nil
		}

		tool, found := byName[line]
		if !found {
			fmt.Fprintln(l.out, errorStyle.Render(fmt.Sprintf("Invalid tool name %q. Please try again.", line)))
			continue
		}

		args, ok := l.promptParams(tool)
		if !ok {
			continue
		}

		fmt.Fprintf(l.out, "\nCalling tool %s...\n", toolStyle.Render(tool.Name))
		ctx, cancel := context.WithTimeout(context.Background(), l.callTimeout)
		result, err := l.caller.CallTool(ctx, tool.Name, args)
		cancel()
		if err != nil {
			fmt.Fprintln(l.out, errorStyle.Render("Error: "+err.Error()))
			if errors.Is(err, ErrCallTimeout) || errors.Is(err, ErrSessionClosed) {
				return err
			}
			continue
		}
		l.printResult(result)
	}
}

// promptParams collects the tool's required parameters in schema order,
// coercing each raw line through the shared coercion table. A coercion
// failure aborts the attempt.
func (l *Loop) promptParams(tool ToolInfo) (map[string]interface{}, bool) {
	args := make(map[string]interface{}, len(tool.InputSchema.Required))
	for _, name := range tool.InputSchema.Required {
		prop := tool.InputSchema.Properties[name]
		fmt.Fprintf(l.out, "\n%s (%s)\n", toolStyle.Render(name), prop.Type)
		if prop.Description != "" {
			fmt.Fprintln(l.out, paramStyle.Render(prop.Description))
		}
		line, ok := l.readLine("Enter value: ")
		if !ok {
			return nil, false
		}
		value, err := schema.Coerce(prop, line)
		if err != nil {
			fmt.Fprintln(l.out, errorStyle.Render("Invalid input: "+err.Error()))
			return nil, false
		}
		args[name] = value
	}
	return args, true
}

func (l *Loop) printTools(tools []ToolInfo) {
	fmt.Fprintln(l.out)
	fmt.Fprintln(l.out, titleStyle.Render("Available tools"))
	for _, tool := range tools {
		fmt.Fprintf(l.out, "\n%s\n", toolStyle.Render(tool.Name))
		fmt.Fprintf(l.out, "  %s\n", tool.Description)
		if len(tool.InputSchema.Required) == 0 {
			continue
		}
		fmt.Fprintln(l.out, "  Parameters:")
		for _, name := range tool.InputSchema.Required {
			prop := tool.InputSchema.Properties[name]
			fmt.Fprintf(l.out, "    - %s (%s)\n", name, prop.Type)
			if prop.Description != "" {
				fmt.Fprintf(l.out, "      %s\n", paramStyle.Render(prop.Description))
			}
		}
	}
}

func (l *Loop) printResult(result *ToolResult) {
	fmt.Fprintln(l.out, "\nTool response:")
	for _, item := range result.Content {
		switch item.Type {
		case "image":
			fmt.Fprintf(l.out, "[image %s, %d base64 bytes]\n", item.MimeType, len(item.Data))
		default:
			fmt.Fprintln(l.out, item.Text)
		}
	}
}

func (l *Loop) readLine(prompt string) (string, bool) {
	fmt.Fprint(l.out, prompt)
	if !l.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(l.in.Text()), true
}

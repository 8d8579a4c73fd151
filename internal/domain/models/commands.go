package models

import "strings"

// CommandType enumerates the operator commands accepted over WhatsApp.
type CommandType string

const (
	CommandStatus   CommandType = "status"
	CommandFailures CommandType = "failures"
	CommandRun      CommandType = "run"
	CommandTrend    CommandType = "trend"
	CommandHelp     CommandType = "help"
	CommandUnknown  CommandType = "unknown"
)

// Command represents a parsed operator instruction.
type Command struct {
	Type CommandType
	Raw  string
	Args []string
}

// ParseCommand derives a Command from free-form text such as "/run fixed reports audit".
func ParseCommand(message string) Command {
	tokens := strings.Fields(strings.ToLower(strings.TrimSpace(message)))
	cmd := Command{Type: CommandUnknown, Raw: message}
	if len(tokens) == 0 {
		return cmd
	}

	switch head := strings.TrimPrefix(tokens[0], "/"); head {
	case string(CommandStatus), "latest":
		cmd.Type = CommandStatus
	case string(CommandFailures), "failed":
		cmd.Type = CommandFailures
	case string(CommandRun), "rerun":
		cmd.Type = CommandRun
	case string(CommandTrend), "stats":
		cmd.Type = CommandTrend
	case string(CommandHelp), "?":
		cmd.Type = CommandHelp
	}
	cmd.Args = tokens[1:]
	return cmd
}

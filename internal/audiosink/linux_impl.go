//go:build linux
// +build linux

package audiosink

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/genricoloni/routewatch/internal/config"
	"go.uber.org/zap"
)

// SinkCommand represents a command that prints the default audio sink
type SinkCommand struct {
	Name   string
	Binary string
	Args   []string
	// Parse extracts the sink name from the command output
	Parse func(output string) string
}

var (
	// Ordered list of sink commands to try (highest priority first)
	sinkCommands = []SinkCommand{
		// PulseAudio and pipewire-pulse
		{Name: "pactl", Binary: "pactl", Args: []string{"get-default-sink"}, Parse: parsePactl},
		// WirePlumber
		{Name: "wpctl", Binary: "wpctl", Args: []string{"inspect", "@DEFAULT_AUDIO_SINK@"}, Parse: parseWpctl},
	}

	// lookPath is replaced in tests
	lookPath = exec.LookPath
)

// LinuxInspector queries the default sink of the PulseAudio/PipeWire session
type LinuxInspector struct {
	classifier
	logger  *zap.Logger
	command SinkCommand
	run     func(ctx context.Context, binary string, args ...string) ([]byte, error)
}

// NewInspector creates a sink inspector (Linux implementation).
// A missing sink command is not fatal: the inspector then reports no default sink.
func NewInspector(logger *zap.Logger, cfg *config.AppConfig) *LinuxInspector {
	cmd := detectCommand()
	if cmd.Binary == "" {
		logger.Warn("No supported audio sink command found, external audio routes will not be detected")
	} else {
		logger.Info("Audio sink command detected",
			zap.String("name", cmd.Name),
			zap.String("binary", cmd.Binary))
	}

	return &LinuxInspector{
		classifier: newClassifier(cfg.RemoteSinkMarkers),
		logger:     logger,
		command:    cmd,
		run:        runCommand,
	}
}

// detectCommand picks the first sink command available in PATH
func detectCommand() SinkCommand {
	for _, cmd := range sinkCommands {
		if commandExists(cmd.Binary) {
			return cmd
		}
	}
	return SinkCommand{} // No command found
}

// commandExists checks if a binary exists in PATH
func commandExists(binary string) bool {
	_, err := lookPath(binary)
	return err == nil
}

func runCommand(ctx context.Context, binary string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, binary, args...).CombinedOutput()
}

// DefaultSink returns the name of the current default sink
func (i *LinuxInspector) DefaultSink(ctx context.Context) (string, error) {
	if i.command.Binary == "" {
		return "", fmt.Errorf("no audio sink command available")
	}

	output, err := i.run(ctx, i.command.Binary, i.command.Args...)
	if err != nil {
		return "", fmt.Errorf("failed to query default sink with %s: %w (output: %s)",
			i.command.Name, err, strings.TrimSpace(string(output)))
	}

	sink := i.command.Parse(string(output))
	if sink == "" {
		return "", fmt.Errorf("%s returned no default sink", i.command.Name)
	}

	i.logger.Debug("Default sink queried",
		zap.String("command", i.command.Name),
		zap.String("sink", sink))

	return sink, nil
}

// parsePactl reads the single line printed by "pactl get-default-sink"
func parsePactl(output string) string {
	return strings.TrimSpace(output)
}

// parseWpctl finds node.name in the property dump printed by "wpctl inspect"
func parseWpctl(output string) string {
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "* ")
		key, value, ok := strings.Cut(line, "=")
		if !ok || strings.TrimSpace(key) != "node.name" {
			continue
		}
		return strings.Trim(strings.TrimSpace(value), `"`)
	}
	return ""
}

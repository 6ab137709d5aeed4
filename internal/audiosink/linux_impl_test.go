//go:build linux

package audiosink

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"

	"github.com/genricoloni/routewatch/internal/config"
	"go.uber.org/zap"
)

const wpctlOutput = `id 57, type PipeWire:Interface:Node
    alsa.card = "0"
  * media.class = "Audio/Sink"
  * node.description = "Living Room"
  * node.name = "raop_sink.LivingRoom.local.192.168.1.20.7000"
    object.serial = "58"
`

func TestDetectCommand(t *testing.T) {
	defer func() { lookPath = exec.LookPath }()

	tests := []struct {
		name      string
		available map[string]bool
		expected  string
	}{
		{"Prefers pactl", map[string]bool{"pactl": true, "wpctl": true}, "pactl"},
		{"Falls back to wpctl", map[string]bool{"wpctl": true}, "wpctl"},
		{"Nothing available", map[string]bool{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lookPath = func(file string) (string, error) {
				if tt.available[file] {
					return "/usr/bin/" + file, nil
				}
				return "", exec.ErrNotFound
			}

			if got := detectCommand(); got.Name != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got.Name)
			}
		})
	}
}

func TestLinuxInspector_DefaultSink(t *testing.T) {
	cfg := &config.AppConfig{RemoteSinkMarkers: []string{"raop", "tunnel"}}

	tests := []struct {
		name          string
		command       SinkCommand
		output        string
		runErr        error
		expectedSink  string
		expectedError string
		remote        bool
	}{
		{
			name:         "pactl Local Sink",
			command:      sinkCommands[0],
			output:       "alsa_output.pci-0000_00_1f.3.analog-stereo\n",
			expectedSink: "alsa_output.pci-0000_00_1f.3.analog-stereo",
		},
		{
			name:         "pactl Tunnel Sink",
			command:      sinkCommands[0],
			output:       "tunnel.studio.local.alsa_output\n",
			expectedSink: "tunnel.studio.local.alsa_output",
			remote:       true,
		},
		{
			name:         "wpctl RAOP Sink",
			command:      sinkCommands[1],
			output:       wpctlOutput,
			expectedSink: "raop_sink.LivingRoom.local.192.168.1.20.7000",
			remote:       true,
		},
		{
			name:          "Command Fails",
			command:       sinkCommands[0],
			output:        "Connection failure: Connection refused",
			runErr:        errors.New("exit status 1"),
			expectedError: "failed to query default sink with pactl",
		},
		{
			name:          "Empty Output",
			command:       sinkCommands[0],
			output:        "\n",
			expectedError: "returned no default sink",
		},
		{
			name:          "No Command",
			command:       SinkCommand{},
			expectedError: "no audio sink command available",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			insp := &LinuxInspector{
				classifier: newClassifier(cfg.RemoteSinkMarkers),
				logger:     zap.NewNop(),
				command:    tt.command,
				run: func(ctx context.Context, binary string, args ...string) ([]byte, error) {
					if binary != tt.command.Binary {
						t.Errorf("Unexpected binary %s", binary)
					}
					return []byte(tt.output), tt.runErr
				},
			}

			sink, err := insp.DefaultSink(context.Background())

			if tt.expectedError != "" {
				if err == nil {
					t.Fatalf("Expected error containing '%s', got nil", tt.expectedError)
				}
				if !strings.Contains(err.Error(), tt.expectedError) {
					t.Errorf("Expected error '%s' to contain '%s'", err.Error(), tt.expectedError)
				}
				return
			}

			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if sink != tt.expectedSink {
				t.Errorf("Sink: expected %q, got %q", tt.expectedSink, sink)
			}
			if got := insp.IsRemote(sink); got != tt.remote {
				t.Errorf("IsRemote: expected %v, got %v", tt.remote, got)
			}
		})
	}
}

func TestParseWpctl_NoNodeName(t *testing.T) {
	if got := parseWpctl("id 12, type PipeWire:Interface:Node\n  * media.class = \"Audio/Sink\"\n"); got != "" {
		t.Errorf("Expected empty sink name, got %q", got)
	}
}

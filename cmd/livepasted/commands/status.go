package commands

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/livepaste/livepaste/internal/cli/output"
	"github.com/livepaste/livepaste/internal/cli/timeutil"
	"github.com/livepaste/livepaste/pkg/client"
)

var (
	statusOutput  string
	statusPidFile string
	statusPort    int
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server status",
	Long: `Display the current status of the LivePaste server.

This command checks the server health by calling the health endpoint
and displays status, uptime, and store health information.

Examples:
  # Check status (uses default settings)
  livepasted status

  # Check status with custom port
  livepasted status --port 3000

  # Output as JSON
  livepasted status --output json`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusPidFile, "pid-file", "", "Path to PID file (default: $XDG_STATE_HOME/livepaste/livepasted.pid)")
	statusCmd.Flags().IntVar(&statusPort, "port", 8080, "Server port")
	statusCmd.Flags().StringVarP(&statusOutput, "output", "o", "table", "Output format (table|json|yaml)")
}

// ServerStatus represents the server status information.
type ServerStatus struct {
	Running bool   `json:"running" yaml:"running"`
	PID     int    `json:"pid,omitempty" yaml:"pid,omitempty"`
	Message string `json:"message" yaml:"message"`
	Uptime  string `json:"uptime,omitempty" yaml:"uptime,omitempty"`
	Healthy bool   `json:"healthy" yaml:"healthy"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(statusOutput)
	if err != nil {
		return err
	}

	status := ServerStatus{
		Running: false,
		Healthy: false,
		Message: "Server is not running",
	}

	// Use default PID file if not specified
	pidPath := statusPidFile
	if pidPath == "" {
		pidPath = GetDefaultPidFile()
	}

	// Check PID file first
	pidData, err := os.ReadFile(pidPath)
	if err == nil {
		pid, err := strconv.Atoi(strings.TrimSpace(string(pidData)))
		if err == nil {
			// On Unix, FindProcess always succeeds; signal 0 probes liveness
			process, err := os.FindProcess(pid)
			if err == nil {
				if err := process.Signal(syscall.Signal(0)); err == nil {
					status.Running = true
					status.PID = pid
				}
			}
		}
	}

	// Check health endpoint (works for both daemon and foreground mode)
	api := client.New(fmt.Sprintf("http://localhost:%d", statusPort), client.WithTimeout(2*time.Second))
	health, err := api.Health(cmd.Context())
	if err == nil {
		status.Running = true
		status.Healthy = health.Healthy()
		status.Uptime = timeutil.FormatUptime(health.Data.UptimeSeconds)
		if status.Healthy {
			status.Message = "Server is running and healthy"
		} else {
			status.Message = fmt.Sprintf("Server is running but unhealthy: %s", health.Error)
		}
	} else if status.Running {
		// PID file says running but health check failed
		status.Message = "Server process exists but health check failed"
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, status)
	case output.FormatYAML:
		return output.PrintYAML(os.Stdout, status)
	default:
		printStatusTable(status)
	}

	return nil
}

func printStatusTable(status ServerStatus) {
	state := "\033[31m○ Stopped\033[0m"
	if status.Running {
		state = "\033[32m● Running\033[0m"
		if !status.Healthy {
			state = "\033[33m● Running (unhealthy)\033[0m"
		}
	}

	pairs := [][2]string{{"Status", state}}
	if status.PID != 0 {
		pairs = append(pairs, [2]string{"PID", strconv.Itoa(status.PID)})
	}
	if status.Uptime != "" {
		pairs = append(pairs, [2]string{"Uptime", status.Uptime})
	}

	fmt.Println()
	fmt.Println("LivePaste Server Status")
	fmt.Println("=======================")
	fmt.Println()
	_ = output.SimpleTable(os.Stdout, pairs)
	fmt.Println()
	fmt.Printf("  %s\n", status.Message)
	fmt.Println()
}

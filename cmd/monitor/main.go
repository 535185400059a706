package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/fatih/color"
)

// LogEntry matches the Zap JSON structure
type LogEntry struct {
	Level         string `json:"level"`
	Msg           string `json:"msg"`
	Logger        string `json:"logger"`
	CycleID       string `json:"cycle_id"`
	OrderID       string `json:"order_id"`
	Stage         string `json:"stage"`
	Machine       string `json:"machine"`
	Deadline      string `json:"deadline"`
	Orders        int    `json:"orders"`
	Active        int    `json:"active"`
	ReferenceDate string `json:"reference_date"`
	Error         string `json:"error"`
}

var (
	cyan   = color.New(color.FgCyan)
	gray   = color.New(color.FgWhite)
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed)
	blue   = color.New(color.FgBlue)
)

// Pipe the planner logs in, or pass docker service names to follow them:
//
//	scheduler 2>&1 | monitor
//	monitor scheduler_planner scheduler_board
func main() {
	cyan.Println("🚀 Planner Activity Monitor Starting...")

	var in io.Reader = os.Stdin
	if len(os.Args) > 1 {
		args := append([]string{"service", "logs", "-f"}, os.Args[1:]...)
		cmd := exec.Command("docker", args...)
		stdout, err := cmd.StdoutPipe()
		if err != nil {
			fmt.Printf("Error creating stdout pipe: %v\n", err)
			return
		}
		if err := cmd.Start(); err != nil {
			fmt.Printf("Error starting docker logs command: %v\n", err)
			return
		}
		defer cmd.Wait()
		in = stdout
		gray.Printf("Following %s...\n", strings.Join(os.Args[1:], ", "))
	}
	fmt.Println("-------------------------------------------------------------------------")

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()

		// Docker service logs format: "service_name.instance.id | {JSON}"
		if parts := strings.SplitN(line, "|", 2); len(parts) == 2 {
			line = parts[1]
		}

		var entry LogEntry
		if err := json.Unmarshal([]byte(strings.TrimSpace(line)), &entry); err != nil {
			// Not a JSON log or different format, ignore
			continue
		}
		prettify(os.Stdout, entry)
	}
}

func prettify(w io.Writer, entry LogEntry) {
	switch {
	case entry.Msg == "Planning cycle complete":
		fmt.Fprintf(w, "📋 %s %s  ref=%s orders=%d active=%d\n",
			green.Sprint("Cycle"), short(entry.CycleID), entry.ReferenceDate, entry.Orders, entry.Active)
	case entry.Msg == "Order waiting for machine":
		fmt.Fprintf(w, "⏳ %s order %s at %s (%s), due %s\n",
			yellow.Sprint("Waiting:"), entry.OrderID, entry.Stage, entry.Machine, entry.Deadline)
	case entry.Msg == "Report received":
		fmt.Fprintf(w, "📥 %s %s\n", blue.Sprint("Board updated:"), short(entry.CycleID))
	case entry.Msg == "Serving stale report":
		fmt.Fprintf(w, "🕰  %s %s\n", yellow.Sprint("Stale report:"), short(entry.CycleID))
	case strings.EqualFold(entry.Level, "error"):
		fmt.Fprintf(w, "❌ %s %s %s\n", red.Sprint("ERROR:"), entry.Msg, entry.Error)
	}
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

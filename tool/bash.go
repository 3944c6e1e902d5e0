package tool

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// BashConfig mirrors the teacher's CommandToolsConfig: an allow-list of
// base commands, a working directory, a max execution time, and a
// sandboxing toggle. Unlike the teacher, an empty allow-list here means
// "unrestricted" rather than falling back to a hardcoded default list —
// hosts that want an allow-list enabled should set one explicitly.
type BashConfig struct {
	AllowedCommands  []string
	WorkingDirectory string
	MaxExecutionTime time.Duration
	EnableSandboxing bool
	DangerousPatterns []string
}

func (c *BashConfig) setDefaults() {
	if c.MaxExecutionTime == 0 {
		c.MaxExecutionTime = 30 * time.Second
	}
	if len(c.DangerousPatterns) == 0 {
		c.DangerousPatterns = []string{"rm -rf /", "mkfs", ":(){ :|:& };:", "> /dev/sda"}
	}
}

type BashTool struct {
	cfg BashConfig
}

func NewBashTool(cfg BashConfig) *BashTool {
	cfg.setDefaults()
	return &BashTool{cfg: cfg}
}

func (t *BashTool) Info() Info {
	return Info{
		Name:        "Bash",
		Description: "Execute a shell command and return its combined stdout/stderr.",
		Parameters: []Parameter{
			{Name: "command", Type: "string", Description: "Shell command to run", Required: true},
			{Name: "working_dir", Type: "string", Description: "Directory to run the command in", Required: false},
		},
		IsParallelSafe: false,
		IsLongRunning:  true,
		DefaultRisk:    RiskSafeWrite,
	}
}

// ClassifyRisk upgrades Bash calls whose command string matches a known
// destructive pattern to Dangerous, so the permission gate routes them
// through explicit approval even under a Standard permission level.
func (t *BashTool) ClassifyRisk(args map[string]any) RiskClass {
	cmd, _ := args["command"].(string)
	lower := strings.ToLower(cmd)
	for _, pattern := range t.cfg.DangerousPatterns {
		if strings.Contains(lower, strings.ToLower(pattern)) {
			return RiskDangerous
		}
	}
	return RiskSafeWrite
}

func (t *BashTool) Execute(ctx context.Context, execCtx *ExecutionContext, args map[string]any) (Result, error) {
	command, _ := args["command"].(string)
	if command == "" {
		return errResult("Bash", "command parameter is required")
	}
	workingDir := strArg(args, "working_dir", "")
	if workingDir == "" {
		workingDir = execCtx.WorkingDirectory
	}
	if t.cfg.WorkingDirectory != "" {
		workingDir = t.cfg.WorkingDirectory
	}

	if err := t.validateCommand(command); err != nil {
		return Result{Success: false, ToolName: "Bash", Error: err.Error()}, err
	}

	if t.cfg.MaxExecutionTime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.cfg.MaxExecutionTime)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = workingDir

	start := time.Now()
	output, err := cmd.CombinedOutput()
	elapsed := time.Since(start)

	if err != nil {
		return Result{
			Success:  false,
			ToolName: "Bash",
			Content:  string(output),
			Error:    err.Error(),
			Metadata: map[string]any{"duration_ms": elapsed.Milliseconds()},
		}, err
	}

	return Result{
		Success:  true,
		ToolName: "Bash",
		Content:  string(output),
		Metadata: map[string]any{"duration_ms": elapsed.Milliseconds()},
	}, nil
}

func (t *BashTool) validateCommand(command string) error {
	if !t.cfg.EnableSandboxing || len(t.cfg.AllowedCommands) == 0 {
		return nil
	}
	base := extractBaseCommand(command)
	for _, allowed := range t.cfg.AllowedCommands {
		if allowed == base {
			return nil
		}
	}
	return fmt.Errorf("command not allowed: %s", base)
}

func extractBaseCommand(command string) string {
	fields := strings.Fields(strings.TrimSpace(command))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

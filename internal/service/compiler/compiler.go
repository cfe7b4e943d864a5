package compiler

import (
	"context"
	"fmt"
	"time"

	"github.com/oshokin/release-builder/internal/domain/release"
	"github.com/oshokin/release-builder/internal/logger"
	"github.com/oshokin/release-builder/internal/service/common"
)

// Options configures the compiler invocation.
type Options struct {
	// GoTool is the toolchain executable.
	GoTool string
	// Output is the binary path, overwritten on every compile.
	Output string
	// Main is the package or file to build.
	Main string
	// VersionSymbol receives the version through -X.
	VersionSymbol string
	// Dir is the working directory of the build.
	Dir string
}

// Compiler invokes the Go toolchain through a Runner.
type Compiler struct {
	runner common.Runner
	opts   Options
	now    func() time.Time
}

// New creates a Compiler.
func New(runner common.Runner, opts Options) *Compiler {
	if opts.GoTool == "" {
		opts.GoTool = "go"
	}

	return &Compiler{
		runner: runner,
		opts:   opts,
		now:    time.Now,
	}
}

// Command returns the toolchain invocation for arch and version.
//
// C interop is always disabled so no target C library is needed.
func (c *Compiler) Command(arch release.Architecture, version string) common.Command {
	env := make(map[string]string, len(arch.Env)+2)
	for key, value := range arch.Env {
		env[key] = value
	}

	env["CGO_ENABLED"] = "0"
	env["GOARCH"] = arch.ToolchainArch()

	return common.Command{
		Name: c.opts.GoTool,
		Args: []string{
			"build",
			"-o", c.opts.Output,
			"-ldflags", fmt.Sprintf("-X %s=%s", c.opts.VersionSymbol, version),
			c.opts.Main,
		},
		Env: env,
		Dir: c.opts.Dir,
	}
}

// Compile builds one binary for arch. A failed build is not retried.
func (c *Compiler) Compile(ctx context.Context, arch release.Architecture, version string) error {
	ctx = logger.WithName(ctx, "compiler")

	logger.InfoKV(ctx, "Compiling binary", "version", version, "arch", arch.Name)

	started := c.now()

	if _, err := c.runner.Run(ctx, c.Command(arch, version)); err != nil {
		return fmt.Errorf("compile %s: %w", arch.Name, err)
	}

	logger.InfoKV(ctx, "Compiled binary",
		"arch", arch.Name,
		"goarch", arch.ToolchainArch(),
		"output", c.opts.Output,
		"duration", c.now().Sub(started))

	return nil
}

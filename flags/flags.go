// Package flags defines the CLI flags for the xunit-bridge binary.
package flags

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

const EnvVarPrefix = "XUNIT_BRIDGE"

// prefixEnvVars prepends the application prefix to an env var name.
func prefixEnvVars(name string) []string {
	return []string{EnvVarPrefix + "_" + name}
}

var (
	Assembly = &cli.StringFlag{
		Name:     "assembly",
		Value:    "",
		Required: true,
		EnvVars:  prefixEnvVars("ASSEMBLY"),
		Usage:    "Path to the test assembly (a compiled test binary)",
	}
	Class = &cli.StringFlag{
		Name:    "class",
		Value:   "",
		EnvVars: prefixEnvVars("CLASS"),
		Usage:   "Fully-qualified test class to run (eg. 'Example.CalcTests')",
	}
	Method = &cli.StringFlag{
		Name:    "method",
		Value:   "",
		EnvVars: prefixEnvVars("METHOD"),
		Usage:   "Test method to run within --class (eg. 'Adds')",
	}
	ListOnly = &cli.BoolFlag{
		Name:    "list",
		Value:   false,
		EnvVars: prefixEnvVars("LIST"),
		Usage:   "Discover and print test cases without running them",
	}
	LogLevel = &cli.StringFlag{
		Name:    "log.level",
		Value:   "",
		EnvVars: prefixEnvVars("LOG_LEVEL"),
		Usage:   "Log level (debug, info, warn, error); overrides the assembly config side-file",
	}
	Serve = &cli.BoolFlag{
		Name:    "serve",
		Value:   false,
		EnvVars: prefixEnvVars("SERVE"),
		Usage:   "Expose healthz and prometheus metrics endpoints for the duration of the run",
	}
)

var requiredFlags = []cli.Flag{
	Assembly,
}

var optionalFlags = []cli.Flag{
	Class,
	Method,
	ListOnly,
	LogLevel,
	Serve,
}

var Flags []cli.Flag

func init() {
	Flags = append(requiredFlags, optionalFlags...)
}

func CheckRequired(ctx *cli.Context) error {
	for _, f := range requiredFlags {
		if !ctx.IsSet(f.Names()[0]) {
			return fmt.Errorf("flag %s is required", f.Names()[0])
		}
	}
	if ctx.IsSet(Method.Name) && !ctx.IsSet(Class.Name) {
		return fmt.Errorf("flag %s requires %s", Method.Name, Class.Name)
	}
	return nil
}

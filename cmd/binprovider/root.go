package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "binprovider",
	Short: "Locate and install binaries through pluggable OS package providers",
	Long: `binprovider resolves named binaries against a preference-ordered list of
package providers (apt, brew, pip, npm, ansible, pyinfra, env), installing
through whichever provider can handle the binary when it is not already on
PATH.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(*cobra.Command, []string) {
		useColor = setupColorOutput()
	},
}

// useColor is resolved once per invocation by setupColorOutput and read by
// every subcommand's diagnostics.Formatter.
var useColor bool

// globalFlags holds flags that apply to every subcommand.
var globalFlags struct {
	color    string
	quiet    bool
	manifest string
}

func init() {
	rootCmd.PersistentFlags().StringVar(&globalFlags.color, "color", "auto", "Colorize output: auto, always, never")
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.quiet, "quiet", "q", false, "Suppress non-error output")
	rootCmd.PersistentFlags().StringVarP(&globalFlags.manifest, "manifest", "m", "binproviders.yaml", "Path to the provider/binary manifest")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(providersCmd)
	rootCmd.AddCommand(binaryCmd)
	for _, name := range providerNames {
		rootCmd.AddCommand(newProviderCmd(name))
	}
}

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for the binprovider CLI.

Bash:
  $ source <(binprovider completion bash)

Zsh:
  $ binprovider completion zsh > "${fpath[1]}/_binprovider"

Fish:
  $ binprovider completion fish | source

PowerShell:
  PS> binprovider completion powershell | Out-String | Invoke-Expression
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(_ *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(os.Stdout)
		case "zsh":
			return rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			return rootCmd.GenFishCompletion(os.Stdout, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletionWithDesc(os.Stdout)
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE:  runVersion,
}

func runVersion(_ *cobra.Command, _ []string) error {
	if globalFlags.quiet {
		fmt.Println(version)
		return nil
	}
	fmt.Printf("binprovider version: %s\n", version)
	fmt.Printf("commit: %s\n", commit)
	if info, ok := debug.ReadBuildInfo(); ok {
		fmt.Printf("go version: %s\n", info.GoVersion)
	}
	return nil
}

// setupColorOutput configures color output based on flags and terminal
// capabilities, following apps/command-line/cmd/nomos/root.go's pattern.
func setupColorOutput() bool {
	switch globalFlags.color {
	case "always":
		_ = os.Setenv("CLICOLOR_FORCE", "1")
		return true
	case "never":
		_ = os.Setenv("NO_COLOR", "1")
		return false
	default: // "auto" or anything unrecognized
		return isatty.IsTerminal(os.Stdout.Fd())
	}
}

// Execute adds all child commands to the root command and runs it. Called
// by main.main().
func Execute() error {
	return rootCmd.Execute()
}

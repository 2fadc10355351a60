package cli

import (
	"github.com/spf13/cobra"
)

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for xovigen.

To load completions:

Bash:
  $ source <(xovigen completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ xovigen completion bash > /etc/bash_completion.d/xovigen
  # macOS:
  $ xovigen completion bash > $(brew --prefix)/etc/bash_completion.d/xovigen

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. Execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ xovigen completion zsh > "${fpath[1]}/_xovigen"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ xovigen completion fish | source

  # To load completions for each session, execute once:
  $ xovigen completion fish > ~/.config/fish/completions/xovigen.fish

PowerShell:
  PS> xovigen completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
	return cmd
}

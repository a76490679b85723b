package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/denniswebb/forward/internal/logging"
	"github.com/denniswebb/forward/internal/rules"
)

var (
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "forward",
	Short: "Manage NAT-based TCP port-forwarding rules",
	Long: `forward keeps a list of TCP port-forwarding rules in a flat JSON file and programs them into netfilter.
Each rule becomes a DNAT rule in PREROUTING, an ACCEPT rule in FORWARD and an SNAT rule in POSTROUTING.
Run "forward apply" after a reboot to restore every registered rule.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		viper.SetEnvPrefix("FORWARD")
		viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
		viper.AutomaticEnv()

		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
			if err := viper.ReadInConfig(); err != nil {
				return fmt.Errorf("failed to read config file: %w", err)
			}
		}

		logging.InitLogger(viper.GetString("log-level"), viper.GetString("log-format"), "forward")
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Path to configuration file")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("log-format", "text", "Log format (text, json)")
	flags.String("store", rules.DefaultStorePath, "Path of the rule store")
	flags.String("backend", "exec", "Firewall backend (exec, go-iptables)")
	flags.String("iptables-binary", "iptables", "iptables binary used for IPv4 rules")
	flags.String("ip6tables-binary", "ip6tables", "ip6tables binary used for IPv6 rules")
	flags.Int("wait", 0, "Seconds to wait for the xtables lock (0 leaves -w off)")
	flags.Bool("sudo", false, "Run the firewall utility through sudo when not root")
	flags.String("audit-map", "", "Optional path of a plain-text audit map rewritten on every change")
	flags.String("metrics-textfile", "", "Optional path of a Prometheus textfile written after every command")

	for _, name := range []string{
		"log-level", "log-format", "store", "backend", "iptables-binary", "ip6tables-binary",
		"wait", "sudo", "audit-map", "metrics-textfile",
	} {
		if err := viper.BindPFlag(name, flags.Lookup(name)); err != nil {
			fmt.Fprintf(os.Stderr, "failed to bind %s flag: %v\n", name, err)
			os.Exit(1)
		}
	}

	rootCmd.AddCommand(AddCmd)
	rootCmd.AddCommand(RemoveCmd)
	rootCmd.AddCommand(ApplyCmd)
	rootCmd.AddCommand(UnapplyCmd)
	rootCmd.AddCommand(ListCmd)
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/denniswebb/forward/internal/rules"
)

// AddCmd registers a forwarding rule and applies it.
var AddCmd = &cobra.Command{
	Use:   "add <sourceIp> <sourcePort> <destIp> <destPort>",
	Short: "Register a forwarding rule and apply it",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		rule, err := rules.Parse(args[0], args[1], args[2], args[3])
		if err != nil {
			return err
		}

		s, err := newSession(cmd)
		if err != nil {
			return err
		}
		defer s.close()

		return s.manager.Add(cmd.Context(), rule)
	},
}

// RemoveCmd drops every matching forwarding rule and removes it from the firewall.
var RemoveCmd = &cobra.Command{
	Use:   "remove <sourceIp> <sourcePort> <destIp> <destPort>",
	Short: "Remove a forwarding rule from the store and the firewall",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		rule, err := rules.Parse(args[0], args[1], args[2], args[3])
		if err != nil {
			return err
		}

		s, err := newSession(cmd)
		if err != nil {
			return err
		}
		defer s.close()

		_, err = s.manager.Remove(cmd.Context(), rule)
		return err
	},
}

// ApplyCmd applies every stored rule.
var ApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply every stored forwarding rule to the firewall",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}
		defer s.close()

		s.manager.Apply(cmd.Context())
		return nil
	},
}

// UnapplyCmd removes every stored rule from the firewall, keeping the store.
var UnapplyCmd = &cobra.Command{
	Use:   "unapply",
	Short: "Remove every stored forwarding rule from the firewall",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}
		defer s.close()

		s.manager.Unapply(cmd.Context())
		return nil
	},
}

// ListCmd prints the stored rules.
var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the stored forwarding rules",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}
		defer s.close()

		for _, rule := range s.manager.List() {
			fmt.Fprintln(cmd.OutOrStdout(), rule.String())
		}
		return nil
	},
}

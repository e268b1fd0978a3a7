package main

import (
	"fmt"
	"strings"

	"audio_bridge/internal/client"

	"github.com/spf13/cobra"
)

const defaultBridgeURL = "http://localhost:8080"

func newSendCmd() *cobra.Command {
	var baseURL string
	cmd := &cobra.Command{
		Use:   "send <command...>",
		Short: "Send one command through a running bridge and print the reply",
		Example: `  bridge send level -15
  bridge send --url http://pi.local:8080 amp_on`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ans, err := client.New(baseURL).Execute(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), ans)
			return err
		},
	}
	cmd.Flags().StringVarP(&baseURL, "url", "u", defaultBridgeURL, "bridge base URL")
	return cmd
}

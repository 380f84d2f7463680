package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func loginCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authorize gotado against a tado account",
	}
	cmd.AddCommand(loginDeviceCmd(a), loginPasswordCmd(a))
	return cmd
}

func loginDeviceCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "device",
		Short: "Authorize through the browser (device code flow)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			client := a.newClient("", 0)
			if err := client.StartDeviceAuthorization(ctx); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Open %s\n", client.VerificationURL())
			fmt.Fprintf(out, "and confirm code %s before %s.\n", client.UserCode(), client.DeviceExpiry().Local().Format("15:04:05"))

			if err := client.WaitForDeviceAuthorization(ctx); err != nil {
				return err
			}
			home, err := client.HomeID(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "ok: logged in, home %d\n", home)
			return nil
		},
	}
}

func loginPasswordCmd(a *app) *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Authorize with username and password (password read from stdin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if username == "" {
				return fmt.Errorf("--username is required")
			}
			password, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && password == "" {
				return fmt.Errorf("read password: %w", err)
			}

			ctx := cmd.Context()
			client := a.newClient("", 0)
			if err := client.Login(ctx, username, strings.TrimRight(password, "\r\n")); err != nil {
				return err
			}
			home, err := client.HomeID(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: logged in, home %d\n", home)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", os.Getenv("GOTADO_USERNAME"), "tado account e-mail")
	return cmd
}

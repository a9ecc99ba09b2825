package main

import (
	"fmt"

	"autohaven/internal/client"

	"github.com/spf13/cobra"
)

func newContactCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contact",
		Short: "Reach the dealership",
	}

	var form client.ContactForm
	send := &cobra.Command{
		Use:   "send",
		Short: "Send a message through the contact form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := a.session.SendContact(cmd.Context(), form)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Message %s sent\n", msg.ID)
			return nil
		},
	}
	send.Flags().StringVar(&form.Name, "name", "", "your name")
	send.Flags().StringVar(&form.Email, "email", "", "reply address")
	send.Flags().StringVar(&form.Phone, "phone", "", "phone number")
	send.Flags().StringVar(&form.Message, "message", "", "message text")
	send.MarkFlagRequired("email")
	send.MarkFlagRequired("message")

	cmd.AddCommand(send)
	return cmd
}

package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rpupo63/mycms/config"
	"github.com/rpupo63/mycms/models"
)

func newCreateUserCommand() *cobra.Command {
	var username, password string

	createUserCmd := &cobra.Command{
		Use:   "createuser",
		Short: "Create a user account",
		Example: `  mycms createuser --username alice --password 'correct horse battery'
  MYCMS_PASSWORD=... mycms createuser --username alice`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := config.New()
			if password == "" {
				password = config.GetString(c, "MYCMS_PASSWORD", "")
			}
			if err := models.ValidateUsername(username); err != nil {
				return fmt.Errorf("username: %w", err)
			}
			if err := models.ValidatePassword(password); err != nil {
				return fmt.Errorf("password: %w", err)
			}

			db, err := openDatabase(c)
			if err != nil {
				return err
			}
			defer db.Close()

			user := models.User{Username: username}
			if err := user.SetPassword(password); err != nil {
				return err
			}
			if err := db.UserRepo().Add(cmd.Context(), &user); err != nil {
				return fmt.Errorf("creating user %q: %w", username, err)
			}

			log.Info().Uint("userID", user.ID).Str("username", username).Msg("user created")
			fmt.Fprintf(cmd.OutOrStdout(), "created user %s (id %d)\n", user.Username, user.ID)
			return nil
		},
	}

	createUserCmd.Flags().StringVar(&username, "username", "", "username of the new account")
	createUserCmd.Flags().StringVar(&password, "password", "", "password of the new account (default $MYCMS_PASSWORD)")
	_ = createUserCmd.MarkFlagRequired("username")
	return createUserCmd
}

func newDeleteUserCommand() *cobra.Command {
	var username string

	deleteUserCmd := &cobra.Command{
		Use:   "deleteuser",
		Short: "Delete a user account, keeping their posts without an author",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := openDatabase(config.New())
			if err != nil {
				return err
			}
			defer db.Close()

			user, err := db.UserRepo().FindByUsername(cmd.Context(), username)
			if err != nil {
				return fmt.Errorf("finding user %q: %w", username, err)
			}
			if err := db.UserRepo().Delete(cmd.Context(), user.ID); err != nil {
				return fmt.Errorf("deleting user %q: %w", username, err)
			}

			log.Info().Uint("userID", user.ID).Str("username", username).Msg("user deleted")
			fmt.Fprintf(cmd.OutOrStdout(), "deleted user %s\n", username)
			return nil
		},
	}

	deleteUserCmd.Flags().StringVar(&username, "username", "", "username of the account to delete")
	_ = deleteUserCmd.MarkFlagRequired("username")
	return deleteUserCmd
}
